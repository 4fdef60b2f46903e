// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package api

import (
	"context"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/otakuconnect/internal/models"
)

const healthPingTimeout = 2 * time.Second

// HealthLive handles GET /api/v1/health/live. It answers 200 while the
// process runs, whatever the state of its dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready: 200 when the store answers a
// ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.storeReachable(r.Context()) {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Database not reachable", nil)
		return
	}
	respondData(w, map[string]interface{}{"ready": true}, time.Now())
}

// Health handles GET /api/v1/health with a full status report. A missing
// database degrades the status; an open assistant circuit does not, because
// rule parsing keeps serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:        "healthy",
		Version:       h.opts.Version,
		DatabaseOK:    h.storeReachable(r.Context()),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.store != nil {
		status.Driver = h.store.Driver()
	}
	if !status.DatabaseOK {
		status.Status = "degraded"
	}
	if h.assistant != nil {
		state := h.assistant.State()
		status.BreakerState = state.String()
		status.AssistantOK = state != gobreaker.StateOpen
	}
	respondData(w, status, time.Now())
}

func (h *Handler) storeReachable(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}
