// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/otakuconnect/internal/models"
)

const maxHistoryLimit = 100

// UserActivity handles GET /api/v1/users/{userID}/activity.
func (h *Handler) UserActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "userID must be a positive integer", nil)
		return
	}

	limit := getIntParam(r, "limit", h.opts.HistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "limit must be between 1 and 100", nil)
		return
	}

	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	entries, err := h.activity.RecentActivity(ctx, userID, limit)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Activity history is temporarily unavailable", err)
		return
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	respondData(w, models.ActivityHistoryResponse{UserID: userID, Entries: entries}, start)
}
