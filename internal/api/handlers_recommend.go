// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/otakuconnect/internal/logging"
	"github.com/tomtom215/otakuconnect/internal/metrics"
	"github.com/tomtom215/otakuconnect/internal/models"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// sessionFields are accepted by both recommend endpoints.
type sessionFields struct {
	Session *recommend.Session `json:"session,omitempty"`
	Refresh bool               `json:"refresh"`
}

type assistantBody struct {
	models.AssistantRequest
	sessionFields
}

type shuffleBody struct {
	models.ShuffleRequest
	sessionFields
}

// RecommendResponse is the data of a recommend call.
type RecommendResponse struct {
	recommend.Session
	Reused bool `json:"reused"`
}

// RecommendAssistant handles POST /api/v1/recommend/assistant.
func (h *Handler) RecommendAssistant(w http.ResponseWriter, r *http.Request) {
	var body assistantBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	h.serveRecommendation(w, r, recommend.Request{
		Mode:      recommend.ModeAssistant,
		Message:   body.Message,
		UserID:    body.UserID,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}, body.sessionFields)
}

// RecommendShuffle handles POST /api/v1/recommend/shuffle.
func (h *Handler) RecommendShuffle(w http.ResponseWriter, r *http.Request) {
	var body shuffleBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	media, err := models.ParseMediaType(body.MediaType)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "media_type must be anime or manga", nil)
		return
	}

	h.serveRecommendation(w, r, recommend.Request{
		Mode: recommend.ModeShuffle,
		Shuffle: recommend.ShuffleParams{
			MediaType: media,
			Policy:    recommend.Policy(body.Policy),
			Count:     body.Count,
			MinRating: body.MinRating,
		},
		UserID:    body.UserID,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}, body.sessionFields)
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) serveRecommendation(w http.ResponseWriter, r *http.Request, req recommend.Request, sf sessionFields) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	var sess recommend.Session
	if sf.Session != nil {
		sess = *sf.Session
	}

	updated, reused, err := h.engine.Resume(ctx, sess, req, sf.Refresh)
	if err != nil {
		metrics.RecordRecommendation(req.Mode.String(), false, time.Since(start), err)
		status, code := statusForError(err)
		respondError(w, r, status, code, messageFor(code), err)
		return
	}

	if !reused && updated.Result != nil {
		res := updated.Result
		metrics.RecordRecommendation(req.Mode.String(), res.UsedFallback, time.Since(start), nil)
		switch req.Mode {
		case recommend.ModeAssistant:
			metrics.RecordIntentParse(res.Debug.Strategy)
		case recommend.ModeShuffle:
			metrics.RecordShufflePolicy(string(res.Debug.Policy), string(res.Debug.AppliedPolicy))
		}
	}

	respondData(w, RecommendResponse{Session: updated, Reused: reused}, start)
}

func messageFor(code string) string {
	switch code {
	case CodeValidation:
		return "Invalid recommendation request"
	case CodeUnavailable:
		return "The catalog is temporarily unavailable"
	default:
		return "Failed to generate recommendations"
	}
}
