// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" with Data populated, or "error" with Error populated.
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "media_type": "Anime", "used_fallback": false},
//	  "metadata": {"timestamp": "2026-10-17T12:00:00Z", "query_time_ms": 45}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes in use:
//   - VALIDATION_ERROR: invalid request body or parameters (400)
//   - NOT_FOUND: unknown media type or route (404)
//   - SERVICE_UNAVAILABLE: the catalog could not be reached (503)
//   - INTERNAL_ERROR: anything else (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AssistantRequest is the body of POST /api/v1/recommend/assistant.
type AssistantRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
	UserID  int64  `json:"user_id" validate:"gte=0"`
}

// ShuffleRequest is the body of POST /api/v1/recommend/shuffle.
type ShuffleRequest struct {
	MediaType string  `json:"media_type" validate:"required,mediatype"`
	Policy    string  `json:"policy" validate:"omitempty,oneof=preference popular hidden_gems random"`
	Count     int     `json:"count" validate:"omitempty,min=3,max=10"` // 0 = default
	MinRating float64 `json:"min_rating" validate:"gte=0,lte=10"`
	UserID    int64   `json:"user_id" validate:"gte=0"`
}

// CatalogSearchParams are the query parameters of the catalog endpoints.
type CatalogSearchParams struct {
	Query string `json:"q" validate:"max=200"`
	Sort  string `json:"sort" validate:"omitempty,oneof=latest oldest rating_desc rating_asc title_asc title_desc"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// ItemDetailResponse is returned by GET /api/v1/catalog/{media}/{id}.
type ItemDetailResponse struct {
	Item    ContentItem `json:"item"`
	Reviews []Review    `json:"reviews"`
}

// ActivityHistoryResponse is returned by GET /api/v1/users/{userID}/activity.
type ActivityHistoryResponse struct {
	UserID  int64           `json:"user_id"`
	Entries []ActivityEntry `json:"entries"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	DatabaseOK    bool    `json:"database_connected"`
	Driver        string  `json:"database_driver,omitempty"`
	AssistantOK   bool    `json:"assistant_available"`
	BreakerState  string  `json:"assistant_breaker_state,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
