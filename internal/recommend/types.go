// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/otakuconnect/internal/models"
)

// Catalog reads anime and manga rows. Implemented by the database package.
type Catalog interface {
	// QueryContent runs a compiled query and returns rows in query order.
	QueryContent(ctx context.Context, q CompiledQuery) ([]models.ContentItem, error)

	// GetContentByIDs hydrates the given IDs. An empty ID list returns no rows.
	GetContentByIDs(ctx context.Context, media models.MediaType, ids []int64) ([]models.ContentItem, error)

	// CountContent counts the rows matching q's predicates. Ordering, limit
	// and offset are ignored.
	CountContent(ctx context.Context, q CompiledQuery) (int, error)
}

// FeedbackReader reads a user's ratings.
type FeedbackReader interface {
	GetFeedback(ctx context.Context, userID int64) ([]models.FeedbackRecord, error)
}

// PreferenceReader reads a user's stored favorite genres.
type PreferenceReader interface {
	GetFavoriteGenres(ctx context.Context, userID int64) ([]string, error)
}

// ActivityLogger records one activity entry. Implementations may be
// asynchronous; errors are never surfaced to the recommendation caller.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry models.ActivityEntry) error
}

// GenerationRequest is one call to a text-generation service.
type GenerationRequest struct {
	System string
	Schema string
	Prompt string
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Mode selects how a request is served.
type Mode int

const (
	// ModeAssistant parses free text into an intent and compiles a query.
	ModeAssistant Mode = iota
	// ModeShuffle samples the catalog with an explicit selection policy.
	ModeShuffle
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAssistant:
		return "assistant"
	case ModeShuffle:
		return "shuffle"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Policy is a shuffle selection policy.
type Policy string

const (
	PolicyPreference Policy = "preference"
	PolicyPopular    Policy = "popular"
	PolicyHiddenGems Policy = "hidden_gems"
	PolicyRandom     Policy = "random"
)

// ParsePolicy accepts the policy names plus a few spellings seen in clients.
// Empty input selects PolicyPopular.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "popular":
		return PolicyPopular, nil
	case "preference", "preference-based", "preferences":
		return PolicyPreference, nil
	case "hidden_gems", "hidden gems", "hidden-gems":
		return PolicyHiddenGems, nil
	case "random", "random discovery", "random_discovery":
		return PolicyRandom, nil
	default:
		return "", fmt.Errorf("unknown shuffle policy %q", s)
	}
}

// ShuffleParams are the structured inputs of shuffle mode.
type ShuffleParams struct {
	MediaType models.MediaType `json:"media_type"`
	Policy    Policy           `json:"policy"`
	Count     int              `json:"count"`
	MinRating float64          `json:"min_rating"`
}

// Request is one recommendation call.
type Request struct {
	Mode      Mode
	Message   string        // assistant mode
	Shuffle   ShuffleParams // shuffle mode
	UserID    int64         // 0 = anonymous
	RequestID string
}

// Result is the outcome of a recommendation call.
type Result struct {
	Items        []models.ContentItem `json:"items"`
	MediaType    models.MediaType     `json:"media_type"`
	UsedFallback bool                 `json:"used_fallback"`
	Notice       string               `json:"notice,omitempty"`
	Debug        DebugInfo            `json:"debug"`
}

// DebugInfo carries diagnostics for a Result. It is informational only.
type DebugInfo struct {
	Mode          string         `json:"mode"`
	Strategy      string         `json:"parser_strategy,omitempty"`
	ParserError   string         `json:"parser_error,omitempty"`
	Intent        *Intent        `json:"intent,omitempty"`
	Query         *CompiledQuery `json:"query,omitempty"`
	Policy        Policy         `json:"policy,omitempty"`
	AppliedPolicy Policy         `json:"applied_policy,omitempty"`
	CatalogRows   int            `json:"catalog_rows"`
	LatencyMS     int64          `json:"latency_ms"`
}
