// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package api

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/otakuconnect/internal/models"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// Recommender serves recommendation requests. Implemented by *recommend.Engine.
type Recommender interface {
	Resume(ctx context.Context, sess recommend.Session, req recommend.Request, force bool) (recommend.Session, bool, error)
}

// CatalogBrowser lists and reads catalog rows. Implemented by *database.DB.
type CatalogBrowser interface {
	SearchCatalog(ctx context.Context, media models.MediaType, term, sort string, limit int) ([]models.ContentItem, error)
	LatestCatalog(ctx context.Context, media models.MediaType, sort string, limit int) ([]models.ContentItem, error)
	GetContentByIDs(ctx context.Context, media models.MediaType, ids []int64) ([]models.ContentItem, error)
	GetItemReviews(ctx context.Context, media models.MediaType, entityID int64, limit int) ([]models.Review, error)
}

// ActivityReader reads a user's activity history. Implemented by *database.DB.
type ActivityReader interface {
	RecentActivity(ctx context.Context, userID int64, limit int) ([]models.ActivityEntry, error)
}

// ActivityRecorder records user activity. Implemented by *activity.Publisher.
type ActivityRecorder interface {
	LogActivity(ctx context.Context, entry models.ActivityEntry) error
}

// StoreHealth reports store connectivity. Implemented by *database.DB.
type StoreHealth interface {
	Ping(ctx context.Context) error
	Driver() string
}

// BreakerState reports the assistant circuit state. Implemented by *assistant.Client.
type BreakerState interface {
	State() gobreaker.State
}

// Dependencies wires the handler. Assistant may be nil when model parsing is
// disabled; Recorder may be nil to skip view records.
type Dependencies struct {
	Engine    Recommender
	Catalog   CatalogBrowser
	Activity  ActivityReader
	Recorder  ActivityRecorder
	Store     StoreHealth
	Assistant BreakerState
}

// Options carries handler settings taken from configuration.
type Options struct {
	Version        string
	RequestTimeout time.Duration
	HistoryLimit   int
	DefaultLimit   int
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_recommend.go: assistant and shuffle endpoints
//   - handlers_catalog.go: catalog search, latest listings and item detail
//   - handlers_activity.go: user activity history
//   - handlers_health.go: liveness, readiness and status
type Handler struct {
	engine    Recommender
	catalog   CatalogBrowser
	activity  ActivityReader
	recorder  ActivityRecorder
	store     StoreHealth
	assistant BreakerState
	opts      Options
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a handler. Zero options get defaults.
//
//nolint:gocritic // hugeParam: deps is consumed once at startup
func NewHandler(deps Dependencies, opts Options) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		engine:    deps.Engine,
		catalog:   deps.Catalog,
		activity:  deps.Activity,
		recorder:  deps.Recorder,
		store:     deps.Store,
		assistant: deps.Assistant,
		opts:      opts,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// requestContext bounds a handler's downstream work.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.opts.RequestTimeout)
}
