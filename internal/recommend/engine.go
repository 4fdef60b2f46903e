// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/models"
)

// Dependencies are the collaborators of an Engine. Only Catalog is required.
type Dependencies struct {
	Catalog     Catalog
	Feedback    FeedbackReader   // nil disables the watch-history filter
	Preferences PreferenceReader // nil makes the preference policy degrade
	Activity    ActivityLogger   // nil disables activity logging
	Generator   TextGenerator    // nil means rule parsing only
}

// Engine serves recommendation requests in assistant and shuffle mode.
// It holds no per-user state and is safe for concurrent use; the shuffle
// RNG is the only shared mutable state and is guarded inside the Ranker.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog     Catalog
	feedback    FeedbackReader
	preferences PreferenceReader
	activity    ActivityLogger

	parser   *ParserPipeline
	compiler *Compiler
	ranker   *Ranker

	sessionKey []byte

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	errorCount    atomic.Int64
}

// Stats are cumulative engine counters.
type Stats struct {
	Requests  int64 `json:"requests"`
	Fallbacks int64 `json:"fallbacks"`
	Errors    int64 `json:"errors"`
}

// NewEngine creates an engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sessionKey := []byte(cfg.SessionKey)
	if len(sessionKey) == 0 {
		sessionKey = make([]byte, 32)
		if _, err := cryptorand.Read(sessionKey); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}

	logger = logger.With().Str("component", "recommend").Logger()

	var primary IntentParser
	if deps.Generator != nil {
		primary = NewModelParser(deps.Generator, cfg)
	}

	return &Engine{
		config:      cfg,
		logger:      logger,
		catalog:     deps.Catalog,
		feedback:    deps.Feedback,
		preferences: deps.Preferences,
		activity:    deps.Activity,
		parser:      NewParserPipeline(primary, NewRuleParser(cfg), logger),
		compiler:    NewCompiler(cfg),
		ranker:      NewRanker(deps.Catalog, cfg, rand.New(rand.NewSource(seed))), //nolint:gosec // math/rand is fine for recommendation shuffling
		sessionKey:  sessionKey,
	}, nil
}

// SetClock replaces the compiler clock. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.compiler = NewCompilerWithClock(e.config, now)
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:  e.requestCount.Load(),
		Fallbacks: e.fallbackCount.Load(),
		Errors:    e.errorCount.Load(),
	}
}

// Recommend serves one request. The only error returned for a well-formed
// request wraps ErrCatalogUnavailable.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	e.requestCount.Add(1)

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("mode", req.Mode.String()).
		Logger()

	var (
		res *Result
		err error
	)
	switch req.Mode {
	case ModeAssistant:
		res, err = e.assistant(ctx, req, logger)
	case ModeShuffle:
		res, err = e.shuffle(ctx, req, logger)
	default:
		err = fmt.Errorf("%w: unknown mode %s", ErrInvalidRequest, req.Mode)
	}
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if res.UsedFallback {
		e.fallbackCount.Add(1)
	}
	res.Debug.Mode = req.Mode.String()
	res.Debug.LatencyMS = time.Since(start).Milliseconds()

	e.logFirstItem(ctx, req, res, logger)

	logger.Debug().
		Int("returned", len(res.Items)).
		Bool("used_fallback", res.UsedFallback).
		Int64("latency_ms", res.Debug.LatencyMS).
		Msg("recommendation complete")

	return res, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) assistant(ctx context.Context, req Request, logger zerolog.Logger) (*Result, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}

	parsed := e.parser.Parse(ctx, req.Message)
	intent := parsed.Intent.Normalize(e.config)

	history, err := e.watchHistory(ctx, req.UserID, intent, logger)
	if err != nil {
		return nil, err
	}

	q := e.compiler.Compile(intent, history)
	items, err := e.catalog.QueryContent(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	res := &Result{
		Items:     items,
		MediaType: q.MediaType,
		Debug: DebugInfo{
			Strategy:    parsed.Strategy,
			Intent:      &intent,
			Query:       &q,
			CatalogRows: len(items),
		},
	}
	if parsed.PrimaryErr != nil {
		res.Debug.ParserError = parsed.PrimaryErr.Error()
	}

	if len(items) == 0 {
		fallback, fq, err := e.ranker.Fallback(ctx, q.MediaType, e.config.FallbackMinRating, intent.ResultCount)
		if err != nil {
			return nil, err
		}
		res.Items = fallback
		res.UsedFallback = true
		res.Notice = NoticeFallbackSelected
		res.Debug.Query = &fq
		logger.Debug().Int("fallback_rows", len(fallback)).Msg("compiled query returned no rows, using fallback")
	}

	return res, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) shuffle(ctx context.Context, req Request, logger zerolog.Logger) (*Result, error) {
	params, err := e.normalizeShuffle(req.Shuffle)
	if err != nil {
		return nil, err
	}

	var favorites []string
	if params.Policy == PolicyPreference {
		favorites = e.favoriteGenres(ctx, req.UserID, logger)
	}

	outcome, err := e.ranker.Shuffle(ctx, params, favorites)
	if err != nil {
		return nil, err
	}

	return &Result{
		Items:     outcome.Items,
		MediaType: params.MediaType,
		Notice:    outcome.Notice,
		Debug: DebugInfo{
			Query:         &outcome.Query,
			Policy:        params.Policy,
			AppliedPolicy: outcome.Applied,
			CatalogRows:   len(outcome.Items),
		},
	}, nil
}

func (e *Engine) normalizeShuffle(p ShuffleParams) (ShuffleParams, error) {
	if !p.MediaType.Valid() {
		m, err := models.ParseMediaType(string(p.MediaType))
		if err != nil {
			m = DefaultMediaType
		}
		p.MediaType = m
	}

	policy, err := ParsePolicy(string(p.Policy))
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	p.Policy = policy

	if p.Count == 0 {
		p.Count = e.config.DefaultResults
	}
	p.Count = clamp(p.Count, e.config.ShuffleMinCount, e.config.ShuffleMaxCount)

	switch {
	case p.MinRating < 0:
		p.MinRating = 0
	case p.MinRating > 10:
		p.MinRating = 10
	}
	return p, nil
}

// watchHistory derives the liked-genre signal for intent's media type.
// Feedback read failures skip the filter; catalog failures propagate.
//
//nolint:gocritic // hugeParam: intent passed by value for immutability
func (e *Engine) watchHistory(ctx context.Context, userID int64, intent Intent, logger zerolog.Logger) (WatchHistory, error) {
	if !intent.ConsiderWatchHistory || userID <= 0 || e.feedback == nil {
		return WatchHistory{}, nil
	}

	feedback, err := e.feedback.GetFeedback(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("feedback unavailable, skipping watch-history filter")
		return WatchHistory{}, nil
	}

	ids := models.LikedIDs(feedback, e.config.LikedRatingThreshold)[intent.MediaType]
	if len(ids) == 0 {
		return WatchHistory{}, nil
	}
	if len(ids) > e.config.MaxLikedItems {
		ids = ids[:e.config.MaxLikedItems]
	}

	liked, err := e.catalog.GetContentByIDs(ctx, intent.MediaType, ids)
	if err != nil {
		return WatchHistory{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	var genres []string
	for i := range liked {
		genres = append(genres, liked[i].GenreSet()...)
	}
	return WatchHistory{LikedIDs: ids, Genres: genres}, nil
}

func (e *Engine) favoriteGenres(ctx context.Context, userID int64, logger zerolog.Logger) []string {
	if userID <= 0 || e.preferences == nil {
		return nil
	}
	genres, err := e.preferences.GetFavoriteGenres(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("favorite genres unavailable, preference policy will degrade")
		return nil
	}
	return genres
}

// logFirstItem records the first recommended item. Failures are logged and
// otherwise ignored.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) logFirstItem(ctx context.Context, req Request, res *Result, logger zerolog.Logger) {
	if !e.config.LogActivity || e.activity == nil || req.UserID <= 0 || len(res.Items) == 0 {
		return
	}
	first := res.Items[0]
	entry := models.ActivityEntry{
		UserID:       req.UserID,
		EntityID:     first.ID,
		EntityType:   res.MediaType,
		ActivityType: models.ActivityRecommended,
		Content:      fmt.Sprintf("%s recommendation: %s", req.Mode, first.Title),
		OccurredAt:   time.Now().UTC(),
	}
	if err := e.activity.LogActivity(ctx, entry); err != nil {
		logger.Debug().Err(err).Int64("entity_id", first.ID).Msg("activity log failed")
	}
}

// IsCatalogUnavailable reports whether err came from an unreachable catalog.
func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}
