// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/assistant"
	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/database"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// initAssistant returns nil when model-backed parsing is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initAssistant(cfg *config.Config, logger zerolog.Logger) (*assistant.Client, error) {
	if !cfg.Assistant.Enabled {
		logger.Info().Msg("Assistant disabled, intent parsing uses rules only (ASSISTANT_ENABLED=false)")
		return nil, nil
	}
	client, err := assistant.New(&cfg.Assistant)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("model", cfg.Assistant.Model).
		Dur("timeout", cfg.Assistant.Timeout).
		Float64("rps", cfg.Assistant.RequestsPerSecond).
		Msg("Assistant client initialized")
	return client, nil
}

// initEngine wires the engine to the store, the activity publisher and the
// optional assistant.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(cfg *config.Config, db *database.DB, activityLog recommend.ActivityLogger,
	gen *assistant.Client, logger zerolog.Logger) (*recommend.Engine, error) {
	deps := recommend.Dependencies{
		Catalog:     db,
		Feedback:    db,
		Preferences: db,
		Activity:    activityLog,
	}
	// A typed nil would make the engine think a generator exists.
	if gen != nil {
		deps.Generator = gen
	}
	return recommend.NewEngine(buildEngineConfig(&cfg.Recommend), deps, logger)
}

// buildEngineConfig maps the recommend section onto engine settings. Zero
// values keep the engine defaults.
func buildEngineConfig(rc *config.RecommendConfig) *recommend.Config {
	out := recommend.DefaultConfig()
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setInt(&out.DefaultResults, rc.DefaultResults)
	setInt(&out.MaxResults, rc.MaxResults)
	setInt(&out.ShuffleMinCount, rc.ShuffleMinCount)
	setInt(&out.ShuffleMaxCount, rc.ShuffleMaxCount)
	setInt(&out.HiddenGemThreshold, rc.HiddenGemThreshold)
	setInt(&out.LikedRatingThreshold, rc.LikedRatingThreshold)
	setInt(&out.MaxLikedItems, rc.MaxLikedItems)
	if rc.FallbackMinRating > 0 {
		out.FallbackMinRating = rc.FallbackMinRating
	}
	if rc.ParserTimeout > 0 {
		out.ParserTimeout = rc.ParserTimeout
	}
	out.LogActivity = rc.LogActivity
	out.Seed = rc.Seed
	out.SessionKey = rc.SessionKey
	return out
}
