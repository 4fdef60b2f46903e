// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"

	"github.com/rs/zerolog"
)

// IntentParser turns a free-text request into an Intent.
type IntentParser interface {
	// Name identifies the strategy in debug output and metrics.
	Name() string

	// Parse returns a normalized intent or an error.
	Parse(ctx context.Context, message string) (Intent, error)
}

// ParseResult is the outcome of a ParserPipeline run.
type ParseResult struct {
	Intent   Intent
	Strategy string
	// PrimaryErr is the failure that caused a fallback, if any.
	PrimaryErr error
}

// ParserPipeline tries a primary parser and falls back to a secondary one.
// The secondary must not fail; RuleParser never does.
type ParserPipeline struct {
	primary   IntentParser
	secondary IntentParser
	logger    zerolog.Logger
}

// NewParserPipeline builds a pipeline. primary may be nil, in which case
// every message goes to secondary.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewParserPipeline(primary, secondary IntentParser, logger zerolog.Logger) *ParserPipeline {
	return &ParserPipeline{primary: primary, secondary: secondary, logger: logger}
}

// Parse always returns an intent.
func (p *ParserPipeline) Parse(ctx context.Context, message string) ParseResult {
	var primaryErr error
	if p.primary != nil {
		intent, err := p.primary.Parse(ctx, message)
		if err == nil {
			return ParseResult{Intent: intent, Strategy: p.primary.Name()}
		}
		primaryErr = err
		p.logger.Debug().Err(err).Str("parser", p.primary.Name()).Msg("primary intent parser failed, using fallback")
	}

	intent, err := p.secondary.Parse(ctx, message)
	if err != nil {
		// Unreachable with RuleParser; keep the pipeline total regardless.
		p.logger.Warn().Err(err).Str("parser", p.secondary.Name()).Msg("fallback intent parser failed")
		return ParseResult{Intent: Intent{}, Strategy: p.secondary.Name(), PrimaryErr: primaryErr}
	}
	return ParseResult{Intent: intent, Strategy: p.secondary.Name(), PrimaryErr: primaryErr}
}
