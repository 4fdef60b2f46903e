// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const modelSystemPrompt = `You convert anime and manga recommendation requests into JSON.
Reply with exactly one JSON object and nothing else. Do not add commentary.
Rules:
- genres: only values from this list: %s
- media_type: "Anime" or "Manga"; use "Anime" when the request does not say.
- result_count: the number of titles requested; 5 when not stated.
- status_filter: "ongoing", "completed" or "any".
- year_from: an absolute start year ("since 2015" -> 2015), otherwise null.
- years_back: a relative window ("last 3 years" -> 3, "past decade" -> 10), otherwise null.
- latest: true when the user wants new or recent titles.
- top_rated: true when the user wants the best or most popular titles.
- consider_watch_history: true when the user refers to things they liked before.`

const intentSchema = `{
  "top_rated": boolean,
  "latest": boolean,
  "consider_watch_history": boolean,
  "genres": [string],
  "media_type": "Anime" | "Manga",
  "result_count": integer,
  "status_filter": "ongoing" | "completed" | "any",
  "year_from": integer | null,
  "years_back": integer | null
}`

// ModelParser asks a text-generation service to extract the intent. Any
// transport error, timeout or reply that is not a single JSON object is a
// parse failure. There are no retries.
type ModelParser struct {
	gen     TextGenerator
	cfg     *Config
	timeout time.Duration
}

// NewModelParser creates a model-backed parser.
func NewModelParser(gen TextGenerator, cfg *Config) *ModelParser {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ModelParser{gen: gen, cfg: cfg, timeout: cfg.ParserTimeout}
}

// Name implements IntentParser.
func (p *ModelParser) Name() string { return "model" }

// Parse implements IntentParser.
func (p *ModelParser) Parse(ctx context.Context, message string) (Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reply, err := p.gen.Generate(ctx, GenerationRequest{
		System: fmt.Sprintf(modelSystemPrompt, strings.Join(GenreVocabulary, ", ")),
		Schema: intentSchema,
		Prompt: message,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("%w: generate: %w", ErrParseFailure, err)
	}

	intent, err := decodeIntent(reply)
	if err != nil {
		return Intent{}, err
	}
	return intent.Normalize(p.cfg), nil
}

// decodeIntent accepts a single JSON object, optionally wrapped in one
// markdown code fence.
func decodeIntent(reply string) (Intent, error) {
	body := stripCodeFence(strings.TrimSpace(reply))
	if !strings.HasPrefix(body, "{") {
		return Intent{}, fmt.Errorf("%w: reply is not a JSON object", ErrParseFailure)
	}

	var intent Intent
	if err := json.Unmarshal([]byte(body), &intent); err != nil {
		return Intent{}, fmt.Errorf("%w: decode: %w", ErrParseFailure, err)
	}
	return intent, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := s[3 : len(s)-3]
	// Drop an optional language tag on the opening line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], "{}") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
