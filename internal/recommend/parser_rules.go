// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/otakuconnect/internal/models"
)

var (
	integerPattern = regexp.MustCompile(`\d+`)
	yearPattern    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	// Tried in order; first match wins.
	yearsBackPatterns = []struct {
		re    *regexp.Regexp
		fixed int // used when the pattern has no capture group
	}{
		{re: regexp.MustCompile(`\b(?:last|past|recent)\s+(\d+)\s+years?\b`)},
		{re: regexp.MustCompile(`\b(?:past|last)\s+decade\b`), fixed: 10},
	}

	latestPattern   = regexp.MustCompile(`\b(?:latest|newest|new|current|this year|this season)\b`)
	recentPattern   = regexp.MustCompile(`\brecent\b`)
	topRatedPattern = regexp.MustCompile(`\b(?:top|best|highest rated|popular|must-watch|must watch)\b`)
	historyPattern  = regexp.MustCompile(`\b(?:like what i|similar to|based on|like|similar)\b`)
)

// RuleParser extracts an intent with keyword and pattern matching. It is
// deterministic and never fails.
type RuleParser struct {
	cfg *Config
}

// NewRuleParser creates a rule parser that normalizes with cfg.
func NewRuleParser(cfg *Config) *RuleParser {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &RuleParser{cfg: cfg}
}

// Name implements IntentParser.
func (p *RuleParser) Name() string { return "rules" }

// Parse implements IntentParser.
func (p *RuleParser) Parse(_ context.Context, message string) (Intent, error) {
	return p.ParseText(message), nil
}

// ParseText is Parse without the context.
func (p *RuleParser) ParseText(message string) Intent {
	text := strings.ToLower(message)

	var intent Intent

	for _, g := range GenreVocabulary {
		if strings.Contains(text, g) {
			intent.Genres = append(intent.Genres, g)
		}
	}

	yearsBack := matchYearsBack(text)
	intent.YearsBack = yearsBack

	if m := yearPattern.FindString(text); m != "" {
		y, _ := strconv.Atoi(m)
		intent.YearFrom = &y
	}

	intent.ResultCount = firstInteger(text)

	intent.Latest = latestPattern.MatchString(text) ||
		(yearsBack == nil && recentPattern.MatchString(text))
	intent.TopRated = topRatedPattern.MatchString(text)
	intent.ConsiderWatchHistory = historyPattern.MatchString(text)

	switch {
	case strings.Contains(text, "manga"):
		intent.MediaType = models.MediaManga
	case strings.Contains(text, "anime"):
		intent.MediaType = models.MediaAnime
	default:
		intent.MediaType = DefaultMediaType
	}

	switch {
	case strings.Contains(text, "ongoing"):
		intent.StatusFilter = StatusOngoing
	case strings.Contains(text, "completed"):
		intent.StatusFilter = StatusCompleted
	default:
		intent.StatusFilter = StatusAny
	}

	return intent.Normalize(p.cfg)
}

// matchYearsBack returns the relative year window, or nil.
func matchYearsBack(text string) *int {
	for _, p := range yearsBackPatterns {
		loc := p.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		n := p.fixed
		if len(loc) >= 4 && loc[2] >= 0 {
			v, err := strconv.Atoi(text[loc[2]:loc[3]])
			if err != nil {
				continue
			}
			n = v
		}
		return &n
	}
	return nil
}

// firstInteger returns the first integer literal in text, whatever it
// counts. Zero means none found; Normalize applies the default and the cap.
func firstInteger(text string) int {
	tok := integerPattern.FindString(text)
	if tok == "" {
		return 0
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return math.MaxInt
	}
	return n
}
