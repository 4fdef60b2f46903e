// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"sort"
	"strings"

	"github.com/tomtom215/otakuconnect/internal/models"
)

// StatusFilter restricts results by airing/publishing state.
type StatusFilter string

const (
	StatusAny       StatusFilter = "any"
	StatusOngoing   StatusFilter = "ongoing"
	StatusCompleted StatusFilter = "completed"
)

// DefaultMediaType is used whenever a request does not name a media type.
const DefaultMediaType = models.MediaAnime

// GenreVocabulary is the closed set of genres recognized in requests.
var GenreVocabulary = []string{
	"action",
	"adventure",
	"comedy",
	"drama",
	"fantasy",
	"horror",
	"mystery",
	"romance",
	"sci-fi",
	"slice of life",
	"sports",
	"supernatural",
	"thriller",
}

var genreSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(GenreVocabulary))
	for _, g := range GenreVocabulary {
		m[g] = struct{}{}
	}
	return m
}()

// Intent is the structured form of a recommendation request. Field names
// double as the JSON schema the model-backed parser is asked to produce.
type Intent struct {
	TopRated             bool             `json:"top_rated"`
	Latest               bool             `json:"latest"`
	ConsiderWatchHistory bool             `json:"consider_watch_history"`
	Genres               []string         `json:"genres"`
	MediaType            models.MediaType `json:"media_type"`
	ResultCount          int              `json:"result_count"`
	StatusFilter         StatusFilter     `json:"status_filter"`
	YearFrom             *int             `json:"year_from"`
	YearsBack            *int             `json:"years_back"`
}

// Plausible bounds for year filters. Values outside are dropped.
const (
	minYear      = 1900
	maxYear      = 2100
	maxYearsBack = 100
)

// Normalize returns a copy of in with every field forced into its domain:
// unknown genres dropped, genres sorted and deduplicated, unknown media
// types and statuses replaced by defaults, result count clamped to
// [1, cfg.MaxResults] and implausible year values cleared.
//
//nolint:gocritic // hugeParam: value semantics keep Intent immutable
func (in Intent) Normalize(cfg *Config) Intent {
	out := in

	out.Genres = normalizeGenres(in.Genres)

	if m, err := models.ParseMediaType(string(in.MediaType)); err == nil {
		out.MediaType = m
	} else {
		out.MediaType = DefaultMediaType
	}

	switch StatusFilter(strings.ToLower(strings.TrimSpace(string(in.StatusFilter)))) {
	case StatusOngoing:
		out.StatusFilter = StatusOngoing
	case StatusCompleted:
		out.StatusFilter = StatusCompleted
	default:
		out.StatusFilter = StatusAny
	}

	switch {
	case in.ResultCount <= 0:
		out.ResultCount = cfg.DefaultResults
	case in.ResultCount > cfg.MaxResults:
		out.ResultCount = cfg.MaxResults
	}

	if in.YearFrom != nil && (*in.YearFrom < minYear || *in.YearFrom > maxYear) {
		out.YearFrom = nil
	} else if in.YearFrom != nil {
		y := *in.YearFrom
		out.YearFrom = &y
	}
	if in.YearsBack != nil && (*in.YearsBack <= 0 || *in.YearsBack > maxYearsBack) {
		out.YearsBack = nil
	} else if in.YearsBack != nil {
		n := *in.YearsBack
		out.YearsBack = &n
	}

	return out
}

func normalizeGenres(genres []string) []string {
	if len(genres) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if _, ok := genreSet[g]; !ok {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
