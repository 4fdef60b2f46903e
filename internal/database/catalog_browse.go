// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/otakuconnect/internal/models"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// Sort options accepted by the catalog endpoints.
const (
	SortLatest     = "latest"
	SortOldest     = "oldest"
	SortRatingDesc = "rating_desc"
	SortRatingAsc  = "rating_asc"
	SortTitleAsc   = "title_asc"
	SortTitleDesc  = "title_desc"
)

var sortOrderings = map[string]recommend.Ordering{
	SortLatest:     {Column: "start_date", Descending: true},
	SortOldest:     {Column: "start_date"},
	SortRatingDesc: {Column: "mean", Descending: true},
	SortRatingAsc:  {Column: "mean"},
	SortTitleAsc:   {Column: "title"},
	SortTitleDesc:  {Column: "title", Descending: true},
}

// Release windows for the "latest" listing.
const (
	animeLatestMonths = 2
	mangaLatestMonths = 12
)

func sortOrdering(sort string, fallback recommend.Ordering) ([]recommend.Ordering, error) {
	if sort == "" {
		return []recommend.Ordering{fallback}, nil
	}
	o, ok := sortOrderings[sort]
	if !ok {
		return nil, fmt.Errorf("unknown sort option %q", sort)
	}
	return []recommend.Ordering{o}, nil
}

// SearchQuery matches titles containing term, case-insensitively. An empty
// term lists the catalog by popularity.
func SearchQuery(media models.MediaType, term, sort string, limit int) (recommend.CompiledQuery, error) {
	order, err := sortOrdering(sort, recommend.Ordering{Column: "popularity"})
	if err != nil {
		return recommend.CompiledQuery{}, err
	}
	q := recommend.CompiledQuery{MediaType: media, OrderBy: order, Limit: limit}
	if term = strings.TrimSpace(term); term != "" {
		q.Predicates = append(q.Predicates, recommend.ContainsMatch("title", term))
	}
	return q, nil
}

// LatestQuery lists titles that started within the media type's release
// window and not after now.
func LatestQuery(media models.MediaType, sort string, limit int, now time.Time) (recommend.CompiledQuery, error) {
	order, err := sortOrdering(sort, sortOrderings[SortLatest])
	if err != nil {
		return recommend.CompiledQuery{}, err
	}
	months := animeLatestMonths
	if media == models.MediaManga {
		months = mangaLatestMonths
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return recommend.CompiledQuery{
		MediaType: media,
		Predicates: []recommend.Predicate{
			{Clause: "start_date >= ?", Args: []interface{}{today.AddDate(0, -months, 0)}},
			{Clause: "start_date <= ?", Args: []interface{}{today}},
		},
		OrderBy: order,
		Limit:   limit,
	}, nil
}

// SearchCatalog runs SearchQuery.
func (db *DB) SearchCatalog(ctx context.Context, media models.MediaType, term, sort string, limit int) ([]models.ContentItem, error) {
	q, err := SearchQuery(media, term, sort, limit)
	if err != nil {
		return nil, err
	}
	return db.QueryContent(ctx, q)
}

// LatestCatalog runs LatestQuery against the wall clock.
func (db *DB) LatestCatalog(ctx context.Context, media models.MediaType, sort string, limit int) ([]models.ContentItem, error) {
	q, err := LatestQuery(media, sort, limit, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return db.QueryContent(ctx, q)
}
