// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/otakuconnect/internal/metrics"
	"github.com/tomtom215/otakuconnect/internal/models"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

const (
	animeColumns = "id, title, main_picture, genres, mean, rank, popularity, status, start_date, end_date, synopsis, num_episodes, studios, agerating"
	mangaColumns = "id, title, main_picture, genres, mean, rank, popularity, status, start_date, end_date, synopsis, num_volumes, num_chapters, authors, media_type"
)

func columnsFor(media models.MediaType) string {
	if media == models.MediaManga {
		return mangaColumns
	}
	return animeColumns
}

// QueryContent runs a compiled query against the media type's table.
// Predicate clauses are trusted compiler output; their values are bound.
//
//nolint:gocritic // hugeParam: CompiledQuery passed by value to match recommend.Catalog
func (db *DB) QueryContent(ctx context.Context, q recommend.CompiledQuery) ([]models.ContentItem, error) {
	query, args, err := db.buildContentQuery(&q)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var items []models.ContentItem
	err = db.conn.SelectContext(ctx, &items, query, args...)
	metrics.RecordDBQuery("query_content", q.MediaType.Table(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.MediaType.Table(), err)
	}

	return withMediaType(items, q.MediaType), nil
}

// CountContent counts the rows matching q's predicates.
//
//nolint:gocritic // hugeParam: CompiledQuery passed by value to match recommend.Catalog
func (db *DB) CountContent(ctx context.Context, q recommend.CompiledQuery) (int, error) {
	query, args, err := db.buildCountQuery(&q)
	if err != nil {
		return 0, err
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var n int
	err = db.conn.GetContext(ctx, &n, query, args...)
	metrics.RecordDBQuery("count_content", q.MediaType.Table(), time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.MediaType.Table(), err)
	}
	return n, nil
}

// GetContentByIDs hydrates the given IDs. Order is unspecified.
func (db *DB) GetContentByIDs(ctx context.Context, media models.MediaType, ids []int64) ([]models.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if !media.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, media)
	}

	query, args, err := sqlx.In("SELECT "+columnsFor(media)+" FROM "+media.Table()+" WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build id query: %w", err)
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var items []models.ContentItem
	err = db.conn.SelectContext(ctx, &items, db.conn.Rebind(query), args...)
	metrics.RecordDBQuery("content_by_ids", media.Table(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query %s by id: %w", media.Table(), err)
	}

	return withMediaType(items, media), nil
}

func withMediaType(items []models.ContentItem, media models.MediaType) []models.ContentItem {
	for i := range items {
		items[i].MediaType = media
	}
	return items
}
