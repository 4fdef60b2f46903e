// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/otakuconnect/internal/metrics"
	"github.com/tomtom215/otakuconnect/internal/models"
)

// GetFeedback returns every rating the user has left.
func (db *DB) GetFeedback(ctx context.Context, userID int64) ([]models.FeedbackRecord, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var records []models.FeedbackRecord
	err := db.conn.SelectContext(ctx, &records, db.conn.Rebind(
		`SELECT userid, entityid, entitytype, rating, reviewdate
		   FROM feedback_table
		  WHERE userid = ?
		  ORDER BY reviewdate DESC`), userID)
	metrics.RecordDBQuery("get_feedback", "feedback_table", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query feedback for user %d: %w", userID, err)
	}
	return records, nil
}

const (
	// ReviewModerationApproved is the feedback status shown to other users.
	ReviewModerationApproved = "approved"

	// DefaultReviewLimit bounds GetItemReviews when no limit is given.
	DefaultReviewLimit = 20
)

// GetItemReviews returns the approved reviews of one entity, newest first.
func (db *DB) GetItemReviews(ctx context.Context, media models.MediaType, entityID int64, limit int) ([]models.Review, error) {
	if !media.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, media)
	}
	if limit <= 0 {
		limit = DefaultReviewLimit
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var reviews []models.Review
	err := db.conn.SelectContext(ctx, &reviews, db.conn.Rebind(
		`SELECT u.username, f.reviewtitle, f.reviewcontent, f.rating,
		        COALESCE(f.spoilerflag, FALSE) AS spoilerflag, f.reviewdate
		   FROM feedback_table f
		   JOIN users u ON u.userid = f.userid
		  WHERE f.entitytype = ? AND f.entityid = ? AND LOWER(f.moderatedstatus) = ?
		  ORDER BY f.reviewdate DESC NULLS LAST
		  LIMIT ?`), string(media), entityID, ReviewModerationApproved, limit)
	metrics.RecordDBQuery("get_item_reviews", "feedback_table", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query reviews for %s %d: %w", media, entityID, err)
	}
	return reviews, nil
}

// GetFavoriteGenres returns the user's stored genres, lower-cased. A missing
// user or empty column yields no genres.
func (db *DB) GetFavoriteGenres(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var raw sql.NullString
	err := db.conn.GetContext(ctx, &raw, db.conn.Rebind(`SELECT favoritegenres FROM users WHERE userid = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	metrics.RecordDBQuery("get_favorite_genres", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query favorite genres for user %d: %w", userID, err)
	}
	if !raw.Valid {
		return nil, nil
	}
	return models.SplitGenres(raw.String), nil
}
