// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/otakuconnect/internal/metrics"
	"github.com/tomtom215/otakuconnect/internal/models"
)

// DefaultActivityLimit is the history length shown on a profile.
const DefaultActivityLimit = 10

type activityRow struct {
	UserID       int64          `db:"userid"`
	EntityID     int64          `db:"entityid"`
	EntityType   int            `db:"entitytype"`
	ActivityType int            `db:"activitytype"`
	Content      sql.NullString `db:"content"`
	ActivityDate time.Time      `db:"activitydate"`
}

// InsertActivity appends one activity row.
func (db *DB) InsertActivity(ctx context.Context, e *models.ActivityEntry) error {
	if !e.EntityType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMediaType, e.EntityType)
	}
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(
		`INSERT INTO user_activity_history (userid, entityid, entitytype, activitytype, content, activitydate)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		e.UserID, e.EntityID, e.EntityType.EntityTypeID(), int(e.ActivityType), e.Content, occurred)
	metrics.RecordDBQuery("insert_activity", "user_activity_history", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert activity for user %d: %w", e.UserID, err)
	}
	return nil
}

// RecentActivity returns the user's newest activity rows, newest first.
// limit <= 0 means DefaultActivityLimit.
func (db *DB) RecentActivity(ctx context.Context, userID int64, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var rows []activityRow
	err := db.conn.SelectContext(ctx, &rows, db.conn.Rebind(
		`SELECT userid, entityid, entitytype, activitytype, content, activitydate
		   FROM user_activity_history
		  WHERE userid = ?
		  ORDER BY activitydate DESC
		  LIMIT ?`), userID, limit)
	metrics.RecordDBQuery("recent_activity", "user_activity_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query activity for user %d: %w", userID, err)
	}

	entries := make([]models.ActivityEntry, 0, len(rows))
	for _, r := range rows {
		media, err := models.MediaTypeFromEntityID(r.EntityType)
		if err != nil {
			continue
		}
		entries = append(entries, models.ActivityEntry{
			UserID:       r.UserID,
			EntityID:     r.EntityID,
			EntityType:   media,
			ActivityType: models.ActivityType(r.ActivityType),
			Content:      r.Content.String,
			OccurredAt:   r.ActivityDate,
		})
	}
	return entries, nil
}
