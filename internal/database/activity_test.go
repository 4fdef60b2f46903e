// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tomtom215/otakuconnect/internal/models"
)

func TestInsertActivity(t *testing.T) {
	occurred := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := &models.ActivityEntry{
		UserID:       3,
		EntityID:     104565,
		EntityType:   models.MediaManga,
		ActivityType: models.ActivityRecommended,
		Content:      "shuffle recommendation: Yotsuba to!",
		OccurredAt:   occurred,
	}

	testCases := []struct {
		name      string
		entry     *models.ActivityEntry
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name:  "manga entry stored with numeric entity type",
			entry: entry,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO user_activity_history").
					WithArgs(int64(3), int64(104565), 2, 4, "shuffle recommendation: Yotsuba to!", occurred).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name:  "database error",
			entry: entry,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO user_activity_history").WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
		{
			name:      "invalid entity type rejected before the query",
			entry:     &models.ActivityEntry{UserID: 1, EntityType: "Novel"},
			setupMock: func(sqlmock.Sqlmock) {},
			wantErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.setupMock(mock)

			err := db.InsertActivity(context.Background(), tc.entry)
			if (err != nil) != tc.wantErr {
				t.Errorf("InsertActivity() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestRecentActivity(t *testing.T) {
	db, mock := newMockDB(t)
	newer := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM user_activity_history\s+WHERE userid = \$1\s+ORDER BY activitydate DESC\s+LIMIT \$2`).
		WithArgs(int64(3), DefaultActivityLimit).
		WillReturnRows(sqlmock.NewRows([]string{"userid", "entityid", "entitytype", "activitytype", "content", "activitydate"}).
			AddRow(3, 5114, 1, 2, "Rated 10", newer).
			AddRow(3, 999, 7, 1, nil, newer).
			AddRow(3, 2, 2, 1, nil, older))

	entries, err := db.RecentActivity(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("RecentActivity() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (unknown entity type skipped)", len(entries))
	}
	if entries[0].EntityType != models.MediaAnime || entries[0].ActivityType != models.ActivityRated || entries[0].Content != "Rated 10" {
		t.Errorf("entries[0] = %+v, want rated anime", entries[0])
	}
	if entries[1].EntityType != models.MediaManga || entries[1].Content != "" || !entries[1].OccurredAt.Equal(older) {
		t.Errorf("entries[1] = %+v, want viewed manga with empty content", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRecentActivity_Error(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM user_activity_history").WillReturnError(sql.ErrConnDone)

	if _, err := db.RecentActivity(context.Background(), 3, 5); !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("RecentActivity() error = %v, want wrapped ErrConnDone", err)
	}
}
