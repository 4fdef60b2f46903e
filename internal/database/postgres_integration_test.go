// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/otakuconnect/internal/models"
	"github.com/tomtom215/otakuconnect/internal/recommend"
	"github.com/tomtom215/otakuconnect/internal/testinfra"
)

func TestPostgres_EndToEnd(t *testing.T) {
	pg := testinfra.StartPostgres(t)
	cfg := pg.DatabaseConfig()

	db, err := New(&cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { closeWithLog(db, "postgres test database") })
	ctx := context.Background()

	// golang-migrate tolerates re-running against an up-to-date schema.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if err := db.SeedSampleCatalog(ctx); err != nil {
		t.Fatalf("SeedSampleCatalog() error = %v", err)
	}

	compiler := recommend.NewCompilerWithClock(nil, func() time.Time {
		return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	})
	rules := recommend.NewRuleParser(nil)

	items, err := db.QueryContent(ctx, compiler.Compile(rules.ParseText("top rated fantasy anime"), recommend.WatchHistory{}))
	if err != nil {
		t.Fatalf("QueryContent() error = %v", err)
	}
	want := []int64{52991, 5114, 40748}
	got := make([]int64, len(items))
	for i := range items {
		got[i] = items[i].ID
	}
	if !equalInt64s(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}

	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO users (username, favoritegenres) VALUES ('kaori', 'Romance')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	var userID int64
	if err := db.Conn().GetContext(ctx, &userID, `SELECT userid FROM users WHERE username = 'kaori'`); err != nil {
		t.Fatalf("select user: %v", err)
	}
	err = db.InsertActivity(ctx, &models.ActivityEntry{
		UserID:       userID,
		EntityID:     52991,
		EntityType:   models.MediaAnime,
		ActivityType: models.ActivityRecommended,
		Content:      "assistant recommendation",
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("InsertActivity() error = %v", err)
	}
	history, err := db.RecentActivity(ctx, userID, 5)
	if err != nil {
		t.Fatalf("RecentActivity() error = %v", err)
	}
	if len(history) != 1 || history[0].EntityID != 52991 {
		t.Errorf("RecentActivity() = %+v, want the single recommendation", history)
	}

	// Activity for an unknown user violates the foreign key.
	err = db.InsertActivity(ctx, &models.ActivityEntry{
		UserID:     userID + 1000,
		EntityID:   1,
		EntityType: models.MediaManga,
		OccurredAt: time.Now().UTC(),
	})
	if err == nil {
		t.Error("InsertActivity() for unknown user: error = nil, want foreign key error")
	}
}
