// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tomtom215/otakuconnect/internal/logging"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// Migrate brings the schema up to date. Postgres uses golang-migrate with
// the embedded SQL files; DuckDB, which golang-migrate has no driver for,
// uses the versioned runner below.
func (db *DB) Migrate() error {
	switch db.driver {
	case DriverPostgres:
		return runPostgresMigrations(db.cfg.PostgresURL())
	case DriverDuckDB:
		return db.runVersionedMigrations()
	default:
		return fmt.Errorf("unsupported database driver %q", db.driver)
	}
}

func runPostgresMigrations(databaseURL string) error {
	source, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logging.Warn().AnErr("source_error", srcErr).AnErr("db_error", dbErr).Msg("Failed to close migrator")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if version, dirty, err := m.Version(); err == nil {
		logging.Info().Uint("version", version).Bool("dirty", dirty).Msg("Postgres schema up to date")
	}
	return nil
}

// Migration is one versioned DuckDB schema change.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
	AppliedAt   time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// duckdbMigrations mirrors migrations/postgres. Append only; one statement
// per entry.
func duckdbMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_anime", Description: "Anime catalog", SQL: `
CREATE TABLE IF NOT EXISTS anime (
	id BIGINT PRIMARY KEY,
	title TEXT NOT NULL,
	main_picture TEXT,
	mean DOUBLE,
	rank INTEGER,
	popularity INTEGER,
	status TEXT,
	genres TEXT,
	num_episodes INTEGER,
	start_date DATE,
	end_date DATE,
	synopsis TEXT,
	agerating TEXT,
	studios TEXT
)`},
		{Version: 2, Name: "create_manga", Description: "Manga catalog", SQL: `
CREATE TABLE IF NOT EXISTS manga (
	id BIGINT PRIMARY KEY,
	title TEXT NOT NULL,
	main_picture TEXT,
	authors TEXT,
	mean DOUBLE,
	rank INTEGER,
	popularity INTEGER,
	status TEXT,
	genres TEXT,
	num_volumes INTEGER,
	num_chapters INTEGER,
	media_type TEXT,
	start_date DATE,
	end_date DATE,
	synopsis TEXT
)`},
		{Version: 3, Name: "create_users", Description: "Users and stored genre preferences", SQL: `
CREATE TABLE IF NOT EXISTS users (
	userid BIGINT PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT,
	favoritegenres TEXT,
	createdat TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
		{Version: 4, Name: "create_feedback_seq", Description: "Feedback id sequence", SQL: `
CREATE SEQUENCE IF NOT EXISTS feedback_id_seq START 1`},
		{Version: 5, Name: "create_feedback", Description: "User ratings and reviews", SQL: `
CREATE TABLE IF NOT EXISTS feedback_table (
	feedbackid BIGINT PRIMARY KEY DEFAULT nextval('feedback_id_seq'),
	rating INTEGER NOT NULL,
	userid BIGINT NOT NULL,
	entitytype TEXT NOT NULL,
	entityid BIGINT NOT NULL,
	reviewtitle TEXT,
	reviewcontent TEXT,
	spoilerflag BOOLEAN DEFAULT FALSE,
	reviewdate TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	moderatedstatus TEXT DEFAULT 'pending'
)`},
		{Version: 6, Name: "create_activity_seq", Description: "Activity id sequence", SQL: `
CREATE SEQUENCE IF NOT EXISTS activity_id_seq START 1`},
		{Version: 7, Name: "create_activity", Description: "User activity history", SQL: `
CREATE TABLE IF NOT EXISTS user_activity_history (
	activityid BIGINT PRIMARY KEY DEFAULT nextval('activity_id_seq'),
	userid BIGINT NOT NULL,
	entityid BIGINT NOT NULL,
	entitytype INTEGER NOT NULL,
	activitytype INTEGER NOT NULL,
	content TEXT,
	activitydate TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
		{Version: 8, Name: "index_feedback_user", Description: "Feedback lookups by user", SQL: `
CREATE INDEX IF NOT EXISTS idx_feedback_userid ON feedback_table (userid)`},
		{Version: 9, Name: "index_activity_user", Description: "Activity lookups by user", SQL: `
CREATE INDEX IF NOT EXISTS idx_activity_userid ON user_activity_history (userid)`},
	}
}

func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	var rows []struct {
		Version     int       `db:"version"`
		Name        string    `db:"name"`
		Description *string   `db:"description"`
		AppliedAt   time.Time `db:"applied_at"`
	}
	if err := db.conn.SelectContext(ctx, &rows,
		`SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`); err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}

	applied := make(map[int]Migration, len(rows))
	for _, r := range rows {
		m := Migration{Version: r.Version, Name: r.Name, AppliedAt: r.AppliedAt}
		if r.Description != nil {
			m.Description = *r.Description
		}
		applied[m.Version] = m
	}
	return applied, nil
}

// runVersionedMigrations executes only migrations that have not been applied.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	newMigrations := 0
	for _, m := range duckdbMigrations() {
		if _, exists := applied[m.Version]; exists {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)`,
			m.Version, m.Name, m.Description); err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}
		newMigrations++
	}

	if newMigrations > 0 {
		logging.Info().Int("applied", newMigrations).Msg("Applied DuckDB migrations")
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied DuckDB migration version.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.conn.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
