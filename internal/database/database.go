// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/logging"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

const defaultQueryTimeout = 10 * time.Second

func init() {
	// sqlx has no bindvar entry for duckdb; it takes '?' like the compiler emits.
	sqlx.BindDriver(DriverDuckDB, sqlx.QUESTION)
}

// DB is the catalog and user-data store. It implements the recommend
// package's Catalog, FeedbackReader and PreferenceReader interfaces.
type DB struct {
	conn   *sqlx.DB
	cfg    *config.DatabaseConfig
	driver string
}

// New opens the configured store, verifies the connection and applies
// migrations when cfg.MigrateOnStart is set.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := open(cfg)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn, cfg: cfg, driver: cfg.Driver}
	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Bool("migrated", cfg.MigrateOnStart).
		Msg("Database connected")

	return db, nil
}

// NewWithConn wraps an existing connection. Used by tests with sqlmock.
func NewWithConn(conn *sql.DB, driver string, cfg *config.DatabaseConfig) *DB {
	if cfg == nil {
		cfg = &config.DatabaseConfig{Driver: driver, QueryTimeout: defaultQueryTimeout}
	}
	return &DB{conn: sqlx.NewDb(conn, driver), cfg: cfg, driver: driver}
}

func open(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		conn, err := sqlx.Open(DriverPostgres, cfg.PostgresURL())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return conn, nil
	case DriverDuckDB:
		if dir := filepath.Dir(cfg.Path); cfg.Path != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		conn, err := sqlx.Open(DriverDuckDB, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (db *DB) configureConnectionPool() {
	if db.driver == DriverDuckDB && db.cfg.Path == "" {
		// Each connection to ":memory:" is a separate database.
		db.conn.SetMaxOpenConns(1)
		db.conn.SetMaxIdleConns(1)
		db.conn.SetConnMaxLifetime(0)
		return
	}
	if db.cfg.MaxOpenConns > 0 {
		db.conn.SetMaxOpenConns(db.cfg.MaxOpenConns)
	}
	if db.cfg.MaxIdleConns > 0 {
		db.conn.SetMaxIdleConns(db.cfg.MaxIdleConns)
	}
	if db.cfg.ConnMaxLifetime > 0 {
		db.conn.SetConnMaxLifetime(db.cfg.ConnMaxLifetime)
	}
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Conn returns the underlying handle.
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// queryContext bounds a single statement by the configured query timeout.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := db.cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
