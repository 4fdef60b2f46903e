// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Assistant AssistantConfig `koanf:"assistant"`
	Recommend RecommendConfig `koanf:"recommend"`
	Activity  ActivityConfig  `koanf:"activity"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// Address returns host:port for http.Server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and configures the catalog store.
type DatabaseConfig struct {
	// Driver is "postgres" (production) or "duckdb" (embedded, local development).
	Driver string `koanf:"driver"`

	// PostgreSQL connection parts, set from the DB_* environment variables.
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode"`

	// Path is the DuckDB database file; empty means in-memory.
	Path string `koanf:"path"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`

	// SeedSample loads a demo catalog into an empty store at startup.
	SeedSample bool `koanf:"seed_sample"`
}

// PostgresURL builds a postgres:// connection URL from the configured parts.
func (d DatabaseConfig) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AssistantConfig configures the text-generation service used for intent extraction.
type AssistantConfig struct {
	// Enabled turns on model-backed intent parsing. When false every request
	// uses the deterministic rule parser.
	Enabled bool `koanf:"enabled"`

	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"` // Optional override (proxies, gateways)
	Model             string        `koanf:"model"`
	MaxTokens         int           `koanf:"max_tokens"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`

	// Circuit breaker around the remote call
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// RecommendConfig holds recommendation engine tuning.
type RecommendConfig struct {
	DefaultResults       int           `koanf:"default_results"`
	MaxResults           int           `koanf:"max_results"`
	ShuffleMinCount      int           `koanf:"shuffle_min_count"`
	ShuffleMaxCount      int           `koanf:"shuffle_max_count"`
	FallbackMinRating    float64       `koanf:"fallback_min_rating"`
	HiddenGemThreshold   int           `koanf:"hidden_gem_threshold"`
	LikedRatingThreshold int           `koanf:"liked_rating_threshold"`
	MaxLikedItems        int           `koanf:"max_liked_items"`
	ParserTimeout        time.Duration `koanf:"parser_timeout"`
	LogActivity          bool          `koanf:"log_activity"`
	Seed                 int64         `koanf:"seed"`        // 0 = time-based
	SessionKey           string        `koanf:"session_key"` // empty = random per process
}

// ActivityConfig configures the in-process activity event pipeline.
type ActivityConfig struct {
	Topic        string `koanf:"topic"`
	BufferSize   int64  `koanf:"buffer_size"`
	HistoryLimit int    `koanf:"history_limit"`
}

// SecurityConfig holds HTTP edge protection settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes file:line in logs.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, the optional config file, a .env
// file and the process environment, in increasing priority.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
