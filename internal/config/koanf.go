// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/otakuconnect/config.yaml",
	"/etc/otakuconnect/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file path.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8501,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			Username:        "postgres",
			Password:        "",
			Name:            "otakuconnect",
			SSLMode:         "disable",
			Path:            "",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    10 * time.Second,
			MigrateOnStart:  true,
		},
		Assistant: AssistantConfig{
			Enabled:                 false, // rule parser only until an API key is supplied
			Model:                   "claude-3-5-haiku-latest",
			MaxTokens:               512,
			Timeout:                 8 * time.Second,
			RequestsPerSecond:       2,
			Burst:                   4,
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Recommend: RecommendConfig{
			DefaultResults:       5,
			MaxResults:           50,
			ShuffleMinCount:      3,
			ShuffleMaxCount:      10,
			FallbackMinRating:    7.5,
			HiddenGemThreshold:   1000,
			LikedRatingThreshold: 8,
			MaxLikedItems:        20,
			ParserTimeout:        8 * time.Second,
			LogActivity:          true,
			Seed:                 0,
		},
		Activity: ActivityConfig{
			Topic:        "user.activity",
			BufferSize:   256,
			HistoryLimit: 10,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Optional .env file (never overrides variables already set)
//  4. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// DB_HOST -> database.host, ANTHROPIC_API_KEY -> assistant.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from a .env file when present.
// A missing file is not an error.
func loadDotEnv() error {
	path := ".env"
	if p := os.Getenv(DotEnvPathEnvVar); p != "" {
		path = p
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// The DB_* names are the ones existing deployments already export.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Database
	"db_driver":            "database.driver",
	"db_host":              "database.host",
	"db_port":              "database.port",
	"db_username":          "database.username",
	"db_password":          "database.password",
	"db_name":              "database.name",
	"db_sslmode":           "database.ssl_mode",
	"duckdb_path":          "database.path",
	"db_max_open_conns":    "database.max_open_conns",
	"db_max_idle_conns":    "database.max_idle_conns",
	"db_conn_max_lifetime": "database.conn_max_lifetime",
	"db_query_timeout":     "database.query_timeout",
	"db_migrate_on_start":  "database.migrate_on_start",
	"db_seed_sample":       "database.seed_sample",

	// Assistant
	"assistant_enabled":           "assistant.enabled",
	"anthropic_api_key":           "assistant.api_key",
	"assistant_api_key":           "assistant.api_key",
	"assistant_base_url":          "assistant.base_url",
	"assistant_model":             "assistant.model",
	"assistant_max_tokens":        "assistant.max_tokens",
	"assistant_timeout":           "assistant.timeout",
	"assistant_rps":               "assistant.requests_per_second",
	"assistant_burst":             "assistant.burst",
	"assistant_breaker_requests":  "assistant.breaker_max_requests",
	"assistant_breaker_interval":  "assistant.breaker_interval",
	"assistant_breaker_timeout":   "assistant.breaker_timeout",
	"assistant_breaker_threshold": "assistant.breaker_failure_threshold",

	// Recommend
	"recommend_default_results":        "recommend.default_results",
	"recommend_max_results":            "recommend.max_results",
	"recommend_shuffle_min":            "recommend.shuffle_min_count",
	"recommend_shuffle_max":            "recommend.shuffle_max_count",
	"recommend_fallback_min_rating":    "recommend.fallback_min_rating",
	"recommend_hidden_gem_threshold":   "recommend.hidden_gem_threshold",
	"recommend_liked_rating_threshold": "recommend.liked_rating_threshold",
	"recommend_max_liked_items":        "recommend.max_liked_items",
	"recommend_parser_timeout":         "recommend.parser_timeout",
	"recommend_log_activity":           "recommend.log_activity",
	"recommend_seed":                   "recommend.seed",
	"recommend_session_key":            "recommend.session_key",

	// Activity
	"activity_topic":         "activity.topic",
	"activity_buffer_size":   "activity.buffer_size",
	"activity_history_limit": "activity.history_limit",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns the koanf path for an environment variable, or ""
// to skip variables the service does not know about.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
