// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateAssistant(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateActivity(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

// validateDatabase checks the settings of the selected driver only.
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "postgres":
		return c.validatePostgres()
	case "duckdb":
		// Path may be empty (in-memory)
	default:
		return fmt.Errorf("DB_DRIVER must be one of: postgres, duckdb")
	}
	return c.validatePool()
}

func (c *Config) validatePostgres() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required when DB_DRIVER=postgres")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535")
	}
	if c.Database.Username == "" {
		return fmt.Errorf("DB_USERNAME is required when DB_DRIVER=postgres")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required when DB_DRIVER=postgres")
	}
	if c.IsProduction() && containsPlaceholder(c.Database.Password) {
		return fmt.Errorf("DB_PASSWORD contains a placeholder value; set a real password for production")
	}
	return c.validatePool()
}

func (c *Config) validatePool() error {
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

// validateAssistant validates the text-generation client (only if enabled)
func (c *Config) validateAssistant() error {
	if !c.Assistant.Enabled {
		return nil
	}
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when ASSISTANT_ENABLED=true")
	}
	if containsPlaceholder(c.Assistant.APIKey) {
		return fmt.Errorf("ANTHROPIC_API_KEY contains a placeholder value")
	}
	if c.Assistant.BaseURL != "" {
		if err := validateHTTPURL(c.Assistant.BaseURL, "ASSISTANT_BASE_URL"); err != nil {
			return fmt.Errorf("ASSISTANT_BASE_URL is invalid: %w", err)
		}
	}
	if c.Assistant.Model == "" {
		return fmt.Errorf("ASSISTANT_MODEL is required when ASSISTANT_ENABLED=true")
	}
	if c.Assistant.MaxTokens < 64 || c.Assistant.MaxTokens > 8192 {
		return fmt.Errorf("ASSISTANT_MAX_TOKENS must be between 64 and 8192")
	}
	if c.Assistant.Timeout <= 0 {
		return fmt.Errorf("ASSISTANT_TIMEOUT must be positive")
	}
	if c.Assistant.RequestsPerSecond <= 0 || c.Assistant.Burst < 1 {
		return fmt.Errorf("ASSISTANT_RPS must be positive and ASSISTANT_BURST at least 1")
	}
	if c.Assistant.BreakerFailureThreshold < 1 {
		return fmt.Errorf("ASSISTANT_BREAKER_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxResults < 1 {
		return fmt.Errorf("RECOMMEND_MAX_RESULTS must be at least 1")
	}
	if r.DefaultResults < 1 || r.DefaultResults > r.MaxResults {
		return fmt.Errorf("RECOMMEND_DEFAULT_RESULTS must be between 1 and RECOMMEND_MAX_RESULTS")
	}
	if r.ShuffleMinCount < 1 || r.ShuffleMinCount > r.ShuffleMaxCount {
		return fmt.Errorf("RECOMMEND_SHUFFLE_MIN must be at least 1 and not exceed RECOMMEND_SHUFFLE_MAX")
	}
	if r.FallbackMinRating < 0 || r.FallbackMinRating > 10 {
		return fmt.Errorf("RECOMMEND_FALLBACK_MIN_RATING must be between 0 and 10")
	}
	if r.LikedRatingThreshold < 1 || r.LikedRatingThreshold > 10 {
		return fmt.Errorf("RECOMMEND_LIKED_RATING_THRESHOLD must be between 1 and 10")
	}
	if r.ParserTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_PARSER_TIMEOUT must be positive")
	}
	if r.SessionKey != "" && len(r.SessionKey) < 16 {
		return fmt.Errorf("RECOMMEND_SESSION_KEY must be at least 16 characters")
	}
	if containsPlaceholder(r.SessionKey) {
		return fmt.Errorf("RECOMMEND_SESSION_KEY contains a placeholder value")
	}
	return nil
}

func (c *Config) validateActivity() error {
	if strings.TrimSpace(c.Activity.Topic) == "" {
		return fmt.Errorf("ACTIVITY_TOPIC is required")
	}
	if c.Activity.BufferSize < 0 {
		return fmt.Errorf("ACTIVITY_BUFFER_SIZE must not be negative")
	}
	if c.Activity.HistoryLimit < 1 || c.Activity.HistoryLimit > 100 {
		return fmt.Errorf("ACTIVITY_HISTORY_LIMIT must be between 1 and 100")
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is "*". Logged as a warning at
// startup in production.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns are values people leave in templates by mistake.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"YOUR_API_KEY",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
