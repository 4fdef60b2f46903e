// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"fmt"
	"time"
)

// Config contains all tuning for the recommendation engine.
type Config struct {
	// DefaultResults is the result count when a request names none.
	DefaultResults int `json:"default_results"`

	// MaxResults caps the compiled query limit in assistant mode.
	MaxResults int `json:"max_results"`

	// ShuffleMinCount and ShuffleMaxCount bound the shuffle sample size.
	ShuffleMinCount int `json:"shuffle_min_count"`
	ShuffleMaxCount int `json:"shuffle_max_count"`

	// FallbackMinRating is the mean-rating floor of the fallback set.
	FallbackMinRating float64 `json:"fallback_min_rating"`

	// HiddenGemThreshold is the popularity rank above which a title counts
	// as a hidden gem.
	HiddenGemThreshold int `json:"hidden_gem_threshold"`

	// LikedRatingThreshold is the minimum feedback rating for a liked entity.
	LikedRatingThreshold int `json:"liked_rating_threshold"`

	// MaxLikedItems bounds how many liked entities are hydrated for the
	// watch-history filter.
	MaxLikedItems int `json:"max_liked_items"`

	// ParserTimeout bounds the model-backed intent parse.
	ParserTimeout time.Duration `json:"parser_timeout"`

	// LogActivity enables the best-effort activity record for the first item.
	LogActivity bool `json:"log_activity"`

	// Seed seeds the shuffle RNG. Zero means time-based.
	Seed int64 `json:"seed"`

	// SessionKey signs sessions handed to callers. Empty means a random key
	// per engine, so sessions do not survive a restart.
	SessionKey string `json:"-"`
}

const minSessionKeyLen = 16

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
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
	}
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.DefaultResults < 1 || c.DefaultResults > c.MaxResults {
		return fmt.Errorf("default_results must be in [1, %d], got %d", c.MaxResults, c.DefaultResults)
	}
	if c.ShuffleMinCount < 1 {
		return fmt.Errorf("shuffle_min_count must be positive, got %d", c.ShuffleMinCount)
	}
	if c.ShuffleMaxCount < c.ShuffleMinCount {
		return fmt.Errorf("shuffle_max_count must be >= shuffle_min_count, got %d < %d", c.ShuffleMaxCount, c.ShuffleMinCount)
	}
	if c.FallbackMinRating < 0 || c.FallbackMinRating > 10 {
		return fmt.Errorf("fallback_min_rating must be in [0, 10], got %f", c.FallbackMinRating)
	}
	if c.HiddenGemThreshold < 0 {
		return fmt.Errorf("hidden_gem_threshold must be non-negative, got %d", c.HiddenGemThreshold)
	}
	if c.LikedRatingThreshold < 1 || c.LikedRatingThreshold > 10 {
		return fmt.Errorf("liked_rating_threshold must be in [1, 10], got %d", c.LikedRatingThreshold)
	}
	if c.MaxLikedItems < 1 {
		return fmt.Errorf("max_liked_items must be positive, got %d", c.MaxLikedItems)
	}
	if c.SessionKey != "" && len(c.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d bytes, got %d", minSessionKeyLen, len(c.SessionKey))
	}
	if c.ParserTimeout <= 0 {
		return fmt.Errorf("parser_timeout must be positive, got %v", c.ParserTimeout)
	}
	return nil
}

// Clone returns a copy. Config holds only value fields.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
