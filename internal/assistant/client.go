// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

var (
	// ErrEmptyResponse is returned when the model reply has no text content.
	ErrEmptyResponse = errors.New("assistant returned no text")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("assistant circuit open")
)

var _ recommend.TextGenerator = (*Client)(nil)

// Client calls the Messages API.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
	breaker   *breaker
}

// New creates a client from the assistant configuration. The SDK's own
// retries are disabled; the breaker decides when to stop calling.
func New(cfg *config.AssistantConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("assistant config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("assistant API key is empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   newBreaker(breakerName, cfg),
	}, nil
}

// Generate sends one prompt and returns the concatenated text blocks of the reply.
//
//nolint:gocritic // hugeParam: GenerationRequest is a small value type at call sites
func (c *Client) Generate(ctx context.Context, req recommend.GenerationRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("assistant rate limit: %w", err)
	}

	text, err := c.breaker.execute(func() (string, error) {
		return c.send(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return "", err
	}
	return text, nil
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.cb.State()
}

//nolint:gocritic // hugeParam: see Generate
func (c *Client) send(ctx context.Context, req recommend.GenerationRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt(req)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func systemPrompt(req recommend.GenerationRequest) string {
	if req.Schema == "" {
		return req.System
	}
	return req.System + "\n\nReply with one JSON object matching this schema and nothing else:\n" + req.Schema
}
