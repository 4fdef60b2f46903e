// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/metrics"
	"github.com/tomtom215/otakuconnect/internal/models"
)

const (
	defaultWriteTimeout = 5 * time.Second
	drainTimeout        = 100 * time.Millisecond
)

// Store persists activity entries. Implemented by *database.DB.
type Store interface {
	InsertActivity(ctx context.Context, entry *models.ActivityEntry) error
}

// ConsumerStats holds runtime counters.
type ConsumerStats struct {
	Received  int64
	Persisted int64
	Dropped   int64
	Malformed int64
}

// Consumer writes activity entries from a topic to the store.
// It implements suture.Service.
type Consumer struct {
	sub          message.Subscriber
	store        Store
	topic        string
	writeTimeout time.Duration
	logger       zerolog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	received  atomic.Int64
	persisted atomic.Int64
	dropped   atomic.Int64
	malformed atomic.Int64
}

// NewConsumer creates a consumer. An empty topic selects DefaultTopic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(sub message.Subscriber, store Store, topic string, logger zerolog.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, errors.New("activity consumer: subscriber required")
	}
	if store == nil {
		return nil, errors.New("activity consumer: store required")
	}
	return &Consumer{
		sub:          sub,
		store:        store,
		topic:        topicOrDefault(topic),
		writeTimeout: defaultWriteTimeout,
		logger:       logger.With().Str("service", "activity-consumer").Logger(),
		ready:        make(chan struct{}),
	}, nil
}

// Ready is closed once the first subscription is established.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// Stats returns current counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Received:  c.received.Load(),
		Persisted: c.persisted.Load(),
		Dropped:   c.dropped.Load(),
		Malformed: c.malformed.Load(),
	}
}

// Serve subscribes and processes messages until ctx is canceled.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.readyOnce.Do(func() { close(c.ready) })
	c.logger.Info().Str("topic", c.topic).Msg("activity consumer started")

	for {
		select {
		case <-ctx.Done():
			c.drain(messages)
			c.logger.Info().Msg("activity consumer stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Subscription closed underneath us; let the supervisor restart.
				return errors.New("activity subscription closed")
			}
			c.process(ctx, msg)
		}
	}
}

// drain handles messages already buffered when shutdown starts.
func (c *Consumer) drain(messages <-chan *message.Message) {
	deadline := time.After(drainTimeout)
	for {
		select {
		case <-deadline:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.process(context.Background(), msg)
		default:
			return
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	c.received.Add(1)
	defer msg.Ack()

	var entry models.ActivityEntry
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		c.malformed.Add(1)
		metrics.RecordActivityEvent("failed")
		c.logger.Warn().Str("message_uuid", msg.UUID).Err(err).Msg("malformed activity message")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	if err := c.store.InsertActivity(writeCtx, &entry); err != nil {
		c.dropped.Add(1)
		metrics.RecordActivityEvent("dropped")
		c.logger.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Str("request_id", msg.Metadata.Get(MetadataRequestID)).
			Int64("user_id", entry.UserID).
			Int64("entity_id", entry.EntityID).
			Msg("activity entry not persisted")
		return
	}
	c.persisted.Add(1)
	metrics.RecordActivityEvent("persisted")
}

// String returns the service name for logging.
func (c *Consumer) String() string {
	return "activity-consumer"
}
