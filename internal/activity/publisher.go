// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package activity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/otakuconnect/internal/logging"
	"github.com/tomtom215/otakuconnect/internal/metrics"
	"github.com/tomtom215/otakuconnect/internal/models"
	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// Message metadata keys.
const (
	MetadataUserID    = "user_id"
	MetadataRequestID = "request_id"
)

var _ recommend.ActivityLogger = (*Publisher)(nil)

// Publisher publishes activity entries to a Watermill topic.
type Publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher creates a publisher. An empty topic selects DefaultTopic.
func NewPublisher(pub message.Publisher, topic string) (*Publisher, error) {
	if pub == nil {
		return nil, errors.New("activity publisher: message publisher required")
	}
	return &Publisher{pub: pub, topic: topicOrDefault(topic)}, nil
}

// LogActivity encodes and publishes one entry.
//
//nolint:gocritic // hugeParam: entry is copied into the payload anyway
func (p *Publisher) LogActivity(ctx context.Context, entry models.ActivityEntry) error {
	if !entry.EntityType.Valid() {
		metrics.RecordActivityEvent("failed")
		return fmt.Errorf("activity entry: invalid entity type %q", entry.EntityType)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		metrics.RecordActivityEvent("failed")
		return fmt.Errorf("encode activity entry: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataUserID, strconv.FormatInt(entry.UserID, 10))
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataRequestID, id)
	}

	if err := p.pub.Publish(p.topic, msg); err != nil {
		metrics.RecordActivityEvent("failed")
		return fmt.Errorf("publish activity entry: %w", err)
	}
	metrics.RecordActivityEvent("published")
	return nil
}
