// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package main

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/activity"
	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/logging"
)

// activityPipeline is the in-process activity event path: the engine
// publishes, the consumer persists.
type activityPipeline struct {
	PubSub    *gochannel.GoChannel
	Publisher *activity.Publisher
	Consumer  *activity.Consumer
}

// initActivity builds the pipeline. The consumer must be added to the
// supervisor tree before anything publishes.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initActivity(cfg *config.Config, store activity.Store, logger zerolog.Logger) (*activityPipeline, error) {
	pubsub := activity.NewGoChannel(cfg.Activity, logger)

	publisher, err := activity.NewPublisher(pubsub, cfg.Activity.Topic)
	if err != nil {
		return nil, err
	}
	consumer, err := activity.NewConsumer(pubsub, store, cfg.Activity.Topic, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("topic", cfg.Activity.Topic).
		Int64("buffer", cfg.Activity.BufferSize).
		Msg("Activity pipeline initialized")

	return &activityPipeline{PubSub: pubsub, Publisher: publisher, Consumer: consumer}, nil
}

// Close closes the channel pub/sub, which ends every subscription.
func (p *activityPipeline) Close() {
	if err := p.PubSub.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing activity pub/sub")
	}
}
