// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package activity

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/logging"
)

// DefaultTopic carries activity entries when none is configured.
const DefaultTopic = "user.activity"

// NewGoChannel creates the in-process pub/sub shared by Publisher and Consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGoChannel(cfg config.ActivityConfig, logger zerolog.Logger) *gochannel.GoChannel {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 256
	}
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: buffer},
		logging.NewWatermillLogger(logger.With().Str("component", "activity-pubsub").Logger()),
	)
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return DefaultTopic
	}
	return topic
}
