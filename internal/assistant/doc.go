// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

// Package assistant is the text-generation client behind model-backed
// intent parsing.
//
// Client wraps the Anthropic Messages API with a token-bucket rate limiter
// and a circuit breaker. It implements recommend.TextGenerator; any error it
// returns makes the recommendation engine fall back to rule parsing, so a
// slow or failing upstream never fails a user request.
//
// Breaker state is exported through the circuit_breaker_* metrics under the
// name "assistant-api".
package assistant
