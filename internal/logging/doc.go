// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

// Package logging provides centralized zerolog-based logging for OtakuConnect.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("driver", "postgres").Msg("Catalog opened")
//	logging.Error().Err(err).Msg("Catalog query failed")
//
//	// With request context (request_id, correlation_id)
//	logging.Ctx(ctx).Debug().Str("strategy", "rules").Msg("Intent parsed")
//
// Always terminate event chains with .Msg() or .Send(); an unterminated
// chain is never written.
//
// # Component Loggers
//
//	logger := logging.WithComponent("recommend")
//	logger.Info().Msg("Engine ready")
//
// # Adapters
//
// NewSlogLogger bridges to log/slog for sutureslog. NewWatermillLogger
// bridges to watermill.LoggerAdapter for the activity pub/sub.
//
// # Output Formats
//
// JSON (production):
//
//	{"level":"info","time":"2026-10-17T10:30:00Z","message":"Server starting","port":8501}
//
// Console (development):
//
//	10:30:00 INF Server starting port=8501
package logging
