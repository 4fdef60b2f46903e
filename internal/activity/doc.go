// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

// Package activity moves user activity entries off the request path.
//
// The recommendation engine hands each entry to Publisher, which encodes it
// as JSON and publishes it on a Watermill topic (an in-process GoChannel by
// default). Consumer is a supervised service that subscribes to the same
// topic and writes entries to the user_activity_history table.
//
// Writes are best-effort. A malformed payload or a failed insert is logged,
// counted in activity_events_total and acknowledged, so one bad entry never
// blocks the ones behind it.
package activity
