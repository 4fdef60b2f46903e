// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package middleware provides HTTP middleware shared by the API router.

Components:

  - RequestID: reuses or generates X-Request-ID and seeds the logging context
    with request and correlation IDs
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labeled by chi route pattern

Both are written as http.HandlerFunc decorators and adapted to chi with the
api package's chiMiddleware helper:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

CORS, rate limiting, compression and panic recovery come from the chi
ecosystem (go-chi/cors, go-chi/httprate, chi/middleware).
*/
package middleware
