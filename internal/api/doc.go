// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package api serves the recommendation engine and the catalog over HTTP.

Routes (chi):

	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /api/v1/health
	POST /api/v1/recommend/assistant
	POST /api/v1/recommend/shuffle
	GET  /api/v1/catalog/{media}/search?q=&sort=&limit=
	GET  /api/v1/catalog/{media}/latest?sort=&limit=
	GET  /api/v1/catalog/{media}/{id}?user_id=
	GET  /api/v1/users/{userID}/activity?limit=
	GET  /metrics

Every JSON endpoint answers with models.APIResponse. Errors carry a code:
VALIDATION_ERROR (400), NOT_FOUND (404), SERVICE_UNAVAILABLE (503) when the
catalog cannot be read, INTERNAL_ERROR (500) otherwise.

# Sessions

The recommend endpoints are stateless. A response carries a session
(ID, fingerprint, result); a client that posts the same session back with an
unchanged request gets the cached result without touching the catalog. Set
"refresh": true to force a new draw, which is how shuffle re-rolls.
*/
package api
