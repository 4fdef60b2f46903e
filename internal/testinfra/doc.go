// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// Files in this package carry the integration build tag, so they only
// compile with:
//
//	go test -tags integration ./...
//
// # Postgres
//
// StartPostgres runs a disposable postgres:16-alpine instance and returns
// a configuration the store can open directly:
//
//	func TestCatalog(t *testing.T) {
//	    pg := testinfra.StartPostgres(t)
//	    cfg := pg.DatabaseConfig()
//	    db, err := database.New(&cfg)
//	    // ...
//	}
//
// Tests are skipped when Docker is unavailable. The first run downloads
// the image; later runs use the local cache.
package testinfra
