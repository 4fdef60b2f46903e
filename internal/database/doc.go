// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package database provides the catalog and user-data store.

Two drivers are supported through sqlx:

  - postgres (lib/pq): the production store. Schema changes live in
    migrations/postgres and are applied with golang-migrate from an embedded
    filesystem.
  - duckdb: an embedded store for local development and tests. Schema
    changes are applied by a versioned runner that records each version in
    schema_migrations.

# Tables

	anime, manga             catalog rows (one ContentItem struct scans both)
	users                    favoritegenres, comma-joined
	feedback_table           ratings; entitytype is 'Anime' or 'Manga'
	user_activity_history    activity log; entitytype is 1 (anime) or 2 (manga)

# Queries

QueryContent executes a recommend.CompiledQuery. Clauses use '?' and are
rebound for the driver with sqlx's Rebind, so a compiled query runs
unchanged on both stores:

	q := recommend.CompiledQuery{MediaType: models.MediaAnime, Limit: 5, ...}
	items, err := db.QueryContent(ctx, q)

Every statement runs under the configured query timeout and records its
duration in the catalog_query_duration_seconds histogram.

# Interfaces

*DB satisfies recommend.Catalog, recommend.FeedbackReader and
recommend.PreferenceReader. The activity consumer writes through
InsertActivity.
*/
package database
