// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package main is the entry point for the OtakuConnect server.

OtakuConnect recommends anime and manga. Assistant mode turns a free-text
request into a catalog query, through a text-generation model when one is
configured and a rule parser otherwise. Shuffle mode samples the catalog
under a named policy. Both fall back to a fixed top-rated set when a query
finds nothing.

Supervision tree (suture v4):

	RootSupervisor ("otakuconnect")
	├── MessagingSupervisor ("messaging-layer")
	│   └── activity consumer (watermill gochannel -> user_activity_history)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi)

Startup order:

 1. Configuration (koanf: defaults, config file, .env, environment)
 2. Logging (zerolog)
 3. Store (Postgres or DuckDB), migrations, optional demo catalog
 4. Assistant client, when ASSISTANT_ENABLED=true
 5. Activity pipeline and recommendation engine
 6. HTTP router and supervisor tree

SIGINT and SIGTERM cancel the tree; the HTTP server drains for
SERVER_SHUTDOWN_TIMEOUT and the consumer flushes its buffer before the store
closes.

Local development without Postgres:

	DB_DRIVER=duckdb DB_SEED_SAMPLE=true ./otakuconnect
*/
package main
