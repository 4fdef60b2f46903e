// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

// Package config loads and validates OtakuConnect configuration.
//
// Sources are layered with Koanf v2, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML file: CONFIG_PATH, ./config.yaml or /etc/otakuconnect/config.yaml
//  3. A .env file (DOTENV_PATH or ./.env), loaded into the process environment
//     without overriding variables that are already set
//  4. Environment variables
//
// Only known variables are mapped; see envMappings. Database connection
// variables keep their historical names:
//
//	DB_HOST=localhost DB_PORT=5432 DB_USERNAME=otaku DB_PASSWORD=... DB_NAME=otakuconnect
//
// Select the embedded catalog instead with:
//
//	DB_DRIVER=duckdb DUCKDB_PATH=/data/catalog.duckdb
//
// Model-backed intent parsing is opt-in:
//
//	ASSISTANT_ENABLED=true ANTHROPIC_API_KEY=sk-ant-...
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Validate runs section by section and returns the first failure, naming the
// environment variable to fix.
package config
