// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package recommend is the recommendation query engine.

A request is served in one of two modes:

  - Assistant: free text is parsed into an Intent, compiled into a
    CompiledQuery and run against the Catalog. When the query returns no
    rows, the Ranker's popularity fallback is used and Result.UsedFallback
    is set.
  - Shuffle: explicit ShuffleParams select items with one of four policies
    (preference, popular, hidden_gems, random). No parsing or compiling.

# Intent Parsing

ParserPipeline tries ModelParser (a TextGenerator asked for a single JSON
object, bounded by Config.ParserTimeout) and falls back to RuleParser on any
error. RuleParser is deterministic and never fails, so parsing never
surfaces an error to the caller.

# Query Compilation

Compiler emits predicates as parameterized clauses with '?' placeholders.
Values from the request (genres, years, statuses) only ever appear in
Predicate.Args. The database package rebinds placeholders for the driver.

	c := recommend.NewCompiler(cfg)
	q := c.Compile(intent, recommend.WatchHistory{})
	where, args := q.Where()

# Errors

ErrCatalogUnavailable is the only error Recommend returns for a valid
request. Parser failures, empty results, feedback read errors and activity
log errors all degrade instead.

# Sessions

Session is a value owned by the caller. Engine.Resume reuses the stored
result when the request fingerprint is unchanged, so redraws do not
recompute.

This package depends only on internal/models. Storage, the text-generation
client and the activity pipeline are injected through Dependencies.
*/
package recommend
