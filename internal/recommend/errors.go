// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import "errors"

var (
	// ErrCatalogUnavailable wraps any failure to read the catalog. It is the
	// only error Engine.Recommend returns for a well-formed request.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidRequest is returned for an unknown mode or missing input.
	ErrInvalidRequest = errors.New("invalid recommendation request")

	// ErrParseFailure marks a model-backed parse that must fall back to rules.
	ErrParseFailure = errors.New("intent parse failure")
)
