// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// API error codes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBodyTooLarge = "REQUEST_TOO_LARGE"
)

// ErrUnknownMedia is returned for a {media} path segment other than anime or manga.
var ErrUnknownMedia = errors.New("unknown media type")

// statusForError maps engine and store errors onto an HTTP status and code.
func statusForError(err error) (status int, code string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, recommend.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
