// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

// Package validation validates API request structs with go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Field errors are reported by JSON
// name. The custom "mediatype" tag accepts anime or manga in any case.
//
//	type ShuffleRequest struct {
//	    MediaType string `json:"media_type" validate:"required,mediatype"`
//	    Count     int    `json:"count" validate:"min=3,max=10"`
//	}
//
// ValidateStruct returns *RequestValidationError, whose ToAPIError produces
// the VALIDATION_ERROR body used by the HTTP handlers.
package validation
