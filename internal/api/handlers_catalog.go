// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/otakuconnect/internal/logging"
	"github.com/tomtom215/otakuconnect/internal/models"
)

const maxItemReviews = 20

// CatalogResponse is the data of the catalog endpoints.
type CatalogResponse struct {
	MediaType models.MediaType     `json:"media_type"`
	Items     []models.ContentItem `json:"items"`
}

// CatalogSearch handles GET /api/v1/catalog/{media}/search.
// An empty q lists the catalog by popularity.
func (h *Handler) CatalogSearch(w http.ResponseWriter, r *http.Request) {
	media, params, ok := h.catalogParams(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	items, err := h.catalog.SearchCatalog(ctx, media, params.Query, params.Sort, params.Limit)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "The catalog is temporarily unavailable", err)
		return
	}
	respondData(w, CatalogResponse{MediaType: media, Items: nonNil(items)}, start)
}

// CatalogLatest handles GET /api/v1/catalog/{media}/latest.
func (h *Handler) CatalogLatest(w http.ResponseWriter, r *http.Request) {
	media, params, ok := h.catalogParams(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	items, err := h.catalog.LatestCatalog(ctx, media, params.Sort, params.Limit)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "The catalog is temporarily unavailable", err)
		return
	}
	respondData(w, CatalogResponse{MediaType: media, Items: nonNil(items)}, start)
}

// CatalogItem handles GET /api/v1/catalog/{media}/{id}. It returns the title
// with its approved reviews. A positive user_id records a view; review and
// view failures are logged and do not fail the request.
func (h *Handler) CatalogItem(w http.ResponseWriter, r *http.Request) {
	media, err := models.ParseMediaType(chi.URLParam(r, "media"))
	if err != nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, ErrUnknownMedia.Error(), nil)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "id must be a positive integer", nil)
		return
	}
	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || userID < 0 {
			respondError(w, r, http.StatusBadRequest, CodeValidation, "user_id must be a non-negative integer", nil)
			return
		}
	}

	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	items, err := h.catalog.GetContentByIDs(ctx, media, []int64{id})
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "The catalog is temporarily unavailable", err)
		return
	}
	if len(items) == 0 {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "No "+strings.ToLower(string(media))+" with that id", nil)
		return
	}
	item := items[0]

	reviews, err := h.catalog.GetItemReviews(ctx, media, id, maxItemReviews)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("entity_id", id).Msg("Reviews unavailable")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	if userID > 0 && h.recorder != nil {
		entry := models.ActivityEntry{
			UserID:       userID,
			EntityID:     id,
			EntityType:   media,
			ActivityType: models.ActivityViewed,
			Content:      "Viewed details of " + item.Title,
			OccurredAt:   h.now().UTC(),
		}
		if err := h.recorder.LogActivity(ctx, entry); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Int64("user_id", userID).Msg("Failed to record view")
		}
	}

	respondData(w, models.ItemDetailResponse{Item: item, Reviews: reviews}, start)
}

func (h *Handler) catalogParams(w http.ResponseWriter, r *http.Request) (models.MediaType, models.CatalogSearchParams, bool) {
	media, err := models.ParseMediaType(chi.URLParam(r, "media"))
	if err != nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, ErrUnknownMedia.Error(), nil)
		return "", models.CatalogSearchParams{}, false
	}

	q := r.URL.Query()
	params := models.CatalogSearchParams{
		Query: strings.TrimSpace(q.Get("q")),
		Sort:  strings.ToLower(q.Get("sort")),
		Limit: getIntParam(r, "limit", h.opts.DefaultLimit),
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return "", params, false
	}
	return media, params, true
}

func nonNil(items []models.ContentItem) []models.ContentItem {
	if items == nil {
		return []models.ContentItem{}
	}
	return items
}
