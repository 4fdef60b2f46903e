// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/tomtom215/otakuconnect/internal/models"
)

// Notices returned when the preference policy cannot be honored.
const (
	NoticeNoFavorites      = "No favorite genres are saved for this user, so popular titles are shown instead."
	NoticeNoFavoriteMatch  = "Nothing matched your favorite genres at this rating, so popular titles are shown instead."
	NoticeFallbackSelected = "Nothing matched the request exactly, so popular highly rated titles are shown instead."
)

// ShuffleOutcome is the result of one shuffle selection.
type ShuffleOutcome struct {
	Items   []models.ContentItem
	Applied Policy
	Notice  string
	Query   CompiledQuery
}

// Ranker selects popular, high-rated or sampled items. All policies start
// from the pool of items whose mean rating meets the requested floor.
type Ranker struct {
	catalog Catalog
	cfg     *Config

	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewRanker creates a ranker. rng must not be shared with other goroutines
// outside the ranker.
func NewRanker(catalog Catalog, cfg *Config, rng *rand.Rand) *Ranker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Ranker{catalog: catalog, cfg: cfg, rng: rng}
}

func ratingPool(minRating float64) Predicate {
	return Predicate{Clause: "mean >= ?", Args: []interface{}{minRating}}
}

// FallbackQuery is the query behind Fallback.
func FallbackQuery(media models.MediaType, minRating float64, n int) CompiledQuery {
	return CompiledQuery{
		MediaType:  media,
		Predicates: []Predicate{ratingPool(minRating)},
		OrderBy:    []Ordering{{Column: "popularity"}},
		Limit:      n,
	}
}

// Fallback returns the n most popular items with mean rating >= minRating.
func (r *Ranker) Fallback(ctx context.Context, media models.MediaType, minRating float64, n int) ([]models.ContentItem, CompiledQuery, error) {
	q := FallbackQuery(media, minRating, clamp(n, 1, r.cfg.MaxResults))
	items, err := r.query(ctx, q)
	return items, q, err
}

// Shuffle selects items with the requested policy. favorites is only read
// by PolicyPreference.
func (r *Ranker) Shuffle(ctx context.Context, p ShuffleParams, favorites []string) (ShuffleOutcome, error) {
	count := clamp(p.Count, r.cfg.ShuffleMinCount, r.cfg.ShuffleMaxCount)

	switch p.Policy {
	case PolicyPreference:
		return r.preference(ctx, p, count, favorites)
	case PolicyHiddenGems:
		q := CompiledQuery{
			MediaType: p.MediaType,
			Predicates: []Predicate{
				ratingPool(p.MinRating),
				{Clause: "popularity > ?", Args: []interface{}{r.cfg.HiddenGemThreshold}},
			},
			OrderBy: []Ordering{{Column: "mean", Descending: true}},
			Limit:   count,
		}
		items, err := r.query(ctx, q)
		return ShuffleOutcome{Items: items, Applied: PolicyHiddenGems, Query: q}, err
	case PolicyRandom:
		return r.random(ctx, p, count)
	default:
		return r.popular(ctx, p, count, "")
	}
}

func (r *Ranker) popular(ctx context.Context, p ShuffleParams, count int, notice string) (ShuffleOutcome, error) {
	q := FallbackQuery(p.MediaType, p.MinRating, count)
	items, err := r.query(ctx, q)
	return ShuffleOutcome{Items: items, Applied: PolicyPopular, Notice: notice, Query: q}, err
}

func (r *Ranker) preference(ctx context.Context, p ShuffleParams, count int, favorites []string) (ShuffleOutcome, error) {
	genres := sortedUnique(favorites)
	match, ok := genreMatch(genres)
	if !ok {
		return r.popular(ctx, p, count, NoticeNoFavorites)
	}

	q := CompiledQuery{
		MediaType:  p.MediaType,
		Predicates: []Predicate{ratingPool(p.MinRating), match},
		OrderBy:    []Ordering{{Column: "popularity"}},
		Limit:      count,
	}
	items, err := r.query(ctx, q)
	if err != nil {
		return ShuffleOutcome{Query: q}, err
	}
	if len(items) == 0 {
		return r.popular(ctx, p, count, NoticeNoFavoriteMatch)
	}
	return ShuffleOutcome{Items: items, Applied: PolicyPreference, Query: q}, nil
}

// random draws count items uniformly without replacement from the whole
// rating pool. The pool is counted first and each pick is read by its offset
// in id order, so every qualifying row can be drawn.
func (r *Ranker) random(ctx context.Context, p ShuffleParams, count int) (ShuffleOutcome, error) {
	q := CompiledQuery{
		MediaType:  p.MediaType,
		Predicates: []Predicate{ratingPool(p.MinRating)},
		OrderBy:    []Ordering{{Column: "id"}},
		Limit:      count,
	}

	total, err := r.catalog.CountContent(ctx, q)
	if err != nil {
		return ShuffleOutcome{Query: q}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	items := make([]models.ContentItem, 0, min(count, total))
	for _, offset := range r.sampleOffsets(total, count) {
		pick := q
		pick.Limit = 1
		pick.Offset = offset
		rows, err := r.query(ctx, pick)
		if err != nil {
			return ShuffleOutcome{Query: q}, err
		}
		items = append(items, rows...)
	}
	return ShuffleOutcome{Items: items, Applied: PolicyRandom, Query: q}, nil
}

// sampleOffsets draws min(k, n) distinct offsets in [0, n) in random order.
func (r *Ranker) sampleOffsets(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}

	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	if k >= n {
		return r.rng.Perm(n)
	}
	if n <= 2*k {
		return r.rng.Perm(n)[:k]
	}

	seen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for len(out) < k {
		o := r.rng.Intn(n)
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func (r *Ranker) query(ctx context.Context, q CompiledQuery) ([]models.ContentItem, error) {
	items, err := r.catalog.QueryContent(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return items, nil
}
