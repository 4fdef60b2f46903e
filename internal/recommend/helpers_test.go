// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/otakuconnect/internal/models"
)

// memCatalog evaluates compiled queries against in-memory rows. It
// understands exactly the clause shapes the compiler and ranker emit.
type memCatalog struct {
	mu      sync.Mutex
	items   map[models.MediaType][]models.ContentItem
	err     error
	queries []CompiledQuery
	byIDs   [][]int64
	counts  int
}

func newMemCatalog(items ...models.ContentItem) *memCatalog {
	c := &memCatalog{items: make(map[models.MediaType][]models.ContentItem)}
	for _, it := range items {
		c.items[it.MediaType] = append(c.items[it.MediaType], it)
	}
	return c
}

func (c *memCatalog) QueryContent(_ context.Context, q CompiledQuery) ([]models.ContentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, q)
	if c.err != nil {
		return nil, c.err
	}

	var out []models.ContentItem
	for _, it := range c.items[q.MediaType] {
		ok, err := matchAll(it, q.Predicates)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, it)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			if cmp := compareColumn(out[i], out[j], o.Column); cmp != 0 {
				if o.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (c *memCatalog) CountContent(_ context.Context, q CompiledQuery) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts++
	if c.err != nil {
		return 0, c.err
	}
	n := 0
	for _, it := range c.items[q.MediaType] {
		ok, err := matchAll(it, q.Predicates)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (c *memCatalog) GetContentByIDs(_ context.Context, media models.MediaType, ids []int64) ([]models.ContentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byIDs = append(c.byIDs, ids)
	if c.err != nil {
		return nil, c.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.ContentItem
	for _, it := range c.items[media] {
		if want[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *memCatalog) lastQuery() CompiledQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queries) == 0 {
		return CompiledQuery{}
	}
	return c.queries[len(c.queries)-1]
}

func matchAll(it models.ContentItem, preds []Predicate) (bool, error) {
	for _, p := range preds {
		ok, err := match(it, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func match(it models.ContentItem, p Predicate) (bool, error) {
	switch {
	case strings.Contains(p.Clause, "genres ILIKE ?"):
		genres := strings.ToLower(it.Genres)
		for _, a := range p.Args {
			pattern := a.(string)
			needle := likeUnescaper.Replace(pattern[1 : len(pattern)-1])
			if strings.Contains(genres, needle) {
				return true, nil
			}
		}
		return false, nil
	case p.Clause == "mean >= ?":
		return it.MeanRating != nil && *it.MeanRating >= p.Args[0].(float64), nil
	case p.Clause == "popularity > ?":
		return it.PopularityRank != nil && *it.PopularityRank > p.Args[0].(int), nil
	case p.Clause == "status = ?":
		return it.Status == p.Args[0].(string), nil
	case p.Clause == "EXTRACT(YEAR FROM start_date) >= ?":
		return it.StartDate != nil && it.StartDate.Year() >= p.Args[0].(int), nil
	default:
		return false, fmt.Errorf("memCatalog: unsupported clause %q", p.Clause)
	}
}

var likeUnescaper = strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`)

// compareColumn orders two items by column with NULLs last.
func compareColumn(a, b models.ContentItem, column string) int {
	switch column {
	case "id":
		return cmpInt64(a.ID, b.ID)
	case "popularity":
		return cmpIntPtr(a.PopularityRank, b.PopularityRank)
	case "rank":
		return cmpIntPtr(a.Rank, b.Rank)
	case "mean":
		switch {
		case a.MeanRating == nil && b.MeanRating == nil:
			return 0
		case a.MeanRating == nil:
			return 1
		case b.MeanRating == nil:
			return -1
		case *a.MeanRating < *b.MeanRating:
			return -1
		case *a.MeanRating > *b.MeanRating:
			return 1
		}
		return 0
	case "start_date":
		switch {
		case a.StartDate == nil && b.StartDate == nil:
			return 0
		case a.StartDate == nil:
			return 1
		case b.StartDate == nil:
			return -1
		}
		return a.StartDate.Compare(*b.StartDate)
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpIntPtr(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmpInt64(int64(*a), int64(*b))
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func datePtr(year int) *time.Time {
	t := time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func item(media models.MediaType, id int64, title, genres string, mean float64, popularity int) models.ContentItem {
	return models.ContentItem{
		ID:             id,
		MediaType:      media,
		Title:          title,
		Genres:         genres,
		MeanRating:     floatPtr(mean),
		PopularityRank: intPtr(popularity),
	}
}

// fakeGenerator returns a canned reply or error, or blocks until ctx ends.
type fakeGenerator struct {
	reply string
	err   error
	block bool
	calls int
	last  GenerationRequest
}

func (g *fakeGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	g.calls++
	g.last = req
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.reply, g.err
}

type fakeFeedback struct {
	records []models.FeedbackRecord
	err     error
}

func (f *fakeFeedback) GetFeedback(_ context.Context, _ int64) ([]models.FeedbackRecord, error) {
	return f.records, f.err
}

type fakePreferences struct {
	genres []string
	err    error
}

func (f *fakePreferences) GetFavoriteGenres(_ context.Context, _ int64) ([]string, error) {
	return f.genres, f.err
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
	err     error
}

func (f *fakeActivity) LogActivity(_ context.Context, e models.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return f.err
}

var errStoreDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

// fixedNow is the clock used by compiler tests.
var fixedNow = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
