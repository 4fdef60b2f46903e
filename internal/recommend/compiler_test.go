// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/otakuconnect/internal/models"
)

func TestCompiler_EndToEndExample(t *testing.T) {
	t.Parallel()

	intent := NewRuleParser(nil).ParseText("Show me 5 action anime from the last 3 years")
	q := NewCompilerWithClock(nil, fixedNow).Compile(intent, WatchHistory{})

	want := CompiledQuery{
		MediaType: models.MediaAnime,
		Predicates: []Predicate{
			{Clause: `(genres ILIKE ? ESCAPE '\')`, Args: []interface{}{"%action%"}},
			{Clause: "EXTRACT(YEAR FROM start_date) >= ?", Args: []interface{}{2022}},
		},
		Limit: 5,
	}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("Compile() = %+v, want %+v", q, want)
	}
}

func TestCompiler_HistoryGenresMatchLiterally(t *testing.T) {
	t.Parallel()

	intent := Intent{ConsiderWatchHistory: true}.Normalize(DefaultConfig())
	history := WatchHistory{LikedIDs: []int64{1}, Genres: []string{"100%", "slice_of_life", `a\b`}}
	q := NewCompilerWithClock(nil, fixedNow).Compile(intent, history)

	if len(q.Predicates) != 1 {
		t.Fatalf("Predicates = %+v, want one genre match", q.Predicates)
	}
	p := q.Predicates[0]
	wantClause := `(genres ILIKE ? ESCAPE '\' OR genres ILIKE ? ESCAPE '\' OR genres ILIKE ? ESCAPE '\')`
	if p.Clause != wantClause {
		t.Errorf("Clause = %q, want %q", p.Clause, wantClause)
	}
	want := []interface{}{`%100\%%`, `%a\\b%`, `%slice\_of\_life%`}
	if !reflect.DeepEqual(p.Args, want) {
		t.Errorf("Args = %v, want %v", p.Args, want)
	}

	cat := newMemCatalog(
		item(models.MediaAnime, 1, "Literal", "Slice_of_Life", 8.0, 10),
		item(models.MediaAnime, 2, "Lookalike", "Slice of Life", 8.0, 20),
	)
	items, err := cat.QueryContent(context.Background(), q)
	if err != nil {
		t.Fatalf("QueryContent() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Errorf("matched %v, want only the literal underscore genre", ids(items))
	}
}

func TestCompiler_Idempotent(t *testing.T) {
	t.Parallel()

	c := NewCompilerWithClock(nil, fixedNow)
	intent := Intent{
		Genres:       []string{"comedy", "drama"},
		MediaType:    models.MediaManga,
		ResultCount:  8,
		StatusFilter: StatusCompleted,
		YearFrom:     intPtr(2010),
		TopRated:     true,
		Latest:       true,
	}.Normalize(DefaultConfig())

	first := c.Compile(intent, WatchHistory{})
	second := c.Compile(intent, WatchHistory{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compile() not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestCompiler_ValuesOnlyInArgs(t *testing.T) {
	t.Parallel()

	intent := Intent{
		Genres:       []string{"sci-fi", "slice of life"},
		StatusFilter: StatusOngoing,
		YearFrom:     intPtr(2001),
		YearsBack:    intPtr(7),
	}.Normalize(DefaultConfig())
	q := NewCompilerWithClock(nil, fixedNow).Compile(intent, WatchHistory{})

	for _, p := range q.Predicates {
		for _, forbidden := range []string{"sci-fi", "slice", "2001", "2018", "currently_airing"} {
			if strings.Contains(p.Clause, forbidden) {
				t.Errorf("clause %q contains literal %q", p.Clause, forbidden)
			}
		}
		if got, want := strings.Count(p.Clause, "?"), len(p.Args); got != want {
			t.Errorf("clause %q has %d placeholders for %d args", p.Clause, got, want)
		}
	}
}

func TestCompiler_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		media  models.MediaType
		filter StatusFilter
		want   []interface{}
	}{
		{models.MediaAnime, StatusOngoing, []interface{}{models.AnimeStatusAiring}},
		{models.MediaAnime, StatusCompleted, []interface{}{models.AnimeStatusFinished}},
		{models.MediaManga, StatusOngoing, []interface{}{models.MangaStatusPublishing}},
		{models.MediaManga, StatusCompleted, []interface{}{models.MangaStatusFinished}},
		{models.MediaManga, StatusAny, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.media)+"/"+string(tt.filter), func(t *testing.T) {
			t.Parallel()
			intent := Intent{MediaType: tt.media, StatusFilter: tt.filter, ResultCount: 5}
			q := NewCompilerWithClock(nil, fixedNow).Compile(intent, WatchHistory{})

			var got []interface{}
			for _, p := range q.Predicates {
				if p.Clause == "status = ?" {
					got = append(got, p.Args...)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("status args = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompiler_BothYearFiltersApply(t *testing.T) {
	t.Parallel()

	intent := Intent{YearFrom: intPtr(2015), YearsBack: intPtr(2), ResultCount: 5}
	q := NewCompilerWithClock(nil, fixedNow).Compile(intent, WatchHistory{})

	where, args := q.Where()
	wantWhere := "EXTRACT(YEAR FROM start_date) >= ? AND EXTRACT(YEAR FROM start_date) >= ?"
	if where != wantWhere {
		t.Errorf("Where() = %q, want %q", where, wantWhere)
	}
	if !reflect.DeepEqual(args, []interface{}{2015, 2023}) {
		t.Errorf("args = %v, want [2015 2023]", args)
	}
}

func TestCompiler_WatchHistory(t *testing.T) {
	t.Parallel()

	c := NewCompilerWithClock(nil, fixedNow)
	intent := Intent{ConsiderWatchHistory: true, ResultCount: 5, MediaType: models.MediaAnime}

	tests := []struct {
		name      string
		history   WatchHistory
		wantPreds int
		wantArgs  []interface{}
	}{
		{name: "no liked items", history: WatchHistory{Genres: []string{"action"}}, wantPreds: 0},
		{name: "liked items without genres", history: WatchHistory{LikedIDs: []int64{1}}, wantPreds: 0},
		{
			name:      "liked genres deduplicated and sorted",
			history:   WatchHistory{LikedIDs: []int64{1, 2}, Genres: []string{"Drama", "action", "drama"}},
			wantPreds: 1,
			wantArgs:  []interface{}{"%action%", "%drama%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := c.Compile(intent, tt.history)
			if len(q.Predicates) != tt.wantPreds {
				t.Fatalf("len(Predicates) = %d, want %d", len(q.Predicates), tt.wantPreds)
			}
			if tt.wantPreds > 0 && !reflect.DeepEqual(q.Predicates[0].Args, tt.wantArgs) {
				t.Errorf("Args = %v, want %v", q.Predicates[0].Args, tt.wantArgs)
			}
		})
	}

	t.Run("ignored when intent does not ask", func(t *testing.T) {
		t.Parallel()
		q := c.Compile(Intent{ResultCount: 5}, WatchHistory{LikedIDs: []int64{1}, Genres: []string{"action"}})
		if len(q.Predicates) != 0 {
			t.Errorf("Predicates = %v, want none", q.Predicates)
		}
	})
}

func TestCompiler_OrderingAndLimit(t *testing.T) {
	t.Parallel()

	c := NewCompilerWithClock(nil, fixedNow)
	tests := []struct {
		name      string
		intent    Intent
		wantOrder string
		wantLimit int
	}{
		{"none", Intent{ResultCount: 5}, "", 5},
		{"top rated", Intent{TopRated: true, ResultCount: 5}, "rank ASC NULLS LAST", 5},
		{"latest", Intent{Latest: true, ResultCount: 5}, "start_date DESC NULLS LAST", 5},
		{"both", Intent{TopRated: true, Latest: true, ResultCount: 5}, "rank ASC NULLS LAST, start_date DESC NULLS LAST", 5},
		{"zero count", Intent{ResultCount: 0}, "", 1},
		{"huge count", Intent{ResultCount: 9999}, "", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := c.Compile(tt.intent, WatchHistory{})
			order, err := q.OrderClause()
			if err != nil {
				t.Fatalf("OrderClause() error = %v", err)
			}
			if order != tt.wantOrder {
				t.Errorf("OrderClause() = %q, want %q", order, tt.wantOrder)
			}
			if q.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", q.Limit, tt.wantLimit)
			}
		})
	}
}

func TestCompiler_InvalidMediaDefaults(t *testing.T) {
	t.Parallel()
	q := NewCompilerWithClock(nil, fixedNow).Compile(Intent{MediaType: "Novel", ResultCount: 5}, WatchHistory{})
	if q.MediaType != DefaultMediaType {
		t.Errorf("MediaType = %q, want %q", q.MediaType, DefaultMediaType)
	}
}

func TestOrdering_SQLRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	if _, err := (Ordering{Column: "title; DROP TABLE anime"}).SQL(); err == nil {
		t.Error("SQL() error = nil, want error for unknown column")
	}
	q := CompiledQuery{OrderBy: []Ordering{{Column: "mean", Descending: true}, {Column: "synopsis"}}}
	if _, err := q.OrderClause(); err == nil {
		t.Error("OrderClause() error = nil, want error")
	}
}

func TestCompiledQuery_WhereEmpty(t *testing.T) {
	t.Parallel()
	where, args := (&CompiledQuery{}).Where()
	if where != "" || args != nil {
		t.Errorf("Where() = (%q, %v), want empty", where, args)
	}
}
