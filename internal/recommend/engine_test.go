// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/models"
)

func engineCatalog() *memCatalog {
	action := func(id int64, title string, year int, mean float64, pop int) models.ContentItem {
		it := item(models.MediaAnime, id, title, "Action, Fantasy", mean, pop)
		it.StartDate = datePtr(year)
		return it
	}
	return newMemCatalog(
		action(1, "Jujutsu Kaisen", 2023, 8.6, 20),
		action(2, "Chainsaw Man", 2022, 8.5, 30),
		action(3, "Demon Slayer", 2019, 8.5, 15),
		action(4, "Mob Psycho", 2024, 8.8, 90),
		item(models.MediaAnime, 10, "K-On!", "Comedy, Slice of Life", 7.8, 200),
		item(models.MediaAnime, 11, "Clannad", "Drama, Romance", 8.9, 120),
		item(models.MediaAnime, 12, "Ping Pong", "Sports, Drama", 8.6, 900),
		item(models.MediaManga, 50, "Blue Period", "Drama", 8.5, 400),
	)
}

func newTestEngine(t *testing.T, deps Dependencies) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 7
	e, err := NewEngine(cfg, deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetClock(fixedNow)
	return e
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, Dependencies{}, zerolog.Nop()); err == nil {
		t.Error("NewEngine() without catalog: error = nil, want error")
	}

	bad := DefaultConfig()
	bad.MaxResults = 0
	if _, err := NewEngine(bad, Dependencies{Catalog: newMemCatalog()}, zerolog.Nop()); err == nil {
		t.Error("NewEngine() with invalid config: error = nil, want error")
	}

	if _, err := NewEngine(nil, Dependencies{Catalog: newMemCatalog()}, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine() error = %v", err)
	}
}

func TestEngine_AssistantEndToEnd(t *testing.T) {
	t.Parallel()
	cat := engineCatalog()
	e := newTestEngine(t, Dependencies{Catalog: cat})

	res, err := e.Recommend(context.Background(), Request{
		Mode:    ModeAssistant,
		Message: "Show me 5 action anime from the last 3 years",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.UsedFallback {
		t.Error("UsedFallback = true, want false")
	}
	if got, want := ids(res.Items), []int64{1, 2, 4}; !sameSet(got, want) {
		t.Errorf("ids = %v, want set %v", got, want)
	}
	if res.Debug.Strategy != "rules" {
		t.Errorf("Strategy = %q, want rules", res.Debug.Strategy)
	}
	if res.Debug.Mode != "assistant" {
		t.Errorf("Debug.Mode = %q, want assistant", res.Debug.Mode)
	}
	if res.Debug.Query == nil || res.Debug.Query.Limit != 5 {
		t.Errorf("Debug.Query = %+v, want limit 5", res.Debug.Query)
	}
}

func TestEngine_AssistantFallback(t *testing.T) {
	t.Parallel()
	cat := engineCatalog()
	e := newTestEngine(t, Dependencies{Catalog: cat})

	res, err := e.Recommend(context.Background(), Request{Mode: ModeAssistant, Message: "3 horror anime"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("UsedFallback = false, want true")
	}
	if res.Notice != NoticeFallbackSelected {
		t.Errorf("Notice = %q, want fallback notice", res.Notice)
	}
	// mean >= 7.5 ordered by popularity, limited to the requested 3
	if got, want := ids(res.Items), []int64{3, 1, 2}; !equalIDs(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if got := e.Stats().Fallbacks; got != 1 {
		t.Errorf("Stats().Fallbacks = %d, want 1", got)
	}
}

func TestEngine_ModelParserFailureFallsBackToRules(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{err: errors.New("connection reset")}
	e := newTestEngine(t, Dependencies{Catalog: engineCatalog(), Generator: gen})

	res, err := e.Recommend(context.Background(), Request{Mode: ModeAssistant, Message: "sports anime"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
	if res.Debug.Strategy != "rules" || res.Debug.ParserError == "" {
		t.Errorf("Debug = %+v, want rules strategy with parser error", res.Debug)
	}
	if got := ids(res.Items); !equalIDs(got, []int64{12}) {
		t.Errorf("ids = %v, want [12]", got)
	}
}

func TestEngine_CatalogUnavailable(t *testing.T) {
	t.Parallel()
	cat := engineCatalog()
	cat.err = errStoreDown
	e := newTestEngine(t, Dependencies{Catalog: cat})

	requests := []Request{
		{Mode: ModeAssistant, Message: "action anime"},
		{Mode: ModeShuffle, Shuffle: ShuffleParams{MediaType: models.MediaAnime, Policy: PolicyRandom}},
	}
	for _, req := range requests {
		_, err := e.Recommend(context.Background(), req)
		if !IsCatalogUnavailable(err) {
			t.Errorf("%s: error = %v, want ErrCatalogUnavailable", req.Mode, err)
		}
		if !errors.Is(err, errStoreDown) {
			t.Errorf("%s: error = %v, want cause preserved", req.Mode, err)
		}
	}
	if got := e.Stats().Errors; got != 2 {
		t.Errorf("Stats().Errors = %d, want 2", got)
	}
}

func TestEngine_InvalidRequests(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, Dependencies{Catalog: engineCatalog()})

	tests := []struct {
		name string
		req  Request
	}{
		{"unknown mode", Request{Mode: Mode(9), Message: "hi"}},
		{"blank message", Request{Mode: ModeAssistant, Message: "   "}},
		{"unknown policy", Request{Mode: ModeShuffle, Shuffle: ShuffleParams{Policy: "trending"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := e.Recommend(context.Background(), tt.req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Recommend() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestEngine_WatchHistory(t *testing.T) {
	t.Parallel()

	feedback := &fakeFeedback{records: []models.FeedbackRecord{
		{UserID: 9, EntityID: 11, EntityType: models.MediaAnime, Rating: 9},
		{UserID: 9, EntityID: 10, EntityType: models.MediaAnime, Rating: 3},
		{UserID: 9, EntityID: 50, EntityType: models.MediaManga, Rating: 10},
	}}

	t.Run("liked genres filter results", func(t *testing.T) {
		t.Parallel()
		cat := engineCatalog()
		e := newTestEngine(t, Dependencies{Catalog: cat, Feedback: feedback})

		res, err := e.Recommend(context.Background(), Request{
			Mode:    ModeAssistant,
			Message: "anime similar to what I liked",
			UserID:  9,
		})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(cat.byIDs) != 1 || !equalIDs(cat.byIDs[0], []int64{11}) {
			t.Errorf("hydrated ids = %v, want [[11]]", cat.byIDs)
		}
		// Clannad is drama/romance; Ping Pong shares drama.
		if got := ids(res.Items); !sameSet(got, []int64{11, 12}) {
			t.Errorf("ids = %v, want set [11 12]", got)
		}
	})

	t.Run("feedback error skips filter", func(t *testing.T) {
		t.Parallel()
		cat := engineCatalog()
		e := newTestEngine(t, Dependencies{Catalog: cat, Feedback: &fakeFeedback{err: errStoreDown}})

		res, err := e.Recommend(context.Background(), Request{
			Mode:    ModeAssistant,
			Message: "anime similar to what I liked",
			UserID:  9,
		})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(cat.byIDs) != 0 {
			t.Errorf("GetContentByIDs called %d times, want 0", len(cat.byIDs))
		}
		if len(res.Debug.Query.Predicates) != 0 {
			t.Errorf("Predicates = %v, want none", res.Debug.Query.Predicates)
		}
	})

	t.Run("anonymous user skips feedback", func(t *testing.T) {
		t.Parallel()
		cat := engineCatalog()
		e := newTestEngine(t, Dependencies{Catalog: cat, Feedback: feedback})

		if _, err := e.Recommend(context.Background(), Request{Mode: ModeAssistant, Message: "anime like that"}); err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(cat.byIDs) != 0 {
			t.Errorf("GetContentByIDs called for anonymous user")
		}
	})
}

func TestEngine_Shuffle(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cat := engineCatalog()
		e := newTestEngine(t, Dependencies{Catalog: cat})

		res, err := e.Recommend(context.Background(), Request{Mode: ModeShuffle})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if res.MediaType != models.MediaAnime {
			t.Errorf("MediaType = %q, want Anime", res.MediaType)
		}
		if res.Debug.Policy != PolicyPopular || res.Debug.AppliedPolicy != PolicyPopular {
			t.Errorf("policy = %q/%q, want popular", res.Debug.Policy, res.Debug.AppliedPolicy)
		}
		if got := cat.lastQuery().Limit; got != 5 {
			t.Errorf("limit = %d, want default 5", got)
		}
	})

	t.Run("preference uses stored favorites", func(t *testing.T) {
		t.Parallel()
		prefs := &fakePreferences{genres: []string{"romance"}}
		e := newTestEngine(t, Dependencies{Catalog: engineCatalog(), Preferences: prefs})

		res, err := e.Recommend(context.Background(), Request{
			Mode:    ModeShuffle,
			UserID:  4,
			Shuffle: ShuffleParams{MediaType: models.MediaAnime, Policy: PolicyPreference, Count: 3, MinRating: 8},
		})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if res.Debug.AppliedPolicy != PolicyPreference {
			t.Errorf("AppliedPolicy = %q, want preference", res.Debug.AppliedPolicy)
		}
		if got := ids(res.Items); !equalIDs(got, []int64{11}) {
			t.Errorf("ids = %v, want [11]", got)
		}
	})

	t.Run("preference lookup failure degrades", func(t *testing.T) {
		t.Parallel()
		prefs := &fakePreferences{err: errStoreDown}
		e := newTestEngine(t, Dependencies{Catalog: engineCatalog(), Preferences: prefs})

		res, err := e.Recommend(context.Background(), Request{
			Mode:    ModeShuffle,
			UserID:  4,
			Shuffle: ShuffleParams{Policy: PolicyPreference},
		})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if res.Debug.AppliedPolicy != PolicyPopular || res.Notice != NoticeNoFavorites {
			t.Errorf("applied=%q notice=%q, want popular with no-favorites notice", res.Debug.AppliedPolicy, res.Notice)
		}
	})

	t.Run("rating clamped", func(t *testing.T) {
		t.Parallel()
		cat := engineCatalog()
		e := newTestEngine(t, Dependencies{Catalog: cat})

		if _, err := e.Recommend(context.Background(), Request{Mode: ModeShuffle, Shuffle: ShuffleParams{MinRating: 42}}); err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if got := cat.lastQuery().Predicates[0].Args[0]; got != 10.0 {
			t.Errorf("min rating arg = %v, want 10", got)
		}
	})
}

func TestEngine_ActivityLogging(t *testing.T) {
	t.Parallel()

	t.Run("first item recorded", func(t *testing.T) {
		t.Parallel()
		act := &fakeActivity{}
		e := newTestEngine(t, Dependencies{Catalog: engineCatalog(), Activity: act})

		res, err := e.Recommend(context.Background(), Request{Mode: ModeShuffle, UserID: 3})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(act.entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(act.entries))
		}
		got := act.entries[0]
		if got.EntityID != res.Items[0].ID || got.ActivityType != models.ActivityRecommended || got.UserID != 3 {
			t.Errorf("entry = %+v, want recommended entry for first item", got)
		}
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		t.Parallel()
		act := &fakeActivity{err: errors.New("broker closed")}
		e := newTestEngine(t, Dependencies{Catalog: engineCatalog(), Activity: act})

		res, err := e.Recommend(context.Background(), Request{Mode: ModeAssistant, Message: "drama anime", UserID: 3})
		if err != nil {
			t.Fatalf("Recommend() error = %v, want activity failure ignored", err)
		}
		if len(res.Items) == 0 {
			t.Error("no items returned")
		}
	})

	t.Run("anonymous not recorded", func(t *testing.T) {
		t.Parallel()
		act := &fakeActivity{}
		e := newTestEngine(t, Dependencies{Catalog: engineCatalog(), Activity: act})

		if _, err := e.Recommend(context.Background(), Request{Mode: ModeShuffle}); err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(act.entries) != 0 {
			t.Errorf("entries = %d, want 0", len(act.entries))
		}
	})
}

func sameSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	m := make(map[int64]int, len(a))
	for _, v := range a {
		m[v]++
	}
	for _, v := range b {
		m[v]--
		if m[v] < 0 {
			return false
		}
	}
	return true
}
