// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/models"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	base := Request{Mode: ModeAssistant, Message: "Action anime please", UserID: 1}

	tests := []struct {
		name string
		req  Request
		same bool
	}{
		{"whitespace and case ignored", Request{Mode: ModeAssistant, Message: "  action   ANIME please ", UserID: 1}, true},
		{"request id ignored", Request{Mode: ModeAssistant, Message: "Action anime please", UserID: 1, RequestID: "abc"}, true},
		{"different message", Request{Mode: ModeAssistant, Message: "Horror anime please", UserID: 1}, false},
		{"different user", Request{Mode: ModeAssistant, Message: "Action anime please", UserID: 2}, false},
		{"different mode", Request{Mode: ModeShuffle, UserID: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Fingerprint(tt.req) == Fingerprint(base); got != tt.same {
				t.Errorf("fingerprints equal = %v, want %v", got, tt.same)
			}
		})
	}

	a := Request{Mode: ModeShuffle, Shuffle: ShuffleParams{MediaType: models.MediaManga, Policy: PolicyRandom, Count: 5, MinRating: 7}}
	b := a
	b.Shuffle.MinRating = 7.5
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("shuffle fingerprints ignore min rating")
	}
}

func TestEngine_Resume(t *testing.T) {
	t.Parallel()
	cat := engineCatalog()
	e := newTestEngine(t, Dependencies{Catalog: cat})
	ctx := context.Background()

	req := Request{Mode: ModeShuffle, Shuffle: ShuffleParams{MediaType: models.MediaAnime, Policy: PolicyRandom, Count: 3}}

	sess, reused, err := e.Resume(ctx, Session{}, req, false)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if reused {
		t.Error("first Resume() reused = true, want false")
	}
	if sess.ID == "" || sess.Result == nil || sess.Fingerprint != Fingerprint(req) {
		t.Fatalf("session = %+v, want populated", sess)
	}
	queries := len(cat.queries)

	again, reused, err := e.Resume(ctx, sess, req, false)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if !reused {
		t.Error("unchanged Resume() reused = false, want true")
	}
	if len(cat.queries) != queries {
		t.Errorf("catalog queried %d more times on reuse", len(cat.queries)-queries)
	}
	if again.Result != sess.Result {
		t.Error("reused session has a different result")
	}

	redrawn, reused, err := e.Resume(ctx, sess, req, true)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if reused {
		t.Error("forced Resume() reused = true, want false")
	}
	if redrawn.ID != sess.ID {
		t.Errorf("session ID changed on redraw: %q -> %q", sess.ID, redrawn.ID)
	}

	changed := req
	changed.Shuffle.Policy = PolicyHiddenGems
	next, reused, err := e.Resume(ctx, redrawn, changed, false)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if reused || next.Fingerprint == redrawn.Fingerprint {
		t.Error("changed request reused the stale result")
	}
}

func TestEngine_ResumeError(t *testing.T) {
	t.Parallel()
	cat := engineCatalog()
	cat.err = errStoreDown
	e := newTestEngine(t, Dependencies{Catalog: cat})

	prev := Session{ID: "keep", Fingerprint: "stale"}
	got, _, err := e.Resume(context.Background(), prev, Request{Mode: ModeShuffle}, false)
	if !IsCatalogUnavailable(err) {
		t.Fatalf("Resume() error = %v, want ErrCatalogUnavailable", err)
	}
	if got.ID != "keep" || got.Fingerprint != "stale" {
		t.Errorf("session = %+v, want previous session unchanged", got)
	}
}

func TestEngine_ResumeRejectsForgedSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	req := Request{Mode: ModeShuffle, Shuffle: ShuffleParams{MediaType: models.MediaAnime, Policy: PolicyPopular, Count: 3}}
	planted := &Result{Items: []models.ContentItem{{ID: 666, MediaType: models.MediaAnime, Title: "Planted"}}}

	e := newTestEngine(t, Dependencies{Catalog: engineCatalog()})
	signed, _, err := e.Resume(ctx, Session{}, req, false)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if signed.Signature == "" {
		t.Fatal("Resume() returned an unsigned session")
	}

	tampered := signed
	tampered.Result = planted

	otherKey := newTestEngine(t, Dependencies{Catalog: engineCatalog()})

	tests := []struct {
		name   string
		engine *Engine
		sess   Session
	}{
		{"unsigned session with matching fingerprint", e, Session{ID: "s", Fingerprint: Fingerprint(req), Result: planted}},
		{"signed session with edited result", e, tampered},
		{"signature from another key", otherKey, signed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reused, err := tt.engine.Resume(ctx, tt.sess, req, false)
			if err != nil {
				t.Fatalf("Resume() error = %v", err)
			}
			if reused {
				t.Error("reused = true, want recompute")
			}
			for _, it := range got.Result.Items {
				if it.ID == 666 {
					t.Error("client-supplied item survived Resume")
				}
			}
		})
	}
}

func TestEngine_ResumeAfterJSONRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.SessionKey = "a-stable-test-session-key"
	e, err := NewEngine(cfg, Dependencies{Catalog: engineCatalog()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	for _, req := range []Request{
		{Mode: ModeAssistant, Message: "3 action anime since 2020"},
		{Mode: ModeShuffle, Shuffle: ShuffleParams{MediaType: models.MediaAnime, Policy: PolicyHiddenGems, Count: 3, MinRating: 7.5}},
	} {
		sess, _, err := e.Resume(ctx, Session{}, req, false)
		if err != nil {
			t.Fatalf("Resume() error = %v", err)
		}
		raw, err := json.Marshal(sess)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		var back Session
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}

		if _, reused, err := e.Resume(ctx, back, req, false); err != nil || !reused {
			t.Errorf("%s: Resume(decoded) reused = %v, err = %v; want reuse", req.Mode, reused, err)
		}
	}
}
