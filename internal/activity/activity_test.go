// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/logging"
	"github.com/tomtom215/otakuconnect/internal/models"
)

var errUnknownUser = errors.New("insert violates foreign key")

type fakeStore struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
	calls   int
}

func (s *fakeStore) InsertActivity(_ context.Context, entry *models.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if entry.UserID == 404 {
		return errUnknownUser
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeStore) snapshot() (entries []models.ActivityEntry, calls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ActivityEntry(nil), s.entries...), s.calls
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("pubsub closed") }
func (failingPublisher) Close() error                              { return nil }

// startPipeline runs a consumer on a fresh GoChannel and returns a publisher
// wired to the same topic.
func startPipeline(t *testing.T, store Store) (*Publisher, *Consumer) {
	t.Helper()

	pubsub := NewGoChannel(config.ActivityConfig{BufferSize: 16}, zerolog.Nop())
	t.Cleanup(func() { _ = pubsub.Close() })

	consumer, err := NewConsumer(pubsub, store, "test.activity", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})

	select {
	case <-consumer.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never subscribed")
	}

	publisher, err := NewPublisher(pubsub, "test.activity")
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	return publisher, consumer
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPipeline_PersistsEntries(t *testing.T) {
	store := &fakeStore{}
	publisher, consumer := startPipeline(t, store)

	occurred := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	entries := []models.ActivityEntry{
		{UserID: 7, EntityID: 52991, EntityType: models.MediaAnime, ActivityType: models.ActivityRecommended, Content: "assistant recommendation: Frieren", OccurredAt: occurred},
		{UserID: 7, EntityID: 2, EntityType: models.MediaManga, ActivityType: models.ActivityRecommended, OccurredAt: occurred},
	}
	for _, e := range entries {
		if err := publisher.LogActivity(ctx, e); err != nil {
			t.Fatalf("LogActivity() error = %v", err)
		}
	}

	waitFor(t, func() bool { return consumer.Stats().Persisted == 2 })

	got, _ := store.snapshot()
	for i := range entries {
		if got[i].EntityID != entries[i].EntityID || got[i].EntityType != entries[i].EntityType ||
			got[i].Content != entries[i].Content || !got[i].OccurredAt.Equal(occurred) {
			t.Errorf("stored[%d] = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestPipeline_FailedInsertDoesNotBlock(t *testing.T) {
	store := &fakeStore{}
	publisher, consumer := startPipeline(t, store)
	ctx := context.Background()

	for _, userID := range []int64{404, 8} {
		err := publisher.LogActivity(ctx, models.ActivityEntry{
			UserID: userID, EntityID: 1, EntityType: models.MediaAnime, ActivityType: models.ActivityViewed,
		})
		if err != nil {
			t.Fatalf("LogActivity() error = %v", err)
		}
	}

	waitFor(t, func() bool { return consumer.Stats().Received == 2 })

	stats := consumer.Stats()
	if stats.Dropped != 1 || stats.Persisted != 1 {
		t.Errorf("Stats() = %+v, want one dropped and one persisted", stats)
	}
	got, calls := store.snapshot()
	if calls != 2 {
		t.Errorf("insert calls = %d, want 2 (no redelivery)", calls)
	}
	if len(got) != 1 || got[0].UserID != 8 {
		t.Errorf("stored = %+v, want only user 8", got)
	}
}

func TestConsumer_MalformedPayload(t *testing.T) {
	store := &fakeStore{}
	pubsub := NewGoChannel(config.ActivityConfig{}, zerolog.Nop())
	defer pubsub.Close()

	consumer, err := NewConsumer(pubsub, store, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Serve(ctx) }()
	<-consumer.Ready()

	if err := pubsub.Publish(DefaultTopic, message.NewMessage(watermill.NewUUID(), []byte("{not json"))); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitFor(t, func() bool { return consumer.Stats().Malformed == 1 })

	if _, calls := store.snapshot(); calls != 0 {
		t.Errorf("insert calls = %d, want 0", calls)
	}
}

func TestPublisher_Errors(t *testing.T) {
	if _, err := NewPublisher(nil, ""); err == nil {
		t.Error("NewPublisher(nil) error = nil, want error")
	}

	p, err := NewPublisher(failingPublisher{}, "")
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	if p.topic != DefaultTopic {
		t.Errorf("topic = %q, want %q", p.topic, DefaultTopic)
	}

	tests := []struct {
		name  string
		entry models.ActivityEntry
	}{
		{"invalid entity type", models.ActivityEntry{UserID: 1, EntityType: "Novel"}},
		{"publish failure", models.ActivityEntry{UserID: 1, EntityType: models.MediaAnime}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.LogActivity(context.Background(), tt.entry); err == nil {
				t.Error("LogActivity() error = nil, want error")
			}
		})
	}
}

func TestNewConsumer_Errors(t *testing.T) {
	pubsub := NewGoChannel(config.ActivityConfig{}, zerolog.Nop())
	defer pubsub.Close()

	if _, err := NewConsumer(nil, &fakeStore{}, "", zerolog.Nop()); err == nil {
		t.Error("NewConsumer(nil subscriber) error = nil, want error")
	}
	if _, err := NewConsumer(pubsub, nil, "", zerolog.Nop()); err == nil {
		t.Error("NewConsumer(nil store) error = nil, want error")
	}
}
