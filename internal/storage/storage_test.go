package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/storage"
)

type failingStore struct {
	storage.Store
	err error
}

func (f failingStore) Insert(context.Context, string, string) (model.Bookmark, error) {
	return model.Bookmark{}, f.err
}

func (f failingStore) Delete(context.Context, string) error { return f.err }

func nextEvent(t *testing.T, sub feed.Subscription) feed.Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return feed.Event{}
	}
}

func TestPublishing_AnnouncesWrites(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub(8)
	sub, err := hub.Subscribe(ctx, feed.Scope{Owner: "alice", Session: "s1"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	s := storage.NewPublishing(newSQLite(t, "alice"), hub, "alice", logger.Nop())

	b, err := s.Insert(ctx, "Go", "https://go.dev")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	ev := nextEvent(t, sub)
	if ev.Kind != feed.Insert || ev.Record.ID != b.ID {
		t.Errorf("expected insert of %s, got %+v", b.ID, ev)
	}

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ev = nextEvent(t, sub)
	if ev.Kind != feed.Delete || ev.Record.ID != b.ID {
		t.Errorf("expected delete of %s, got %+v", b.ID, ev)
	}
}

func TestPublishing_SilentOnFailure(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub(8)
	sub, err := hub.Subscribe(ctx, feed.Scope{Owner: "alice", Session: "s1"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	boom := errors.New("boom")
	s := storage.NewPublishing(failingStore{err: boom}, hub, "alice", logger.Nop())

	if _, err := s.Insert(ctx, "Go", "https://go.dev"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := s.Delete(ctx, "x"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	select {
	case ev := <-sub.Events():
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}
