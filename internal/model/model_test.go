package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nikbrunner/smartmark/internal/model"
)

func bm(id string, minutes int) model.Bookmark {
	return model.Bookmark{
		ID:        id,
		Title:     "Title " + id,
		URL:       "https://example.com/" + id,
		CreatedAt: time.Date(2025, 1, 1, 0, minutes, 0, 0, time.UTC),
	}
}

func ids(c *model.Collection) []string {
	var out []string
	for _, b := range c.Bookmarks() {
		out = append(out, b.ID)
	}
	return out
}

func equalIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com/path  ", "https://example.com/path"},
		{"http://a.b", "http://a.b"},
		{"HTTPS://A.B", "HTTPS://A.B"},
		{"https://x.io", "https://x.io"},
		{"ftp://files.example.com", "https://ftp://files.example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := model.NormalizeURL(tt.in)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if again := model.NormalizeURL(got); again != got {
				t.Errorf("not idempotent: %q became %q", got, again)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		url     string
		want    model.Input
		wantErr error
	}{
		{"valid", " Go ", "go.dev", model.Input{Title: "Go", URL: "https://go.dev"}, nil},
		{"empty title", "  ", "go.dev", model.Input{}, model.ErrEmptyTitle},
		{"empty url", "Go", " ", model.Input{}, model.ErrEmptyURL},
		{"no host", "Go", "https://", model.Input{}, model.ErrMalformedURL},
		{"ftp scheme", "Files", "ftp://files.example.com", model.Input{}, model.ErrMalformedURL},
		{"javascript scheme", "X", "javascript://x.com/%0aalert(1)", model.Input{}, model.ErrMalformedURL},
		{"custom scheme", "App", "  Obsidian://open?vault=notes", model.Input{}, model.ErrMalformedURL},
		{"uppercase http", "Go", "HTTP://go.dev", model.Input{Title: "Go", URL: "HTTP://go.dev"}, nil},
		{"already normalized ftp", "Files", "https://ftp://files.example.com", model.Input{}, model.ErrMalformedURL},
		{"doubled scheme", "Go", "https://http://go.dev", model.Input{}, model.ErrMalformedURL},
		{"scheme in query", "Go", "go.dev/r?to=https://x.io", model.Input{Title: "Go", URL: "https://go.dev/r?to=https://x.io"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.ValidateInput(tt.title, tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBookmark_JSONWireShape(t *testing.T) {
	data, err := json.Marshal(bm("b1", 5))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"id", "title", "url", "created_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
}

func TestBookmark_Display(t *testing.T) {
	b := model.Bookmark{URL: "https://go.dev/doc", CreatedAt: time.Date(2025, 3, 7, 12, 0, 0, 0, time.Local)}
	if got := b.DisplayURL(); got != "go.dev/doc" {
		t.Errorf("expected go.dev/doc, got %q", got)
	}
	if got := b.AddedLabel(); got != "Added Mar 7, 2025" {
		t.Errorf("expected 'Added Mar 7, 2025', got %q", got)
	}
}

func TestNewCollection_SortsAndDedups(t *testing.T) {
	invalid := bm("bad", 9)
	invalid.Title = ""

	c := model.NewCollection([]model.Bookmark{bm("old", 1), bm("new", 3), bm("mid", 2), bm("new", 3), invalid})

	equalIDs(t, ids(c), "new", "mid", "old")
}

func TestCollection_InsertRejectsDuplicates(t *testing.T) {
	c := model.NewCollection([]model.Bookmark{bm("a", 1)})
	v := c.Version()

	if c.InsertSorted(bm("a", 2)) {
		t.Fatal("expected duplicate insert to be rejected")
	}
	if c.Version() != v {
		t.Error("expected version to stay unchanged")
	}
	if !c.InsertSorted(bm("b", 2)) {
		t.Fatal("expected insert to succeed")
	}
	equalIDs(t, ids(c), "b", "a")
}

func TestCollection_InsertSorted(t *testing.T) {
	c := model.NewCollection([]model.Bookmark{bm("c", 30), bm("a", 10)})

	c.InsertSorted(bm("b", 20))
	c.InsertSorted(bm("d", 40))
	c.InsertSorted(bm("z", 0))

	equalIDs(t, ids(c), "d", "c", "b", "a", "z")
}

func TestCollection_RemoveAndNeighbors(t *testing.T) {
	c := model.NewCollection([]model.Bookmark{bm("a", 3), bm("b", 2), bm("c", 1)})

	prev, next := c.Neighbors("b")
	if prev != "a" || next != "c" {
		t.Fatalf("expected a/c, got %q/%q", prev, next)
	}

	got, idx, ok := c.Remove("b")
	if !ok || got.ID != "b" || idx != 1 {
		t.Fatalf("unexpected remove result %v %d %v", got.ID, idx, ok)
	}
	if _, _, ok := c.Remove("b"); ok {
		t.Error("expected second remove to report false")
	}
	equalIDs(t, ids(c), "a", "c")
}

func TestCollection_InsertAtClamps(t *testing.T) {
	c := model.NewCollection([]model.Bookmark{bm("a", 2)})

	c.InsertAt(99, bm("b", 1))
	c.InsertAt(-4, bm("c", 3))

	equalIDs(t, ids(c), "c", "a", "b")
}
