package search

import (
	"testing"
	"time"

	"github.com/nikbrunner/smartmark/internal/model"
)

func sample() []model.Bookmark {
	now := time.Now()
	return []model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com", CreatedAt: now},
		{ID: "b2", Title: "GitLab", URL: "https://gitlab.com", CreatedAt: now},
		{ID: "b3", Title: "TanStack Router", URL: "https://tanstack.com/router", CreatedAt: now},
		{ID: "b4", Title: "Example", URL: "https://example.com", CreatedAt: now},
	}
}

func TestFuzzy_EmptyQuery(t *testing.T) {
	results := Fuzzy(sample(), "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzy_ExactMatch(t *testing.T) {
	results := Fuzzy(sample(), "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.Title != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Bookmark.Title)
	}
}

func TestFuzzy_FuzzyMatch(t *testing.T) {
	results := Fuzzy(sample(), "tsr")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.ID != "b3" {
		t.Errorf("expected TanStack Router, got %s", results[0].Bookmark.Title)
	}
	if len(results[0].MatchedIndexes) != 3 {
		t.Errorf("expected 3 matched indexes, got %v", results[0].MatchedIndexes)
	}
}

func TestFuzzy_NoMatch(t *testing.T) {
	if results := Fuzzy(sample(), "zzzz"); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestProject_FiltersByTitle(t *testing.T) {
	items := []model.Bookmark{
		{ID: "1", Title: "GitHub", URL: "https://github.com"},
		{ID: "2", Title: "Example", URL: "https://example.com"},
	}

	p := Project(items, "git")

	if len(p.Items) != 1 || p.Items[0].Title != "GitHub" {
		t.Fatalf("expected only GitHub, got %+v", p.Items)
	}
}

func TestProject_MatchesURLCaseInsensitive(t *testing.T) {
	p := Project(sample(), "TANSTACK.COM")

	if len(p.Items) != 1 || p.Items[0].ID != "b3" {
		t.Fatalf("expected b3, got %+v", p.Items)
	}
}

func TestProject_EmptyQueryKeepsOrder(t *testing.T) {
	items := sample()
	p := Project(items, "")

	if len(p.Items) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(p.Items))
	}
	for i := range items {
		if p.Items[i].ID != items[i].ID {
			t.Errorf("position %d: expected %s, got %s", i, items[i].ID, p.Items[i].ID)
		}
	}

	// Mutating the projection must not reach the input.
	p.Items[0].Title = "changed"
	if items[0].Title == "changed" {
		t.Error("projection aliases its input")
	}
}

func TestProject_Pure(t *testing.T) {
	items := sample()
	a := Project(items, "git")
	b := Project(items, "git")

	if len(a.Items) != len(b.Items) {
		t.Fatalf("expected identical projections, got %d and %d", len(a.Items), len(b.Items))
	}
	for i := range a.Items {
		if a.Items[i].ID != b.Items[i].ID {
			t.Errorf("position %d differs: %s vs %s", i, a.Items[i].ID, b.Items[i].ID)
		}
	}
}

func TestProjection_EmptyState(t *testing.T) {
	tests := []struct {
		name  string
		items []model.Bookmark
		query string
		want  EmptyState
	}{
		{"no bookmarks", nil, "", NoBookmarks},
		{"no bookmarks with query", nil, "git", NoBookmarks},
		{"no matches", sample(), "nothing-here", NoMatches},
		{"results", sample(), "git", HasResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Project(tt.items, tt.query).EmptyState(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProjector_Caches(t *testing.T) {
	var pr Projector
	items := sample()

	first := pr.Project(1, items, "git")
	items[0].Title = "mutated without version bump"
	items[0].URL = "https://mutated.example"
	second := pr.Project(1, items, "git")

	if len(second.Items) != 2 || second.Items[0].Title != first.Items[0].Title {
		t.Error("expected cached projection for unchanged version and query")
	}

	third := pr.Project(2, items, "git")
	if len(third.Items) != 1 || third.Items[0].ID != "b2" {
		t.Errorf("expected recompute after version bump, got %d items", len(third.Items))
	}
}
