package search

import (
	"strings"

	"github.com/nikbrunner/smartmark/internal/model"
)

// EmptyState tells the view which placeholder, if any, to show.
type EmptyState int

const (
	HasResults EmptyState = iota
	NoBookmarks
	NoMatches
)

// Projection is the filtered list the view renders.
type Projection struct {
	Query string
	Items []model.Bookmark
	// Total is the size of the unfiltered collection.
	Total int
}

// EmptyState distinguishes an empty collection from a query that matched
// nothing.
func (p Projection) EmptyState() EmptyState {
	switch {
	case len(p.Items) > 0:
		return HasResults
	case p.Total == 0:
		return NoBookmarks
	default:
		return NoMatches
	}
}

// Project keeps the items whose title or url contains query, ignoring case.
// Input order is preserved and items is never modified.
func Project(items []model.Bookmark, query string) Projection {
	p := Projection{Query: query, Total: len(items)}
	needle := strings.ToLower(query)
	if needle == "" {
		p.Items = append([]model.Bookmark(nil), items...)
		return p
	}

	for _, b := range items {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.URL), needle) {
			p.Items = append(p.Items, b)
		}
	}
	return p
}

// Projector caches the last projection keyed on collection version and
// query.
type Projector struct {
	version uint64
	query   string
	valid   bool
	last    Projection
}

// Project returns the cached projection when neither input changed.
func (pr *Projector) Project(version uint64, items []model.Bookmark, query string) Projection {
	if pr.valid && pr.version == version && pr.query == query {
		return pr.last
	}
	pr.last = Project(items, query)
	pr.version, pr.query, pr.valid = version, query, true
	return pr.last
}
