package search

import (
	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result is a fuzzy match against a bookmark title.
type Result struct {
	Bookmark       model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkTitles implements fuzzy.Source.
type bookmarkTitles []model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// Fuzzy matches query against titles, best score first. An empty query
// matches nothing.
func Fuzzy(items []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, bookmarkTitles(items))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
