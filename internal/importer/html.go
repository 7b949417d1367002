package importer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/smartmark/internal/model"
)

// Entry is one link found in a bookmark export. Folder structure is
// flattened away.
type Entry struct {
	Title   string
	URL     string
	AddedAt time.Time
}

// ParseHTMLBookmarks parses Netscape bookmark HTML, as exported by every
// major browser.
func ParseHTMLBookmarks(r io.Reader) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			if e, ok := entryFrom(n); ok {
				entries = append(entries, e)
			}
			return // Don't recurse into A
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return entries, nil
}

func entryFrom(n *html.Node) (Entry, bool) {
	href := strings.TrimSpace(getAttr(n, "href"))
	if href == "" {
		return Entry{}, false
	}
	// Browser internals like place: or javascript: links are not bookmarks.
	if u, err := url.Parse(href); err == nil && u.Scheme != "" &&
		!strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https") {
		return Entry{}, false
	}

	title := getTextContent(n)
	if title == "" {
		title = href // fallback to URL as title
	}

	var addedAt time.Time
	if addDate := getAttr(n, "add_date"); addDate != "" {
		if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
			addedAt = time.Unix(ts, 0).UTC()
		}
	}

	return Entry{Title: title, URL: href, AddedAt: addedAt}, true
}

// Inserter is the write side of the store.
type Inserter interface {
	Insert(ctx context.Context, title, url string) (model.Bookmark, error)
}

// Result summarizes an Import.
type Result struct {
	Added   int
	Skipped int
}

// Import inserts entries whose normalized URL is not already in existing.
// Entries go in oldest first so that the store's newest-first order matches
// the source.
func Import(ctx context.Context, store Inserter, entries []Entry, existing []model.Bookmark) (Result, error) {
	seen := make(map[string]bool, len(existing)+len(entries))
	for _, b := range existing {
		seen[b.URL] = true
	}

	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AddedAt.Before(sorted[j].AddedAt)
	})

	var res Result
	for _, e := range sorted {
		in, err := model.ValidateInput(e.Title, e.URL)
		if err != nil || seen[in.URL] {
			res.Skipped++
			continue
		}
		if _, err := store.Insert(ctx, in.Title, in.URL); err != nil {
			return res, fmt.Errorf("import %s: %w", in.URL, err)
		}
		seen[in.URL] = true
		res.Added++
	}
	return res, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
