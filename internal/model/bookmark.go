package model

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	ErrMissingID    = errors.New("bookmark id is empty")
	ErrEmptyTitle   = errors.New("title is required")
	ErrEmptyURL     = errors.New("url is required")
	ErrMalformedURL = errors.New("url is malformed")
)

// Bookmark represents a saved URL. The JSON shape is the wire format used by
// stores and change feeds.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate reports whether b may enter a Collection.
func (b Bookmark) Validate() error {
	switch {
	case b.ID == "":
		return ErrMissingID
	case strings.TrimSpace(b.Title) == "":
		return ErrEmptyTitle
	case strings.TrimSpace(b.URL) == "":
		return ErrEmptyURL
	}
	return nil
}

// DisplayURL returns the URL without its scheme, for list rendering.
func (b Bookmark) DisplayURL() string {
	u := b.URL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	return u
}

// AddedLabel formats the creation date as shown in the dashboard.
func (b Bookmark) AddedLabel() string {
	return "Added " + b.CreatedAt.Local().Format("Jan 2, 2006")
}

// NormalizeURL trims raw and prefixes https:// when it has no http or https
// scheme. It is idempotent; empty input stays empty.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + s
}

// Input is a validated create request.
type Input struct {
	Title string
	URL   string
}

// ValidateInput trims and normalizes the form values and rejects anything
// that must not reach the store.
func ValidateInput(title, rawURL string) (Input, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Input{}, ErrEmptyTitle
	}
	normalized := NormalizeURL(rawURL)
	if normalized == "" {
		return Input{}, ErrEmptyURL
	}
	if nestedScheme(normalized) {
		return Input{}, ErrMalformedURL
	}
	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" {
		return Input{}, ErrMalformedURL
	}
	return Input{Title: title, URL: normalized}, nil
}

// nestedScheme reports whether the part of normalized after its http or
// https scheme starts with another "scheme://". That is what NormalizeURL
// makes of ftp://, javascript:// and similar input. A "://" later in the
// string, as in a query parameter, does not count.
func nestedScheme(normalized string) bool {
	_, rest, _ := strings.Cut(normalized, "://")
	i := strings.Index(rest, "://")
	if i <= 0 {
		return false
	}
	for j, r := range strings.ToLower(rest[:i]) {
		switch {
		case r >= 'a' && r <= 'z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
