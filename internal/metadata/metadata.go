// Package metadata fetches a page title to prefill the add form.
package metadata

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/nikbrunner/smartmark/internal/logger"
)

const (
	DefaultUserAgent = "SmartMark-Bot/1.0"
	DefaultTimeout   = 5 * time.Second

	maxBody = 1 << 20
)

// Fetcher retrieves titles. Results are best effort: every failure looks
// like "no title".
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	log       logger.Logger
}

// Options configures NewFetcher. Zero values use defaults.
type Options struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	Log       logger.Logger
}

func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:    opts.Client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		log:       opts.Log,
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.log == nil {
		f.log = logger.Nop()
	}
	return f
}

// FetchTitle issues one GET for rawURL and extracts the document title.
// It returns ok=false on any error, non-2xx status or missing title.
func (f *Fetcher) FetchTitle(ctx context.Context, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("title fetch failed", logger.String("url", rawURL), logger.Err(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Debug("title fetch rejected", logger.String("url", rawURL), logger.Int("status", resp.StatusCode))
		return "", false
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", false
	}
	return titleFrom(body)
}

// ExtractTitle returns the first <title> of doc, unescaped and with
// whitespace collapsed.
func ExtractTitle(doc string) (string, bool) {
	return titleFrom(strings.NewReader(doc))
}

// titleFrom stops reading as soon as the title element closes.
func titleFrom(r io.Reader) (string, bool) {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = atom.Lookup(name) == atom.Title
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		case html.EndTagToken:
			if !inTitle {
				continue
			}
			title := strings.Join(strings.Fields(b.String()), " ")
			return title, title != ""
		}
	}
}
