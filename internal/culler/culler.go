// Package culler finds bookmarks whose URLs no longer resolve.
package culler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/smartmark/internal/model"
)

// Status is the health of one URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx
	Dead                      // 404 or 410
	Unreachable               // transport error or any other status
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result is the outcome for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int
	Reason     string
}

// ProgressFunc is called after each URL is checked. It is called from
// worker goroutines but never concurrently.
type ProgressFunc func(completed, total int)

// Options tune a Check run. Zero values pick the defaults.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// Private lists domains whose 404s usually mean "login required"
	// rather than gone, e.g. github.com for private repositories.
	Private    []string
	Client     *http.Client
	OnProgress ProgressFunc
}

const (
	defaultConcurrency = 8
	defaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// Check requests every bookmark URL and returns results in input order.
// Cancelling ctx marks the remaining bookmarks unreachable.
func Check(ctx context.Context, items []model.Bookmark, opts Options) []Result {
	if len(items) == 0 {
		return nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	private := make(map[string]bool, len(opts.Private))
	for _, domain := range opts.Private {
		private[strings.ToLower(domain)] = true
	}

	results := make([]Result, len(items))
	jobs := make(chan int, len(items))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkOne(ctx, client, items[idx], private)

				if opts.OnProgress != nil {
					mu.Lock()
					completed++
					opts.OnProgress(completed, len(items))
					mu.Unlock()
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// DeadBookmarks filters results down to bookmarks that are gone for good.
func DeadBookmarks(results []Result) []model.Bookmark {
	var out []model.Bookmark
	for _, r := range results {
		if r.Status == Dead {
			out = append(out, r.Bookmark)
		}
	}
	return out
}

func checkOne(ctx context.Context, client *http.Client, bm model.Bookmark, private map[string]bool) Result {
	result := Result{Bookmark: bm}

	// HEAD first; plenty of servers reject it, so fall back to GET.
	resp, err := do(ctx, client, http.MethodHead, bm.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = do(ctx, client, http.MethodGet, bm.URL)
		if err != nil {
			result.Status = Unreachable
			result.Reason = reason(err)
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isPrivate(bm.URL, private) {
			result.Status = Unreachable
			result.Reason = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Reason = http.StatusText(resp.StatusCode)
	}
	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isPrivate matches the host and any of its parent domains.
func isPrivate(rawURL string, private map[string]bool) bool {
	if len(private) == 0 {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for host != "" {
		if private[host] {
			return true
		}
		_, parent, ok := strings.Cut(host, ".")
		if !ok {
			break
		}
		host = parent
	}
	return false
}

// reason turns transport errors into short labels.
func reason(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return err.Error()
	}
}
