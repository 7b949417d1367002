package metadata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/smartmark/internal/metadata"
)

func serve(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetchTitle_Success(t *testing.T) {
	var gotUA string
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>\n  Go &amp; You  \n</title></head></html>"))
	})

	title, ok := metadata.NewFetcher(metadata.Options{}).FetchTitle(context.Background(), url)

	require.True(t, ok)
	assert.Equal(t, "Go & You", title)
	assert.Equal(t, metadata.DefaultUserAgent, gotUA)
}

func TestFetchTitle_DecodesCharset(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<title>Caf\xe9</title>"))
	})

	title, ok := metadata.NewFetcher(metadata.Options{}).FetchTitle(context.Background(), url)

	require.True(t, ok)
	assert.Equal(t, "Café", title)
}

func TestFetchTitle_Failures(t *testing.T) {
	notFound := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<title>Not Found</title>", http.StatusNotFound)
	})
	untitled := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>no title</body></html>"))
	})
	blank := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<title>   </title>"))
	})

	tests := map[string]string{
		"non-2xx":      notFound,
		"no title":     untitled,
		"blank title":  blank,
		"malformed":    "://nope",
		"no host":      "https://",
		"other scheme": "ftp://example.com",
		"unreachable":  "http://127.0.0.1:1",
	}

	f := metadata.NewFetcher(metadata.Options{Timeout: time.Second})
	for name, url := range tests {
		t.Run(name, func(t *testing.T) {
			title, ok := f.FetchTitle(context.Background(), url)
			assert.False(t, ok)
			assert.Empty(t, title)
		})
	}
}

func TestFetchTitle_Timeout(t *testing.T) {
	release := make(chan struct{})
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	f := metadata.NewFetcher(metadata.Options{Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, ok := f.FetchTitle(context.Background(), url)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExtractTitle(t *testing.T) {
	title, ok := metadata.ExtractTitle(`<TITLE lang="en">Hello</TITLE>`)
	assert.True(t, ok)
	assert.Equal(t, "Hello", title)

	_, ok = metadata.ExtractTitle(`<title></title>`)
	assert.False(t, ok)

	title, ok = metadata.ExtractTitle("<head><title>Rock &amp; <b>Roll</b>\n</title></head><title>second</title>")
	assert.True(t, ok)
	assert.Equal(t, "Rock & <b>Roll</b>", title, "title content is raw text")

	_, ok = metadata.ExtractTitle(`<html><body>no title here</body></html>`)
	assert.False(t, ok)
}
