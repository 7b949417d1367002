package exporter

import (
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/golden"

	"github.com/nikbrunner/smartmark/internal/importer"
	"github.com/nikbrunner/smartmark/internal/model"
)

func sample() []model.Bookmark {
	return []model.Bookmark{
		{ID: "b2", Title: "Tom & Jerry <3", URL: "https://example.com/?a=1&b=2", CreatedAt: time.Unix(1700000100, 0)},
		{ID: "b1", Title: "GitHub", URL: "https://github.com", CreatedAt: time.Unix(1700000000, 0)},
	}
}

func TestExportHTML_Golden(t *testing.T) {
	golden.Assert(t, ExportHTML(sample()), "export.golden")
}

func TestExportHTML_Empty(t *testing.T) {
	out := ExportHTML(nil)

	assert.Assert(t, strings.HasPrefix(out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n"))
	assert.Assert(t, !strings.Contains(out, "<DT>"))
}

func TestExportHTML_RoundTripsThroughImporter(t *testing.T) {
	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(ExportHTML(sample())))
	assert.NilError(t, err)

	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].Title, "Tom & Jerry <3")
	assert.Equal(t, entries[0].URL, "https://example.com/?a=1&b=2")
	assert.Assert(t, entries[1].AddedAt.Equal(time.Unix(1700000000, 0)))
}

func TestDefaultExportPath(t *testing.T) {
	path, err := DefaultExportPath(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.NilError(t, err)
	assert.Assert(t, strings.HasSuffix(path, "Downloads/smartmark-export-2025-03-09.html"), path)
}
