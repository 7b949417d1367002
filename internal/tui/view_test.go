package tui_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/smartmark/internal/tui"
	"github.com/nikbrunner/smartmark/internal/tui/layout"
)

func render(t *testing.T, width, height int, keys ...string) string {
	t.Helper()
	app := newApp(&memStore{}, rec("a", 2), rec("b", 1)).WithDimensions(width, height)
	app, _ = press(app, keys...)
	return layout.StripANSI(app.View())
}

func TestView_EmptyState(t *testing.T) {
	out := layout.StripANSI(newApp(&memStore{}).View())

	assert.Assert(t, is.Contains(out, "No bookmarks yet. Press a to add your first one!"))
	assert.Assert(t, is.Contains(out, "a:add"))
}

func TestView_NoMatches(t *testing.T) {
	out := render(t, 80, 24, "/", "nothing-like-this")

	assert.Assert(t, is.Contains(out, "No bookmarks match your search."))
	assert.Assert(t, is.Contains(out, "0 of 2"))
	assert.Assert(t, !strings.Contains(out, "No bookmarks yet"))
}

func TestView_ItemLines(t *testing.T) {
	out := render(t, 80, 24)

	assert.Assert(t, is.Contains(out, "Title a"))
	assert.Assert(t, is.Contains(out, "example.com/a · Added Mar 1, 2025"))
	assert.Assert(t, !strings.Contains(out, "https://example.com/a"), "scheme is hidden")
}

func TestView_TruncatesLongTitles(t *testing.T) {
	app := newApp(&memStore{}, rec("a", 1)).WithDimensions(30, 24)
	out := layout.StripANSI(app.View())

	assert.Assert(t, is.Contains(out, "example.com/a · Added..."))
}

func TestView_AddModal(t *testing.T) {
	out := render(t, 80, 24, "a")

	assert.Assert(t, is.Contains(out, "Add Bookmark"))
	assert.Assert(t, is.Contains(out, "URL:"))
	assert.Assert(t, is.Contains(out, "Title:"))
	assert.Assert(t, is.Contains(out, "Esc cancel"))
}

func TestView_FilterLine(t *testing.T) {
	out := render(t, 80, 24, "/", "Title", "enter")

	assert.Assert(t, is.Contains(out, "/Title"))
	assert.Assert(t, is.Contains(out, "2 of 2"))
}

func TestView_HintsFollowKeyMap(t *testing.T) {
	keys := tui.DefaultKeyMap()
	keys.Add = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new"))
	app := tui.NewApp(tui.AppParams{Store: &memStore{}, Owner: owner, Keys: &keys}).WithDimensions(100, 24)

	out := layout.StripANSI(app.View())

	assert.Assert(t, is.Contains(out, "n:new"))
	assert.Assert(t, is.Contains(out, "j/k:move"))
	assert.Assert(t, !strings.Contains(out, "a:add"))
}
