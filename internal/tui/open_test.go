package tui

import (
	"runtime"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestBrowserCommand_EnvOverride(t *testing.T) {
	t.Setenv("BROWSER", "firefox --new-tab")

	name, args := browserCommand("https://go.dev")

	assert.Equal(t, name, "firefox")
	assert.Assert(t, is.DeepEqual(args, []string{"--new-tab", "https://go.dev"}))
}

func TestBrowserCommand_Platform(t *testing.T) {
	t.Setenv("BROWSER", "")

	name, args := browserCommand("https://go.dev")

	want := map[string]string{"darwin": "open", "windows": "rundll32"}[runtime.GOOS]
	if want == "" {
		want = "xdg-open"
	}
	assert.Equal(t, name, want)
	assert.Equal(t, args[len(args)-1], "https://go.dev")
}

func TestOpenURL_RejectsEmpty(t *testing.T) {
	assert.ErrorIs(t, OpenURL(""), errNoURL)
}
