package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/search"
)

func twoResults() []search.Result {
	return []search.Result{
		{Bookmark: model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}, MatchedIndexes: []int{0, 1, 2}},
		{Bookmark: model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func press(p Picker, msg tea.KeyMsg) (Picker, tea.Cmd) {
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_Navigation(t *testing.T) {
	tests := []struct {
		name  string
		start int
		keys  []tea.KeyMsg
		want  int
	}{
		{"j moves down", 0, []tea.KeyMsg{runes("j")}, 1},
		{"k moves up", 1, []tea.KeyMsg{runes("k")}, 0},
		{"k stops at top", 0, []tea.KeyMsg{runes("k")}, 0},
		{"j stops at bottom", 1, []tea.KeyMsg{runes("j")}, 1},
		{"arrows", 0, []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyUp}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(twoResults(), "git")
			p.cursor = tt.start
			for _, k := range tt.keys {
				p, _ = press(p, k)
			}
			if p.cursor != tt.want {
				t.Errorf("expected cursor at %d, got %d", tt.want, p.cursor)
			}
		})
	}
}

func TestPicker_EnterSelects(t *testing.T) {
	p := New(twoResults(), "git")
	p.cursor = 1

	p, cmd := press(p, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	got, ok := p.Selected()
	if !ok || got.ID != "b2" {
		t.Errorf("expected b2 selected, got %q (ok=%v)", got.ID, ok)
	}
}

func TestPicker_CancelKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}, runes("q")} {
		p, cmd := press(New(twoResults(), "git"), k)

		if !p.Cancelled() {
			t.Errorf("%s: expected cancelled", k)
		}
		if cmd == nil {
			t.Errorf("%s: expected quit command", k)
		}
		if _, ok := p.Selected(); ok {
			t.Errorf("%s: expected no selection", k)
		}
	}
}

func TestPicker_ViewShowsResults(t *testing.T) {
	view := New(twoResults(), "git").View()

	if !strings.Contains(view, "(2 results)") {
		t.Errorf("expected result count in header, got:\n%s", view)
	}
	if !strings.Contains(view, "github.com") || strings.Contains(view, "https://") {
		t.Errorf("expected scheme-less urls, got:\n%s", view)
	}
}

func TestPicker_ScrollsWithCursor(t *testing.T) {
	var results []search.Result
	for _, title := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		results = append(results, search.Result{Bookmark: model.Bookmark{ID: title, Title: title, URL: "https://" + title + ".io"}})
	}
	m, _ := New(results, "").Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	p := m.(Picker)
	for range 4 {
		p, _ = press(p, runes("j"))
	}

	view := p.View()
	if !strings.Contains(view, "> echo") {
		t.Errorf("expected cursor on echo, got:\n%s", view)
	}
	if strings.Contains(view, "alpha") {
		t.Errorf("expected alpha scrolled out of view, got:\n%s", view)
	}
}

func TestPicker_TruncatesToWidth(t *testing.T) {
	results := []search.Result{{
		Bookmark:       model.Bookmark{Title: strings.Repeat("x", 100), URL: "https://example.com"},
		MatchedIndexes: []int{99},
	}}
	m, _ := New(results, "x").Update(tea.WindowSizeMsg{Width: 20, Height: 24})

	view := m.(Picker).View()
	if !strings.Contains(view, strings.Repeat("x", 11)+"...") {
		t.Errorf("expected title truncated to 14 cells, got:\n%s", view)
	}
}

func TestPicker_EnterWithNoResults(t *testing.T) {
	p, _ := press(New(nil, "zzz"), tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := p.Selected(); ok {
		t.Error("expected no selection from an empty list")
	}
	if !p.Cancelled() {
		t.Error("expected empty choice to count as cancel")
	}
}
