// Package picker is the quick-open chooser shown when a query matches
// more than one bookmark.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/search"
	"github.com/nikbrunner/smartmark/internal/tui/layout"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	urlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Underline(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// keyMap mirrors the dashboard's vim-style bindings.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	Choose: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c", "q")),
}

// header and footer take two lines each.
const chromeLines = 4

// Picker lets the user choose one of several quick-open matches.
type Picker struct {
	results []search.Result
	query   string
	cursor  int
	done    bool
	chosen  bool
	width   int
	height  int
	cfg     layout.LayoutConfig
}

func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
		cfg:     layout.DefaultConfig(),
	}
}

func (p Picker) Init() tea.Cmd {
	return nil
}

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			p.done = true
			return p, tea.Quit
		case key.Matches(msg, keys.Choose):
			p.done, p.chosen = true, len(p.results) > 0
			return p, tea.Quit
		case key.Matches(msg, keys.Down):
			p.cursor = min(p.cursor+1, max(len(p.results)-1, 0))
		case key.Matches(msg, keys.Up):
			p.cursor = max(p.cursor-1, 0)
		}
	}
	return p, nil
}

func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	visible := layout.CalculateVisibleItems(p.height-chromeLines, p.cfg.List)
	offset := layout.CalculateViewportOffset(p.cursor, len(p.results), visible)
	end := min(offset+visible, len(p.results))
	width := layout.CalculateItemWidth(p.width, p.cfg.List)

	for i := offset; i < end; i++ {
		r := p.results[i]
		marker, style := "  ", titleStyle
		if i == p.cursor {
			marker, style = "> ", cursorStyle
		}

		title, cut := layout.TruncateText(r.Bookmark.Title, width, p.cfg.Text)
		matched := r.MatchedIndexes
		if cut {
			// indexes past the cut point would land on the ellipsis
			matched = nil
		}
		url, _ := layout.TruncateText(r.Bookmark.DisplayURL(), width, p.cfg.Text)

		b.WriteString(marker + highlight(title, matched, style) + "\n")
		b.WriteString("   " + urlStyle.Render(url) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k: move  Enter: open  q/Esc: cancel"))
	return b.String()
}

// Selected returns the chosen bookmark; ok is false after a cancel.
func (p Picker) Selected() (b model.Bookmark, ok bool) {
	if !p.chosen {
		return model.Bookmark{}, false
	}
	return p.results[p.cursor].Bookmark, true
}

// Cancelled reports whether the picker closed without a choice.
func (p Picker) Cancelled() bool {
	return p.done && !p.chosen
}

// highlight styles the fuzzy-matched runes of title.
func highlight(title string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(title)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(title) {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}
