package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Hint is one "key:desc" pair in the help bar.
type Hint struct {
	Key  string
	Desc string
}

func hintOf(b key.Binding) Hint {
	h := b.Help()
	return Hint{Key: h.Key, Desc: h.Desc}
}

func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders the bottom bar: "j/k:move o:open a:add"
func (a App) renderHints(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints for modals: "Enter save  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

func (a App) contextualHints() []Hint {
	k := a.keys
	switch a.mode {
	case ModeFilter:
		return []Hint{{Key: "type", Desc: "filter"}, hintOf(k.Confirm), hintOf(k.Cancel)}
	case ModeAdd:
		// shown inside the modal
		return nil
	}

	hints := []Hint{
		{Key: k.Down.Help().Key + "/" + k.Up.Help().Key, Desc: "move"},
		hintOf(k.Open),
		hintOf(k.YankURL),
		hintOf(k.Filter),
	}
	if a.query != "" {
		hints = append(hints, Hint{Key: k.Cancel.Help().Key, Desc: "clear filter"})
	}
	return append(hints, hintOf(k.Add), hintOf(k.Delete), hintOf(k.Reload), hintOf(k.Quit))
}
