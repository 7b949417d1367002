package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Header       lipgloss.Style
	Count        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Pending      lipgloss.Style
	Meta         lipgloss.Style
	Empty        lipgloss.Style
	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	Label        lipgloss.Style
	FormError    lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
	StatusInfo   lipgloss.Style
	StatusError  lipgloss.Style
	StatusOK     lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	danger := lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}
	good := lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Count: lipgloss.NewStyle().
			Foreground(subtle),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Pending: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true).
			PaddingLeft(1),

		Meta: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(1, 2),

		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Label: lipgloss.NewStyle().
			Foreground(primary),

		FormError: lipgloss.NewStyle().
			Foreground(danger),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		StatusInfo: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		StatusError: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),

		StatusOK: lipgloss.NewStyle().
			Foreground(good).
			Bold(true),
	}
}
