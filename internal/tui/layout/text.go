package layout

import "github.com/charmbracelet/x/ansi"

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// VisibleLength is the number of terminal cells s occupies. Wide runes
// count twice and escape sequences count zero.
func VisibleLength(s string) int {
	return ansi.StringWidth(s)
}

// TruncateText shortens text to at most maxWidth cells, ending it with the
// configured ellipsis. The bool reports whether anything was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if ansi.StringWidth(text) <= maxWidth {
		return text, false
	}
	if ansi.StringWidth(cfg.Ellipsis) >= maxWidth {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}
