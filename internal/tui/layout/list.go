package layout

// CalculateListHeight is the number of lines left for the list once the
// header and help bar are drawn.
func CalculateListHeight(terminalHeight int, cfg ListConfig) int {
	return max(terminalHeight-cfg.HeightReduction, cfg.MinHeight)
}

// CalculateVisibleItems is how many bookmarks fit into listHeight lines.
// At least one is always shown.
func CalculateVisibleItems(listHeight int, cfg ListConfig) int {
	return max(listHeight/max(cfg.LinesPerItem, 1), 1)
}

func CalculateItemWidth(terminalWidth int, cfg ListConfig) int {
	return max(terminalWidth-cfg.ContentPadding, 1)
}

// CalculateViewportOffset returns the first index to draw so that the
// cursor sits near the middle of a window of size visible.
func CalculateViewportOffset(cursor, total, visible int) int {
	if total <= visible {
		return 0
	}
	return min(max(cursor-visible/2, 0), total-visible)
}

// CalculateModalWidth sizes the add dialog as a share of the terminal,
// clamped to the configured bounds and a 4 column margin.
func CalculateModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := max(terminalWidth*cfg.WidthPercent/100, cfg.MinWidth)
	return max(min(width, cfg.MaxWidth, terminalWidth-4), 1)
}
