package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/search"
	"github.com/nikbrunner/smartmark/internal/tui/layout"
)

const (
	emptyNoBookmarks = "No bookmarks yet. Press a to add your first one!"
	emptyNoMatches   = "No bookmarks match your search."
)

// View implements tea.Model.
func (a App) View() string {
	if a.mode == ModeAdd {
		return a.renderAddModal()
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderList(), a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderHeader() string {
	p := a.projection()

	count := fmt.Sprintf("%d", p.Total)
	if p.Query != "" {
		count = fmt.Sprintf("%d of %d", len(p.Items), p.Total)
	}
	header := a.styles.Header.Render("smartmark") + "  " + a.styles.Count.Render(count)

	var filterLine string
	switch {
	case a.mode == ModeFilter:
		filterLine = a.filter.View()
	case a.query != "":
		filterLine = a.styles.Count.Render("/" + a.query)
	}
	return header + "\n" + filterLine
}

func (a App) renderList() string {
	p := a.projection()
	listHeight := layout.CalculateListHeight(a.height, a.layoutConfig.List)

	var body string
	switch p.EmptyState() {
	case search.NoBookmarks:
		body = a.styles.Empty.Render(emptyNoBookmarks)
	case search.NoMatches:
		body = a.styles.Empty.Render(emptyNoMatches)
	default:
		body = a.renderItems(p.Items, listHeight)
	}

	return lipgloss.NewStyle().Height(listHeight).Render(body)
}

func (a App) renderItems(items []model.Bookmark, listHeight int) string {
	visible := layout.CalculateVisibleItems(listHeight, a.layoutConfig.List)
	offset := layout.CalculateViewportOffset(a.cursor, len(items), visible)
	width := layout.CalculateItemWidth(a.width, a.layoutConfig.List)

	end := offset + visible
	if end > len(items) {
		end = len(items)
	}

	var b strings.Builder
	for i := offset; i < end; i++ {
		b.WriteString(a.renderItem(items[i], i == a.cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderItem renders the two lines of one bookmark: title, then
// "url · Added <date>".
func (a App) renderItem(bm model.Bookmark, isCursor bool, maxWidth int) string {
	title, _ := layout.TruncateText(bm.Title, maxWidth, a.layoutConfig.Text)
	meta, _ := layout.TruncateText(bm.DisplayURL()+" · "+bm.AddedLabel(), maxWidth, a.layoutConfig.Text)

	if isCursor {
		// Pad to fill width for highlight
		title += strings.Repeat(" ", max(0, maxWidth-layout.VisibleLength(title)))
		return a.styles.ItemSelected.Render(title) + "\n" + a.styles.Meta.Render(meta)
	}
	return a.styles.Item.Render(title) + "\n" + a.styles.Meta.Render(meta)
}

func (a App) renderHelpBar() string {
	lines := []string{a.renderStatusLine()}
	if hints := a.renderHints(a.contextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusLine() string {
	if a.status == "" {
		return ""
	}
	switch a.statusKind {
	case statusError:
		return a.styles.StatusError.Render("✗ " + a.status)
	case statusOK:
		return a.styles.StatusOK.Render("✓ " + a.status)
	default:
		return a.styles.StatusInfo.Render(a.status)
	}
}

func (a App) renderAddModal() string {
	var content strings.Builder

	content.WriteString(a.styles.ModalTitle.Render("Add Bookmark"))
	content.WriteString("\n\n")
	content.WriteString(a.styles.Label.Render("URL:"))
	content.WriteString("\n")
	content.WriteString(a.form.url.View())
	content.WriteString("\n\n")
	content.WriteString(a.styles.Label.Render("Title:"))
	content.WriteString("\n")
	content.WriteString(a.form.title.View())
	content.WriteString("\n\n")

	switch {
	case a.form.submitting:
		content.WriteString(a.styles.Pending.Render("Saving..."))
		content.WriteString("\n\n")
	case a.form.err != "":
		content.WriteString(a.styles.FormError.Render(a.form.err))
		content.WriteString("\n\n")
	}

	content.WriteString(a.renderHintsInline([]Hint{
		{Key: "Tab", Desc: "next"},
		{Key: "Enter", Desc: "save"},
		{Key: "Esc", Desc: "cancel"},
	}))

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	modal := lipgloss.Place(
		a.width,
		a.height-1, // Leave room for status line
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(modalWidth).Render(content.String()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderStatusLine())
}
