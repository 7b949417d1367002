package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/tui/layout"
)

const (
	fieldURL = iota
	fieldTitle
)

// addForm is the add-bookmark modal. Its values survive a failed submit
// and are cleared only once the store confirms the create.
type addForm struct {
	url   textinput.Model
	title textinput.Model
	focus int

	err        string
	submitting bool
}

func newAddForm(cfg layout.LayoutConfig) addForm {
	u := textinput.New()
	u.Placeholder = "https://..."
	u.CharLimit = cfg.Input.URLCharLimit
	u.Width = cfg.Input.Width

	t := textinput.New()
	t.Placeholder = "Title"
	t.CharLimit = cfg.Input.TitleCharLimit
	t.Width = cfg.Input.Width

	return addForm{url: u, title: t}
}

func (f *addForm) reset() {
	f.url.Reset()
	f.title.Reset()
	f.err = ""
	f.submitting = false
	f.focusField(fieldURL)
}

func (f *addForm) focusField(field int) {
	f.focus = field
	if field == fieldURL {
		f.title.Blur()
		f.url.Focus()
		return
	}
	f.url.Blur()
	f.title.Focus()
}

// blurURL normalizes the URL field in place and reports the URL to
// prefetch a title for, if any.
func (f *addForm) blurURL() (string, bool) {
	normalized := model.NormalizeURL(f.url.Value())
	f.url.SetValue(normalized)
	if normalized == "" || f.title.Value() != "" {
		return "", false
	}
	return normalized, true
}

// applyTitle fills in a fetched title unless the form moved on.
func (f *addForm) applyTitle(url, title string) bool {
	if f.url.Value() != url || f.title.Value() != "" {
		return false
	}
	f.title.SetValue(title)
	return true
}

func formError(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyURL):
		return "URL is required."
	case errors.Is(err, model.ErrMalformedURL):
		return "URL is not valid."
	case errors.Is(err, model.ErrEmptyTitle):
		return "Title is required."
	default:
		return err.Error()
	}
}
