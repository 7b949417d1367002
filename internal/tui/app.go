// Package tui is the interactive dashboard. The bubbletea Update loop owns
// the reconcile.Engine; store calls, title fetches and feed reads run as
// commands and come back as messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/reconcile"
	"github.com/nikbrunner/smartmark/internal/search"
	"github.com/nikbrunner/smartmark/internal/tui/layout"
)

// Mode is the current input mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeAdd
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusError
	statusOK
)

const (
	msgCreateFailed = "Failed to add bookmark. Please try again."
	msgRemoveFailed = "Failed to delete bookmark."
	msgFeedStopped  = "Live updates stopped. Press R to reconnect."
	msgFeedLagging  = "Missed live updates. Press R to reload."
)

// Store is what the dashboard needs from the authoritative store.
type Store interface {
	reconcile.Store
	ListAll(ctx context.Context) ([]model.Bookmark, error)
}

// TitleFetcher looks up a page title for the add form.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, bool)
}

// App is the main bubbletea model for the dashboard.
type App struct {
	engine    *reconcile.Engine
	projector *search.Projector
	link      *feedLink

	store     Store
	channel   feed.Channel
	fetcher   TitleFetcher
	owner     string
	session   string
	log       logger.Logger
	timeout   time.Duration
	clipboard func(string) error
	openURL   func(string) error

	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode       Mode
	query      string
	filter     textinput.Model
	form       addForm
	connecting bool

	cursor     int
	selectedID string

	// For gg command
	lastKeyWasG bool

	status     string
	statusKind statusKind

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store Store
	Feed  feed.Channel
	Owner string
	// Initial is shown until the first snapshot after subscribing arrives.
	Initial []model.Bookmark
	Fetcher TitleFetcher
	Log     logger.Logger
	Timeout time.Duration

	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil

	Clipboard func(string) error // defaults to the system clipboard
	OpenURL   func(string) error // defaults to OpenURL
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	log := params.Log
	if log == nil {
		log = logger.Nop()
	}
	session := model.NewID()
	log = log.With(logger.String("session", session))

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	openFn := params.OpenURL
	if openFn == nil {
		openFn = OpenURL
	}

	filter := textinput.New()
	filter.Placeholder = "Filter..."
	filter.Prompt = "/"
	filter.CharLimit = cfg.Input.SearchCharLimit

	app := App{
		engine:       reconcile.NewEngine(params.Initial, log),
		projector:    &search.Projector{},
		link:         &feedLink{},
		store:        params.Store,
		channel:      params.Feed,
		fetcher:      params.Fetcher,
		owner:        params.Owner,
		session:      session,
		log:          log,
		timeout:      timeout,
		clipboard:    copyFn,
		openURL:      openFn,
		keys:         keys,
		styles:       styles,
		layoutConfig: cfg,
		filter:       filter,
		form:         newAddForm(cfg),
		connecting:   params.Store != nil,
		width:        80,
		height:       24,
	}
	app.syncSelection()
	return app
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.connectCmd()
}

// Unmount closes the feed subscription. Results that arrive afterwards are
// discarded. It is safe to call more than once.
func (a App) Unmount() {
	a.link.shutdown()
}

// Mode returns the current input mode.
func (a App) Mode() Mode { return a.mode }

// Cursor returns the index of the selected row.
func (a App) Cursor() int { return a.cursor }

// Query returns the active filter.
func (a App) Query() string { return a.query }

// Status returns the status line text.
func (a App) Status() string { return a.status }

// Session returns the id tagging this app's commands and feed scope.
func (a App) Session() string { return a.session }

// Visible returns the bookmarks currently shown.
func (a App) Visible() []model.Bookmark { return a.projection().Items }

// Selected returns the bookmark under the cursor.
func (a App) Selected() (model.Bookmark, bool) {
	if a.selectedID == "" {
		return model.Bookmark{}, false
	}
	return a.engine.Get(a.selectedID)
}

// WithDimensions returns a copy sized for a fixed terminal.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

func (a App) scope() feed.Scope {
	return feed.Scope{Owner: a.owner, Session: a.session}
}

func (a App) projection() search.Projection {
	return a.projector.Project(a.engine.Version(), a.engine.Bookmarks(), a.query)
}

// syncSelection keeps the cursor on the selected bookmark when rows move,
// or on the same row when the selected bookmark went away.
func (a *App) syncSelection() {
	items := a.projection().Items
	if len(items) == 0 {
		a.cursor, a.selectedID = 0, ""
		return
	}
	for i := range items {
		if items[i].ID == a.selectedID {
			a.cursor = i
			return
		}
	}
	if a.cursor >= len(items) {
		a.cursor = len(items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	a.selectedID = items[a.cursor].ID
}

func (a *App) moveTo(i int) {
	items := a.projection().Items
	if i < 0 || i >= len(items) {
		return
	}
	a.cursor, a.selectedID = i, items[i].ID
}

func (a *App) setStatus(kind statusKind, text string) {
	a.status, a.statusKind = text, kind
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case createDoneMsg:
		if msg.session != a.session {
			return a, nil
		}
		return a.handleCreateDone(msg.result)

	case removeDoneMsg:
		if msg.session != a.session {
			return a, nil
		}
		return a.handleRemoveDone(msg.result)

	case titleFetchedMsg:
		if msg.session != a.session || !msg.ok || a.mode != ModeAdd {
			return a, nil
		}
		a.form.applyTitle(msg.url, msg.title)
		return a, nil

	case feedConnectedMsg:
		if msg.session != a.session {
			return a, nil
		}
		return a.handleConnected(msg)

	case feedEventMsg:
		if msg.session != a.session || !a.link.current(msg.sub) {
			return a, nil
		}
		if a.engine.ApplyEvent(msg.event) {
			a.syncSelection()
		}
		return a, waitForFeed(a.session, msg.sub)

	case feedErrMsg:
		if msg.session != a.session || !a.link.current(msg.sub) {
			return a, nil
		}
		a.log.Warn("feed error", logger.Err(msg.err))
		switch {
		case errors.Is(msg.err, feed.ErrLagging):
			a.setStatus(statusError, msgFeedLagging)
		case errors.Is(msg.err, feed.ErrClosed):
			a.setStatus(statusError, msgFeedStopped)
		default:
			a.setStatus(statusError, fmt.Sprintf("Live update error: %v", msg.err))
		}
		return a, waitForFeed(a.session, msg.sub)

	case feedClosedMsg:
		if msg.session != a.session || !a.link.current(msg.sub) {
			return a, nil
		}
		a.link.detach()
		a.setStatus(statusError, msgFeedStopped)
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeAdd:
			return a.updateAdd(msg)
		case ModeFilter:
			return a.updateFilter(msg)
		default:
			return a.updateNormal(msg)
		}
	}

	// Cursor blink and friends go to whichever input is focused.
	var cmd tea.Cmd
	switch a.mode {
	case ModeFilter:
		a.filter, cmd = a.filter.Update(msg)
	case ModeAdd:
		cmd = a.updateFormInput(msg)
	}
	return a, cmd
}

func (a App) handleCreateDone(res reconcile.CreateResult) (tea.Model, tea.Cmd) {
	outcome := a.engine.ApplyCreate(res)
	a.form.submitting = false
	if outcome.Err != nil {
		a.setStatus(statusError, msgCreateFailed)
		return a, nil
	}

	a.form.reset()
	if a.mode == ModeAdd {
		a.mode = ModeNormal
	}
	a.selectedID = outcome.Record.ID
	a.syncSelection()
	a.setStatus(statusOK, "Added "+outcome.Record.Title)
	return a, nil
}

func (a App) handleRemoveDone(res reconcile.RemoveResult) (tea.Model, tea.Cmd) {
	outcome := a.engine.ApplyRemove(res)
	if outcome.Err != nil {
		a.setStatus(statusError, msgRemoveFailed)
	}
	if outcome.Restored {
		a.syncSelection()
	}
	return a, nil
}

func (a App) handleConnected(msg feedConnectedMsg) (tea.Model, tea.Cmd) {
	a.connecting = false
	if msg.err != nil {
		a.log.Warn("feed subscribe failed", logger.Err(msg.err))
		a.setStatus(statusError, msgFeedStopped)
	}

	var cmd tea.Cmd
	if msg.sub != nil {
		if !a.link.attach(msg.sub) {
			return a, nil
		}
		cmd = waitForFeed(a.session, msg.sub)
	}

	if msg.loadErr != nil {
		a.log.Warn("load bookmarks failed", logger.Err(msg.loadErr))
		a.setStatus(statusError, "Failed to load bookmarks.")
		return a, cmd
	}
	a.engine.Reset(msg.items)
	a.syncSelection()
	if msg.err == nil && a.statusKind == statusInfo {
		a.setStatus(statusInfo, "")
	}
	return a, cmd
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.moveTo(0)
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.Unmount()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.moveTo(a.cursor + 1)

	case key.Matches(msg, a.keys.Up):
		a.moveTo(a.cursor - 1)

	case key.Matches(msg, a.keys.Bottom):
		a.moveTo(len(a.projection().Items) - 1)

	case key.Matches(msg, a.keys.Open):
		if b, ok := a.Selected(); ok {
			if err := a.openURL(b.URL); err != nil {
				a.log.Warn("open url failed", logger.String("url", b.URL), logger.Err(err))
				a.setStatus(statusError, "Failed to open browser.")
			} else {
				a.setStatus(statusInfo, "Opened "+b.DisplayURL())
			}
		}

	case key.Matches(msg, a.keys.YankURL):
		if b, ok := a.Selected(); ok {
			if err := a.clipboard(b.URL); err != nil {
				a.setStatus(statusError, "Failed to copy URL.")
			} else {
				a.setStatus(statusOK, "Copied "+b.DisplayURL())
			}
		}

	case key.Matches(msg, a.keys.Delete):
		b, ok := a.Selected()
		if !ok {
			return a, nil
		}
		ticket, ok := a.engine.BeginRemove(b.ID)
		if !ok {
			return a, nil
		}
		a.syncSelection()
		return a, a.removeCmd(ticket)

	case key.Matches(msg, a.keys.Add):
		a.mode = ModeAdd
		a.form.err = ""
		if !a.form.submitting {
			a.form.focusField(fieldURL)
		}
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filter.SetValue(a.query)
		a.filter.CursorEnd()
		a.filter.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Cancel):
		if a.query != "" {
			a.query = ""
			a.filter.Reset()
			a.syncSelection()
		}

	case key.Matches(msg, a.keys.Reload):
		if a.connecting || a.store == nil {
			return a, nil
		}
		a.link.detach()
		a.connecting = true
		a.setStatus(statusInfo, "Reloading...")
		return a, a.connectCmd()
	}

	return a, nil
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.query = ""
		a.filter.Reset()
		a.filter.Blur()
		a.mode = ModeNormal
		a.syncSelection()
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		a.filter.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.filter, cmd = a.filter.Update(msg)
	if q := a.filter.Value(); q != a.query {
		a.query = q
		a.syncSelection()
	}
	return a, cmd
}

func (a App) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Cancel) {
		a.mode = ModeNormal
		a.form.url.Blur()
		a.form.title.Blur()
		return a, nil
	}
	// The submitted values stay put until the store answers.
	if a.form.submitting {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.NextItem):
		if a.form.focus == fieldURL {
			url, fetch := a.form.blurURL()
			a.form.focusField(fieldTitle)
			if fetch {
				return a, a.fetchTitleCmd(url)
			}
			return a, nil
		}
		a.form.focusField(fieldURL)
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		if a.form.focus == fieldURL {
			a.form.url.SetValue(model.NormalizeURL(a.form.url.Value()))
		}
		req, err := a.engine.PrepareCreate(a.form.title.Value(), a.form.url.Value())
		if err != nil {
			a.form.err = formError(err)
			return a, nil
		}
		a.form.err = ""
		a.form.submitting = true
		return a, a.createCmd(req)
	}

	return a, a.updateFormInput(msg)
}

func (a *App) updateFormInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if a.form.focus == fieldURL {
		a.form.url, cmd = a.form.url.Update(msg)
	} else {
		a.form.title, cmd = a.form.title.Update(msg)
	}
	return cmd
}
