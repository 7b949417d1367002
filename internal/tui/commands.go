package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/reconcile"
)

// Every message produced by a command carries the session that issued it.
// Messages from another session are dropped.

type createDoneMsg struct {
	session string
	result  reconcile.CreateResult
}

type removeDoneMsg struct {
	session string
	result  reconcile.RemoveResult
}

type titleFetchedMsg struct {
	session string
	url     string
	title   string
	ok      bool
}

// feedConnectedMsg reports a new subscription followed by a fresh snapshot.
type feedConnectedMsg struct {
	session string
	sub     feed.Subscription
	items   []model.Bookmark
	err     error
	loadErr error
}

type feedEventMsg struct {
	session string
	sub     feed.Subscription
	event   feed.Event
}

type feedErrMsg struct {
	session string
	sub     feed.Subscription
	err     error
}

type feedClosedMsg struct {
	session string
	sub     feed.Subscription
}

func (a App) createCmd(req reconcile.CreateRequest) tea.Cmd {
	store, session, timeout := a.store, a.session, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return createDoneMsg{session: session, result: reconcile.PerformCreate(ctx, store, req)}
	}
}

func (a App) removeCmd(ticket reconcile.RemoveTicket) tea.Cmd {
	store, session, timeout := a.store, a.session, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return removeDoneMsg{session: session, result: reconcile.PerformRemove(ctx, store, ticket)}
	}
}

func (a App) fetchTitleCmd(url string) tea.Cmd {
	if a.fetcher == nil {
		return nil
	}
	fetcher, session, timeout := a.fetcher, a.session, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		title, ok := fetcher.FetchTitle(ctx, url)
		return titleFetchedMsg{session: session, url: url, title: title, ok: ok}
	}
}

// connectCmd subscribes before loading so writes made in between arrive as
// events; the engine absorbs the duplicates. A failed subscribe still loads.
func (a App) connectCmd() tea.Cmd {
	if a.store == nil {
		return nil
	}
	channel, store, scope, timeout := a.channel, a.store, a.scope(), a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		msg := feedConnectedMsg{session: scope.Session}
		if channel != nil {
			msg.sub, msg.err = channel.Subscribe(ctx, scope)
		}
		msg.items, msg.loadErr = store.ListAll(ctx)
		return msg
	}
}

// waitForFeed reads the next event or error from sub. It is issued again
// after every message it produces.
func waitForFeed(session string, sub feed.Subscription) tea.Cmd {
	return func() tea.Msg {
		events, errs := sub.Events(), sub.Errors()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return feedClosedMsg{session: session, sub: sub}
				}
				return feedEventMsg{session: session, sub: sub, event: ev}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				return feedErrMsg{session: session, sub: sub, err: err}
			}
		}
	}
}

// feedLink holds the live subscription. App is copied on every Update, so
// all copies share one link.
type feedLink struct {
	mu     sync.Mutex
	sub    feed.Subscription
	closed bool
}

// attach makes sub current, closing any previous one. After shutdown sub is
// closed immediately and attach returns false.
func (l *feedLink) attach(sub feed.Subscription) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		_ = sub.Close()
		return false
	}
	if l.sub != nil && l.sub != sub {
		_ = l.sub.Close()
	}
	l.sub = sub
	return true
}

func (l *feedLink) current(sub feed.Subscription) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && sub != nil && l.sub == sub
}

func (l *feedLink) detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		_ = l.sub.Close()
		l.sub = nil
	}
}

func (l *feedLink) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.sub != nil {
		_ = l.sub.Close()
		l.sub = nil
	}
}

// defaultTimeout bounds store calls when AppParams leaves Timeout unset.
const defaultTimeout = 10 * time.Second
