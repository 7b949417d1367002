// Package dashboard runs a headless dashboard session: one goroutine owns
// the reconcile.Engine and every mutation, whether local or from the feed,
// is posted to it as a closure.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/reconcile"
	"github.com/nikbrunner/smartmark/internal/search"
)

var ErrUnmounted = errors.New("dashboard: view unmounted")

// Store is what a view needs from the authoritative store.
type Store interface {
	reconcile.Store
	ListAll(ctx context.Context) ([]model.Bookmark, error)
}

// Params holds parameters for Mount.
type Params struct {
	Store   Store
	Feed    feed.Channel
	Owner   string
	Log     logger.Logger
	Timeout time.Duration
}

// View is one mounted dashboard.
type View struct {
	store   Store
	channel feed.Channel
	scope   feed.Scope
	log     logger.Logger
	timeout time.Duration

	mailbox chan func()
	done    chan struct{}
	once    sync.Once

	changes  chan search.Projection
	warnings chan error

	// Touched only on the loop goroutine.
	engine    *reconcile.Engine
	query     string
	projector search.Projector

	subMu sync.Mutex
	sub   feed.Subscription
}

// Mount loads the owner's bookmarks, subscribes to the feed and starts the
// session loop.
func Mount(ctx context.Context, p Params) (*View, error) {
	if p.Log == nil {
		p.Log = logger.Nop()
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}

	v := &View{
		store:    p.Store,
		channel:  p.Feed,
		scope:    feed.Scope{Owner: p.Owner, Session: model.NewID()},
		timeout:  p.Timeout,
		mailbox:  make(chan func()),
		done:     make(chan struct{}),
		changes:  make(chan search.Projection, 1),
		warnings: make(chan error, 8),
	}
	v.log = p.Log.With(logger.String("session", v.scope.Session))

	// Subscribe before loading so nothing written in between is missed;
	// duplicates are absorbed by the engine.
	sub, err := v.channel.Subscribe(ctx, v.scope)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, v.timeout)
	initial, err := v.store.ListAll(loadCtx)
	cancel()
	if err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}

	v.engine = reconcile.NewEngine(initial, v.log)
	v.sub = sub

	go v.run()
	go v.pump(sub)
	v.post(v.notify)

	v.log.Info("dashboard mounted", logger.Int("bookmarks", len(initial)))
	return v, nil
}

func (v *View) run() {
	for {
		select {
		case fn := <-v.mailbox:
			select {
			case <-v.done:
				return
			default:
				fn()
			}
		case <-v.done:
			return
		}
	}
}

// post hands fn to the loop. It returns false once the view is unmounted.
func (v *View) post(fn func()) bool {
	select {
	case v.mailbox <- fn:
		return true
	case <-v.done:
		return false
	}
}

// call runs fn on the loop and waits for it to finish.
func (v *View) call(fn func()) bool {
	ran := make(chan struct{})
	if !v.post(func() { fn(); close(ran) }) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-v.done:
		return false
	}
}

func (v *View) pump(sub feed.Subscription) {
	events, errs := sub.Events(), sub.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			v.post(func() {
				if v.engine.ApplyEvent(ev) {
					v.notify()
				}
			})
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			v.log.Warn("feed error", logger.Err(err))
			v.warn(err)
		case <-v.done:
			return
		}
	}
}

// notify publishes the current projection. Only the newest projection is
// kept for slow readers.
func (v *View) notify() {
	p := v.projector.Project(v.engine.Version(), v.engine.Bookmarks(), v.query)
	select {
	case <-v.changes:
	default:
	}
	select {
	case v.changes <- p:
	default:
	}
}

func (v *View) warn(err error) {
	select {
	case v.warnings <- err:
	default:
	}
}

// Changes delivers the newest projection after every visible change.
func (v *View) Changes() <-chan search.Projection { return v.changes }

// Warnings delivers non-fatal errors: feed failures and failed writes.
func (v *View) Warnings() <-chan error { return v.warnings }

// Session returns the feed session id of this mount.
func (v *View) Session() string { return v.scope.Session }

// Create validates and submits a new bookmark. The returned channel yields
// exactly one outcome.
func (v *View) Create(title, rawURL string) <-chan reconcile.CreateOutcome {
	out := make(chan reconcile.CreateOutcome, 1)

	// PrepareCreate reads no engine state, so it can run on the caller.
	req, err := v.engine.PrepareCreate(title, rawURL)
	if err != nil {
		out <- reconcile.CreateOutcome{Err: err}
		return out
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
		res := reconcile.PerformCreate(ctx, v.store, req)
		cancel()

		ok := v.post(func() {
			outcome := v.engine.ApplyCreate(res)
			if outcome.Err != nil {
				v.warn(outcome.Err)
			} else if outcome.Inserted {
				v.notify()
			}
			out <- outcome
		})
		if !ok {
			out <- reconcile.CreateOutcome{Err: ErrUnmounted, Request: req}
		}
	}()
	return out
}

// Remove deletes id optimistically. The returned channel yields exactly one
// outcome; removing an absent id yields an empty outcome immediately.
func (v *View) Remove(id string) <-chan reconcile.RemoveOutcome {
	out := make(chan reconcile.RemoveOutcome, 1)

	ok := v.post(func() {
		ticket, ok := v.engine.BeginRemove(id)
		if !ok {
			out <- reconcile.RemoveOutcome{ID: id}
			return
		}
		v.notify()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
			res := reconcile.PerformRemove(ctx, v.store, ticket)
			cancel()

			posted := v.post(func() {
				outcome := v.engine.ApplyRemove(res)
				if outcome.Err != nil {
					v.warn(outcome.Err)
				}
				if outcome.Restored {
					v.notify()
				}
				out <- outcome
			})
			if !posted {
				out <- reconcile.RemoveOutcome{ID: id, Err: ErrUnmounted}
			}
		}()
	})
	if !ok {
		out <- reconcile.RemoveOutcome{ID: id, Err: ErrUnmounted}
	}
	return out
}

// SetQuery changes the filter.
func (v *View) SetQuery(q string) {
	v.post(func() {
		if v.query == q {
			return
		}
		v.query = q
		v.notify()
	})
}

// Snapshot returns the current projection.
func (v *View) Snapshot() (search.Projection, error) {
	var p search.Projection
	if !v.call(func() {
		p = v.projector.Project(v.engine.Version(), v.engine.Bookmarks(), v.query)
	}) {
		return search.Projection{}, ErrUnmounted
	}
	return p, nil
}

// Resubscribe replaces the feed subscription and reloads from the store,
// for use after the feed reported it stopped.
func (v *View) Resubscribe(ctx context.Context) error {
	v.subMu.Lock()
	defer v.subMu.Unlock()

	select {
	case <-v.done:
		return ErrUnmounted
	default:
	}

	if v.sub != nil {
		_ = v.sub.Close()
	}
	sub, err := v.channel.Subscribe(ctx, v.scope)
	if err != nil {
		v.sub = nil
		return fmt.Errorf("subscribe: %w", err)
	}
	v.sub = sub
	go v.pump(sub)

	loadCtx, cancel := context.WithTimeout(ctx, v.timeout)
	snapshot, err := v.store.ListAll(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("reload bookmarks: %w", err)
	}
	if !v.post(func() {
		v.engine.Reset(snapshot)
		v.notify()
	}) {
		return ErrUnmounted
	}
	return nil
}

// Unmount stops the loop and closes the feed subscription. It is safe to
// call more than once.
func (v *View) Unmount() {
	v.once.Do(func() {
		close(v.done)

		v.subMu.Lock()
		if v.sub != nil {
			_ = v.sub.Close()
			v.sub = nil
		}
		v.subMu.Unlock()

		v.log.Info("dashboard unmounted")
	})
}
