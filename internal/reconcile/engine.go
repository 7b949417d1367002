// Package reconcile keeps a dashboard's bookmark collection consistent with
// the authoritative store while local writes are in flight and remote
// changes arrive on the feed.
//
// Every mutation is split in two: a synchronous step that touches the
// collection, and a store call that touches nothing. Callers run the store
// call wherever they like (a goroutine, a tea.Cmd) and hand its result back
// to the synchronous Apply step on the goroutine that owns the Engine.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
)

var (
	ErrCreateFailed = errors.New("failed to add bookmark")
	ErrRemoveFailed = errors.New("failed to delete bookmark")
)

// Store is the part of the authoritative store the engine drives.
type Store interface {
	Insert(ctx context.Context, title, url string) (model.Bookmark, error)
	Delete(ctx context.Context, id string) error
}

// Engine owns a Collection. It is not safe for concurrent use.
type Engine struct {
	items   *model.Collection
	pending map[string]*pendingRemove
	log     logger.Logger
	// base carries the version across Reset so it never goes backwards.
	base uint64
}

type pendingRemove struct {
	record model.Bookmark
	index  int
	prev   string
	next   string
	// settled is set once the feed confirms the delete; a late store
	// failure must not bring the record back.
	settled bool
}

// NewEngine seeds the collection with a store snapshot.
func NewEngine(initial []model.Bookmark, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		items:   model.NewCollection(initial),
		pending: make(map[string]*pendingRemove),
		log:     log,
	}
}

// Reset replaces the collection, e.g. after a reload. In-flight removes are
// forgotten.
func (e *Engine) Reset(snapshot []model.Bookmark) {
	e.base += e.items.Version() + 1
	e.items = model.NewCollection(snapshot)
	e.pending = make(map[string]*pendingRemove)
}

func (e *Engine) Bookmarks() []model.Bookmark { return e.items.Bookmarks() }
func (e *Engine) Len() int                    { return e.items.Len() }

// Version increases on every change to the collection, including Reset.
func (e *Engine) Version() uint64 { return e.base + e.items.Version() }

func (e *Engine) Get(id string) (model.Bookmark, bool) { return e.items.Get(id) }

// At returns the bookmark currently at index i.
func (e *Engine) At(i int) (model.Bookmark, bool) { return e.items.At(i) }

// Pending reports whether a remove for id awaits the store.
func (e *Engine) Pending(id string) bool {
	_, ok := e.pending[id]
	return ok
}

// CreateRequest is a validated create waiting for the store.
type CreateRequest struct {
	Title string
	URL   string
}

// CreateResult is what the store returned for a CreateRequest.
type CreateResult struct {
	Request CreateRequest
	Record  model.Bookmark
	Err     error
}

// CreateOutcome is the effect of ApplyCreate.
type CreateOutcome struct {
	Record model.Bookmark
	// Inserted is false when the feed delivered the record first.
	Inserted bool
	// Err wraps ErrCreateFailed. Request is kept so the form can be
	// offered again.
	Err     error
	Request CreateRequest
}

// PrepareCreate validates and normalizes form input. Nothing changes.
func (e *Engine) PrepareCreate(title, rawURL string) (CreateRequest, error) {
	in, err := model.ValidateInput(title, rawURL)
	if err != nil {
		return CreateRequest{}, err
	}
	return CreateRequest{Title: in.Title, URL: in.URL}, nil
}

// PerformCreate calls the store. It never touches an Engine and may run on
// any goroutine.
func PerformCreate(ctx context.Context, store Store, req CreateRequest) CreateResult {
	b, err := store.Insert(ctx, req.Title, req.URL)
	return CreateResult{Request: req, Record: b, Err: err}
}

// ApplyCreate merges a store result. A confirmed record is placed by
// created_at exactly like a feed insert, so the two arrival orders converge;
// the newest record lands at the head. Known ids are left alone.
func (e *Engine) ApplyCreate(res CreateResult) CreateOutcome {
	if res.Err != nil {
		e.log.Warn("create failed", logger.String("url", res.Request.URL), logger.Err(res.Err))
		return CreateOutcome{Err: fmt.Errorf("%w: %w", ErrCreateFailed, res.Err), Request: res.Request}
	}
	if err := res.Record.Validate(); err != nil {
		e.log.Error("store returned invalid record", logger.String("id", res.Record.ID), logger.Err(err))
		return CreateOutcome{Err: fmt.Errorf("%w: %w", ErrCreateFailed, err), Request: res.Request}
	}

	inserted := e.items.InsertSorted(res.Record)
	e.log.Debug("create confirmed",
		logger.String("id", res.Record.ID),
		logger.Bool("inserted", inserted))
	return CreateOutcome{Record: res.Record, Inserted: inserted, Request: res.Request}
}

// RemoveTicket identifies an optimistic remove awaiting the store.
type RemoveTicket struct {
	ID string
}

// RemoveResult is what the store returned for a RemoveTicket.
type RemoveResult struct {
	Ticket RemoveTicket
	Err    error
}

// RemoveOutcome is the effect of ApplyRemove.
type RemoveOutcome struct {
	ID       string
	Restored bool
	// Err wraps ErrRemoveFailed.
	Err error
}

// BeginRemove drops id from the collection immediately. It returns false,
// and the caller must not call the store, when id is absent.
func (e *Engine) BeginRemove(id string) (RemoveTicket, bool) {
	prev, next := e.items.Neighbors(id)
	record, index, ok := e.items.Remove(id)
	if !ok {
		return RemoveTicket{}, false
	}
	e.pending[id] = &pendingRemove{record: record, index: index, prev: prev, next: next}
	return RemoveTicket{ID: id}, true
}

// PerformRemove calls the store. It never touches an Engine.
func PerformRemove(ctx context.Context, store Store, t RemoveTicket) RemoveResult {
	return RemoveResult{Ticket: t, Err: store.Delete(ctx, t.ID)}
}

// ApplyRemove settles an optimistic remove. On failure the record returns
// to where it was, relative to its old neighbours.
func (e *Engine) ApplyRemove(res RemoveResult) RemoveOutcome {
	id := res.Ticket.ID
	p, ok := e.pending[id]
	if !ok {
		return RemoveOutcome{ID: id, Err: wrapRemoveErr(res.Err)}
	}
	delete(e.pending, id)

	if res.Err == nil {
		return RemoveOutcome{ID: id}
	}

	e.log.Warn("remove failed", logger.String("id", id), logger.Err(res.Err))
	if p.settled {
		return RemoveOutcome{ID: id, Err: wrapRemoveErr(res.Err)}
	}
	restored := e.items.InsertAt(e.restoreIndex(p), p.record)
	return RemoveOutcome{ID: id, Restored: restored, Err: wrapRemoveErr(res.Err)}
}

func (e *Engine) restoreIndex(p *pendingRemove) int {
	if p.next != "" {
		if i := e.items.IndexOf(p.next); i >= 0 {
			return i
		}
	}
	if p.prev != "" {
		if i := e.items.IndexOf(p.prev); i >= 0 {
			return i + 1
		}
	}
	return p.index
}

func wrapRemoveErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRemoveFailed, err)
}
