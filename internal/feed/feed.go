// Package feed delivers insert and delete notifications for one owner's
// bookmarks to every mounted dashboard session.
package feed

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"

	"github.com/nikbrunner/smartmark/internal/model"
)

var (
	ErrSessionInUse = errors.New("feed: session already subscribed")
	ErrClosed       = errors.New("feed: channel closed")
	ErrLagging      = errors.New("feed: subscriber too slow, event dropped")
	ErrBadPayload   = errors.New("feed: undecodable payload")
)

// Kind is the type of change.
type Kind string

const (
	Insert Kind = "insert"
	Delete Kind = "delete"
)

// Event is one change to an owner's bookmarks. For deletes only Record.ID
// is meaningful.
type Event struct {
	Kind   Kind           `json:"kind"`
	Record model.Bookmark `json:"record"`
}

// Scope identifies one subscription. Session is unique per mounted view so
// remounts never share a subscription.
type Scope struct {
	Owner   string
	Session string
}

// Subscription is a live stream of events. Close is idempotent and
// closes both channels.
type Subscription interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// Channel opens subscriptions.
type Channel interface {
	Subscribe(ctx context.Context, scope Scope) (Subscription, error)
}

// Publisher fans an event out to an owner's subscribers.
type Publisher interface {
	Publish(ctx context.Context, owner string, ev Event) error
}

// Topic is the transport channel name for owner. It is a fixed 42 bytes
// regardless of owner so it stays under the Postgres identifier limit, and
// matches 'smartmark_' || md5(owner_id) in the notify trigger.
func Topic(owner string) string {
	sum := md5.Sum([]byte(owner))
	return "smartmark_" + hex.EncodeToString(sum[:])
}

// Partial reports whether an insert arrived without its record fields,
// which the Postgres trigger does for rows too large to notify in full.
// Deletes only ever need the id.
func (ev Event) Partial() bool {
	return ev.Kind == Insert && (ev.Record.URL == "" || ev.Record.CreatedAt.IsZero())
}
