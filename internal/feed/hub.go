package feed

import (
	"context"
	"sync"
)

const defaultBuffer = 64

// Hub is an in-process Channel and Publisher. It serves a single machine:
// several views in one process, or tests.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[string]*stream // owner -> session -> stream
	buffer int
}

// NewHub returns a Hub whose subscribers buffer up to buffer events.
// Non-positive values use a default.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[string]map[string]*stream), buffer: buffer}
}

func (h *Hub) Subscribe(ctx context.Context, scope Scope) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.subs[scope.Owner]
	if !ok {
		sessions = make(map[string]*stream)
		h.subs[scope.Owner] = sessions
	}
	if _, taken := sessions[scope.Session]; taken {
		return nil, ErrSessionInUse
	}

	var s *stream
	s = newStream(h.buffer, func() { h.drop(scope, s) })
	sessions[scope.Session] = s
	return s, nil
}

func (h *Hub) drop(scope Scope, s *stream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessions, ok := h.subs[scope.Owner]; ok && sessions[scope.Session] == s {
		delete(sessions, scope.Session)
		if len(sessions) == 0 {
			delete(h.subs, scope.Owner)
		}
	}
}

// Publish delivers ev to every session of owner. A subscriber whose buffer
// is full loses the event and receives ErrLagging instead.
func (h *Hub) Publish(ctx context.Context, owner string, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	targets := make([]*stream, 0, len(h.subs[owner]))
	for _, s := range h.subs[owner] {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if !s.deliver(ev) {
			s.fail(ErrLagging)
		}
	}
	return nil
}

// Sessions returns the number of live subscriptions for owner.
func (h *Hub) Sessions(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}
