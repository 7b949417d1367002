package feed

import "sync"

// stream is the Subscription shared by every transport. Producers call
// deliver and fail; both are safe after close.
type stream struct {
	events chan Event
	errs   chan error

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	onStop func()
}

func newStream(buffer int, onStop func()) *stream {
	return &stream{
		events: make(chan Event, buffer),
		errs:   make(chan error, 4),
		done:   make(chan struct{}),
		onStop: onStop,
	}
}

func (s *stream) Events() <-chan Event { return s.events }
func (s *stream) Errors() <-chan error { return s.errs }

// deliver enqueues ev without blocking. It returns false when the buffer is
// full or the stream is closed.
func (s *stream) deliver(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// fail reports err without blocking; surplus errors are dropped.
func (s *stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.errs <- err:
	default:
	}
}

func (s *stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	close(s.events)
	close(s.errs)
	s.mu.Unlock()

	if s.onStop != nil {
		s.onStop()
	}
	return nil
}
