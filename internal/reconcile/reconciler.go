package reconcile

import (
	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/logger"
)

// ApplyEvent merges one change-feed event and reports whether the
// collection changed. Redelivered and out-of-order events are harmless.
func (e *Engine) ApplyEvent(ev feed.Event) bool {
	switch ev.Kind {
	case feed.Insert:
		return e.applyInsert(ev)
	case feed.Delete:
		return e.applyDelete(ev)
	default:
		e.log.Warn("unknown feed event", logger.String("kind", string(ev.Kind)))
		return false
	}
}

func (e *Engine) applyInsert(ev feed.Event) bool {
	if _, removing := e.pending[ev.Record.ID]; removing {
		return false
	}
	if err := ev.Record.Validate(); err != nil {
		e.log.Warn("dropping invalid feed record",
			logger.String("id", ev.Record.ID),
			logger.Err(err))
		return false
	}
	return e.items.InsertSorted(ev.Record)
}

func (e *Engine) applyDelete(ev feed.Event) bool {
	if p, removing := e.pending[ev.Record.ID]; removing {
		p.settled = true
		return false
	}
	_, _, ok := e.items.Remove(ev.Record.ID)
	return ok
}
