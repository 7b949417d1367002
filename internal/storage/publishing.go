package storage

import (
	"context"

	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
)

// Publishing decorates a Store so that every successful write is announced
// on a feed. Publish failures are logged; the write itself already
// happened and is reported as a success.
type Publishing struct {
	Store
	pub   feed.Publisher
	owner string
	log   logger.Logger
}

func NewPublishing(inner Store, pub feed.Publisher, owner string, log logger.Logger) *Publishing {
	return &Publishing{Store: inner, pub: pub, owner: owner, log: log}
}

func (p *Publishing) Insert(ctx context.Context, title, url string) (model.Bookmark, error) {
	b, err := p.Store.Insert(ctx, title, url)
	if err != nil {
		return b, err
	}
	p.publish(ctx, feed.Event{Kind: feed.Insert, Record: b})
	return b, nil
}

func (p *Publishing) Delete(ctx context.Context, id string) error {
	if err := p.Store.Delete(ctx, id); err != nil {
		return err
	}
	p.publish(ctx, feed.Event{Kind: feed.Delete, Record: model.Bookmark{ID: id}})
	return nil
}

func (p *Publishing) publish(ctx context.Context, ev feed.Event) {
	if err := p.pub.Publish(ctx, p.owner, ev); err != nil {
		p.log.Warn("publish change failed",
			logger.String("kind", string(ev.Kind)),
			logger.String("id", ev.Record.ID),
			logger.Err(err))
	}
}
