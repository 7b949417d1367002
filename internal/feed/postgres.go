package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
)

// PostgresChannel listens for notifications raised by the bookmarks table
// trigger. Each subscription holds its own connection because LISTEN is
// per session.
type PostgresChannel struct {
	dsn    string
	log    logger.Logger
	buffer int
}

func NewPostgresChannel(dsn string, log logger.Logger) *PostgresChannel {
	return &PostgresChannel{dsn: dsn, log: log, buffer: defaultBuffer}
}

func (c *PostgresChannel) Subscribe(ctx context.Context, scope Scope) (Subscription, error) {
	conn, err := pgx.Connect(ctx, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}

	topic := Topic(scope.Owner)
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{topic}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("listen %s: %w", topic, err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s := newStream(c.buffer, cancel)
	go c.pump(listenCtx, conn, s, scope)
	return s, nil
}

func (c *PostgresChannel) pump(ctx context.Context, conn *pgx.Conn, s *stream, scope Scope) {
	defer conn.Close(context.Background())

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.log.Warn("feed listener stopped",
					logger.String("session", scope.Session),
					logger.Err(err))
				s.fail(fmt.Errorf("%w: %v", ErrClosed, err))
			}
			return
		}

		ev, err := Decode([]byte(n.Payload))
		if err != nil {
			c.log.Warn("dropping feed payload",
				logger.String("session", scope.Session),
				logger.Err(err))
			s.fail(err)
			continue
		}
		if ev.Partial() {
			full, ok, err := loadRecord(ctx, conn, ev.Record.ID)
			if err != nil {
				c.log.Warn("reloading oversized feed record",
					logger.String("session", scope.Session),
					logger.String("id", ev.Record.ID),
					logger.Err(err))
				s.fail(err)
				continue
			}
			if !ok {
				// deleted before we got to it; the delete event follows
				continue
			}
			ev.Record = full
		}
		if !s.deliver(ev) {
			s.fail(ErrLagging)
		}
	}
}

// loadRecord fetches one row by id on the listening connection.
func loadRecord(ctx context.Context, conn *pgx.Conn, id string) (model.Bookmark, bool, error) {
	var b model.Bookmark
	err := conn.QueryRow(ctx,
		`SELECT id::text, title, url, created_at FROM bookmarks WHERE id::text = $1`, id,
	).Scan(&b.ID, &b.Title, &b.URL, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bookmark{}, false, nil
	}
	if err != nil {
		return model.Bookmark{}, false, fmt.Errorf("load %s: %w", id, err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, true, nil
}

// Publish issues pg_notify directly. The storage trigger already notifies
// on every write, so this is only needed for events that do not originate
// from the bookmarks table.
func (c *PostgresChannel) Publish(ctx context.Context, owner string, ev Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	conn, err := pgx.Connect(ctx, c.dsn)
	if err != nil {
		return fmt.Errorf("connect notifier: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "SELECT pg_notify($1, $2)", Topic(owner), string(data)); err != nil {
		return fmt.Errorf("notify %s: %w", Topic(owner), err)
	}
	return nil
}
