package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikbrunner/smartmark/internal/config"
	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/identity"
	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/metadata"
	"github.com/nikbrunner/smartmark/internal/storage"
)

// backend is everything a command needs, built from config.
type backend struct {
	cfg     *config.Config
	log     logger.Logger
	owner   string
	store   storage.Store
	feed    feed.Channel
	closers []func() error
}

// openBackend loads config and wires the store and feed it selects.
// logToFile sends logs to the configured file instead of stderr.
func openBackend(ctx context.Context, opts *RootOptions, logToFile bool) (*backend, error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logOpts := logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}
	if logToFile {
		logOpts.OutputPath = cfg.Log.File
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	id, err := identity.Resolve(ctx, cfg.Owner, cfg.Token, []byte(cfg.TokenSecret))
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	b := &backend{cfg: cfg, log: log.With(logger.String("owner", id.OwnerID)), owner: id.OwnerID}
	if err := b.wire(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backend) wire(ctx context.Context) error {
	var inner storage.Store
	switch b.cfg.Storage.Backend {
	case config.BackendPostgres:
		pg, err := storage.OpenPostgres(ctx, b.cfg.Storage.PostgresDSN, b.owner)
		if err != nil {
			return err
		}
		inner = pg
	default:
		s, err := storage.NewSQLiteStorage(storage.SQLiteParams{
			Path:    b.cfg.Storage.SQLitePath,
			OwnerID: b.owner,
		})
		if err != nil {
			return err
		}
		inner = s
	}
	b.closers = append(b.closers, inner.Close)

	switch b.cfg.Feed.Driver {
	case config.FeedRedis:
		client, err := feed.NewRedisClient(ctx, feed.RedisOptions{
			Addr:        b.cfg.Feed.Redis.Addr,
			Username:    b.cfg.Feed.Redis.Username,
			Password:    b.cfg.Feed.Redis.Password,
			DB:          b.cfg.Feed.Redis.DB,
			DialTimeout: b.cfg.Feed.Redis.DialTimeout,
		})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, client.Close)
		ch := feed.NewRedisChannel(client, b.log)
		b.store = storage.NewPublishing(inner, ch, b.owner, b.log)
		b.feed = ch

	case config.FeedPostgres:
		// The notify trigger publishes every write.
		b.store = inner
		b.feed = feed.NewPostgresChannel(b.cfg.Storage.PostgresDSN, b.log)

	default:
		hub := feed.NewHub(0)
		b.store = storage.NewPublishing(inner, hub, b.owner, b.log)
		b.feed = hub
	}

	b.log.Debug("backend ready",
		logger.String("storage", b.cfg.Storage.Backend),
		logger.String("feed", b.cfg.Feed.Driver))
	return nil
}

func (b *backend) fetcher() *metadata.Fetcher {
	return metadata.NewFetcher(metadata.Options{
		UserAgent: b.cfg.Metadata.UserAgent,
		Timeout:   b.cfg.Metadata.Timeout,
		Log:       b.log,
	})
}

// requestContext bounds one store call.
func (b *backend) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.cfg.Storage.Timeout)
}

// Close releases everything in reverse order of opening.
func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	if b.log != nil {
		_ = b.log.Sync()
	}
	return errors.Join(errs...)
}
