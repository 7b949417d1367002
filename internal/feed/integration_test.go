package feed_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/smartmark/internal/feed"
	"github.com/nikbrunner/smartmark/internal/logger"
	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/storage"
)

func TestRedisChannel_Integration(t *testing.T) {
	addr := os.Getenv("SMARTMARK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SMARTMARK_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := feed.NewRedisClient(ctx, feed.RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	ch := feed.NewRedisChannel(client, logger.Nop())
	owner := "it-" + model.NewID()
	sub, err := ch.Subscribe(ctx, feed.Scope{Owner: owner, Session: model.NewID()})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, ch.Publish(ctx, owner, feed.Event{Kind: feed.Insert, Record: record("r1")}))
	assert.Equal(t, "r1", receive(t, sub).Record.ID)
}

func TestPostgresChannel_Integration(t *testing.T) {
	dsn := os.Getenv("SMARTMARK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SMARTMARK_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch := feed.NewPostgresChannel(dsn, logger.Nop())
	owner := "it-" + model.NewID()
	sub, err := ch.Subscribe(ctx, feed.Scope{Owner: owner, Session: model.NewID()})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, ch.Publish(ctx, owner, feed.Event{Kind: feed.Delete, Record: record("r2")}))
	ev := receive(t, sub)
	assert.Equal(t, feed.Delete, ev.Kind)
	assert.Equal(t, "r2", ev.Record.ID)
}

func TestPostgresChannel_TriggerHandlesLongOwnerAndOversizedRow(t *testing.T) {
	dsn := os.Getenv("SMARTMARK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SMARTMARK_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner := "google-oauth2|" + strings.Repeat("9", 60) + "-" + model.NewID()
	store, err := storage.OpenPostgres(ctx, dsn, owner)
	require.NoError(t, err)
	defer store.Close()

	ch := feed.NewPostgresChannel(dsn, logger.Nop())
	sub, err := ch.Subscribe(ctx, feed.Scope{Owner: owner, Session: model.NewID()})
	require.NoError(t, err)
	defer sub.Close()

	url := "https://example.com/?q=" + strings.Repeat("x", 9000)
	created, err := store.Insert(ctx, "Huge", url)
	require.NoError(t, err)

	ev := receive(t, sub)
	assert.Equal(t, feed.Insert, ev.Kind)
	assert.Equal(t, created.ID, ev.Record.ID)
	assert.Equal(t, url, ev.Record.URL)
	assert.False(t, ev.Partial())

	require.NoError(t, store.Delete(ctx, created.ID))
	ev = receive(t, sub)
	assert.Equal(t, feed.Delete, ev.Kind)
	assert.Equal(t, created.ID, ev.Record.ID)
}
