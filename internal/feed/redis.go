package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/smartmark/internal/logger"
)

// RedisOptions configures the Redis client used for pub/sub.
type RedisOptions struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
	PingTimeout time.Duration
}

// RedisChannel carries events over Redis PUBLISH/SUBSCRIBE, one channel
// per owner.
type RedisChannel struct {
	client *redis.Client
	log    logger.Logger
	buffer int
}

// NewRedisClient connects and pings once. There is no reconnect loop;
// a failed ping is returned to the caller.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Username:    opts.Username,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// NewRedisChannel wraps an existing client. The caller keeps ownership of
// client.
func NewRedisChannel(client *redis.Client, log logger.Logger) *RedisChannel {
	return &RedisChannel{client: client, log: log, buffer: defaultBuffer}
}

// Subscribe registers with Redis and waits for the subscription to be
// confirmed, so events published after it returns are not missed.
func (c *RedisChannel) Subscribe(ctx context.Context, scope Scope) (Subscription, error) {
	topic := Topic(scope.Owner)
	ps := c.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	s := newStream(c.buffer, func() { _ = ps.Close() })
	go c.pump(ps.Channel(), s, scope)
	return s, nil
}

func (c *RedisChannel) pump(msgs <-chan *redis.Message, s *stream, scope Scope) {
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				s.fail(ErrClosed)
				return
			}
			ev, err := Decode([]byte(msg.Payload))
			if err != nil {
				c.log.Warn("dropping feed payload",
					logger.String("session", scope.Session),
					logger.Err(err))
				s.fail(err)
				continue
			}
			if !s.deliver(ev) {
				s.fail(ErrLagging)
			}
		}
	}
}

func (c *RedisChannel) Publish(ctx context.Context, owner string, ev Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := c.client.Publish(ctx, Topic(owner), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", Topic(owner), err)
	}
	return nil
}
