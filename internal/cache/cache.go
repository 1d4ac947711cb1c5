package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Loader produces the value to cache on a miss.
type Loader func(ctx context.Context) (any, error)

// Cache is a read-through cache over Redis. Entries are the exact JSON bytes
// served on the first miss and are never invalidated by writes; they only
// expire after the configured TTL.
type Cache struct {
	client   redis.UniversalClient
	ttl      time.Duration
	failOpen bool
	logger   *slog.Logger
}

type Option func(*Cache)

// WithFailOpen makes backend errors bypass the cache instead of failing the request.
func WithFailOpen(enabled bool) Option {
	return func(c *Cache) { c.failOpen = enabled }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func New(client redis.UniversalClient, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{client: client, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Remember returns the cached bytes for key, or runs load, stores its JSON
// encoding under key and returns those same bytes.
func (c *Cache) Remember(ctx context.Context, key string, load Loader) ([]byte, error) {
	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		if !c.failOpen {
			return nil, fmt.Errorf("cache get %s: %w", key, err)
		}
		c.logger.Warn("cache unavailable, reading through", "key", key, "error", err)
		return c.load(ctx, load)
	}

	data, err := c.load(ctx, load)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		if !c.failOpen {
			return nil, fmt.Errorf("cache set %s: %w", key, err)
		}
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}

	return data, nil
}

func (c *Cache) load(ctx context.Context, load Loader) ([]byte, error) {
	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache value: %w", err)
	}
	return data, nil
}
