package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0").
	URL string
	// Prefix is prepended to every key. Defaults to "aagen:".
	Prefix string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// RedisCache stores checkpoints in Redis, so several machines can share
// stage results.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = "aagen:"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client, prefix: opts.Prefix}, nil
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		v, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = v
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a value. A ttl of zero keeps it until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := RetryWithBackoff(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error { return c.client.Close() }

// classify marks network failures as retryable.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
