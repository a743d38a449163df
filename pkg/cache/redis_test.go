package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), RedisOptions{
		URL: fmt.Sprintf("redis://%s", mr.Addr()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	c, _ := setupRedis(t)
	exercise(t, c)
}

func TestRedisCachePrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedis(t)

	require.NoError(t, c.Set(ctx, "stage:merge:abc", []byte("table"), time.Minute))
	assert.True(t, mr.Exists("aagen:stage:merge:abc"))
	assert.Equal(t, time.Minute, mr.TTL("aagen:stage:merge:abc"))

	mr.FastForward(2 * time.Minute)
	_, hit, err := c.Get(ctx, "stage:merge:abc")
	require.NoError(t, err)
	assert.False(t, hit, "expired key should miss")
}

func TestRedisCacheConnectionErrors(t *testing.T) {
	t.Run("invalid URL", func(t *testing.T) {
		_, err := NewRedisCache(context.Background(), RedisOptions{URL: "invalid://url"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Redis URL")
	})

	t.Run("unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisCache(context.Background(), RedisOptions{
			URL:            fmt.Sprintf("redis://%s", addr),
			ConnectTimeout: 200 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), Options{
		Backend: BackendRedis,
		Redis:   RedisOptions{URL: fmt.Sprintf("redis://%s", mr.Addr()), Prefix: "test:"},
	})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("test:k"))
}
