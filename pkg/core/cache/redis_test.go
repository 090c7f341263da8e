package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set REDIS_ADDRESS (e.g. "localhost:6379") to run these against a live server.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}
	return addr
}

func newTestRedisCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	addr := skipIfNoRedis(t)

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.FlushDB(ctx).Err())
	_ = client.Close()

	c, err := New("redis", ProviderConfig{RedisAddress: addr, RedisDB: 15, TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	c := newTestRedisCache(t, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", []byte("v"))
	val, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(val))
	assert.True(t, c.Contains("k"))
	assert.Equal(t, 1, c.Len())

	c.Delete("k")
	assert.False(t, c.Contains("k"))
}

func TestRedisCache_TTL(t *testing.T) {
	c := newTestRedisCache(t, 50*time.Millisecond)

	c.Set("k", []byte("v"))
	assert.Eventually(t, func() bool { return !c.Contains("k") }, 2*time.Second, 20*time.Millisecond)
}

func TestRedisCache_PingFailure(t *testing.T) {
	_, err := New("redis", ProviderConfig{RedisAddress: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
