package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := New("sqlite", ProviderConfig{Path: path})
	require.NoError(t, err)

	c.Set("k", []byte("v1"))
	c.Set("k", []byte("v2"))
	c.Set("gone", []byte("x"))
	c.Delete("gone")

	val, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", string(val))
	assert.False(t, c.Contains("gone"))
	assert.Equal(t, 1, c.Len())
	require.NoError(t, c.Close())

	reopened, err := New("sqlite", ProviderConfig{Path: path})
	require.NoError(t, err)
	defer reopened.Close()
	val, ok = reopened.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", string(val))
}

func TestSQLiteCache_TTL(t *testing.T) {
	c, err := New("sqlite", ProviderConfig{Path: filepath.Join(t.TempDir(), "cache.db"), TTL: time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	c.Set("k", []byte("v"))
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}
