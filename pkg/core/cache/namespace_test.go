package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaced_IsolatesKeys(t *testing.T) {
	shared, err := New("memory", ProviderConfig{Size: 10})
	require.NoError(t, err)

	a := WithNamespace(shared, "os_com")
	b := WithNamespace(shared, "other")

	a.Set("user_token", []byte("A"))
	b.Set("user_token", []byte("B"))

	val, ok := a.Get("user_token")
	require.True(t, ok)
	assert.Equal(t, "A", string(val))

	raw, ok := shared.Get("os_com:user_token")
	require.True(t, ok)
	assert.Equal(t, "A", string(raw))

	a.Delete("user_token")
	assert.False(t, a.Contains("user_token"))
	assert.True(t, b.Contains("user_token"))
	assert.Equal(t, "os_com", a.Namespace())
}

func TestNamespaced_CloseLeavesStoreOpen(t *testing.T) {
	shared, err := New("memory", ProviderConfig{Size: 10})
	require.NoError(t, err)

	ns := WithNamespace(shared, "x")
	require.NoError(t, ns.Close())

	shared.Set("k", []byte("v"))
	assert.True(t, shared.Contains("k"))
}
