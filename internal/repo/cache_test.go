package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGenerateKeyIsDeterministic(t *testing.T) {
	s := newTestStore(t)
	cache := NewCache(s)

	k1 := cache.GenerateKey("http://x", []byte(`{"a":1}`))
	k2 := cache.GenerateKey("http://x", []byte(`{"a":1}`))
	k3 := cache.GenerateKey("http://x", []byte(`{"a":2}`))

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestCacheSetAndGet(t *testing.T) {
	s := newTestStore(t)
	cache := NewCache(s)

	key := cache.GenerateKey("http://x", []byte("body"))
	require.NoError(t, cache.SetWithAutoCleanup(key, "result", 1000))

	got, found, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "result", got)
}

func TestCacheGetMiss(t *testing.T) {
	s := newTestStore(t)
	cache := NewCache(s)

	_, found, err := cache.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)
}
