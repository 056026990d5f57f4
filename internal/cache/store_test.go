package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{DefaultTTL: time.Minute})

	require.NoError(t, store.Set(ctx, "greeting", "hello", 0))

	got, ok := store.GetString(ctx, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	_, ok = store.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestStoreNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{DefaultTTL: time.Minute})
	a := store.Namespace("a")
	b := store.Namespace("b")

	require.NoError(t, a.Set(ctx, "k", "va", 0))
	require.NoError(t, b.Set(ctx, "k", "vb", 0))

	got, ok := a.GetString(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "va", got)

	got, ok = b.GetString(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "vb", got)
}

func TestStoreIncrementCounts(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{DefaultTTL: time.Minute})

	for want := int64(1); want <= 5; want++ {
		got, err := store.Increment(ctx, "hits", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStoreIncrementKeepsWindowStart(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{DefaultTTL: time.Minute})

	_, err := store.Increment(ctx, "hits", 1, 200*time.Millisecond)
	require.NoError(t, err)
	first, ok := store.TTL(ctx, "hits")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, err = store.Increment(ctx, "hits", 1, 200*time.Millisecond)
	require.NoError(t, err)
	second, ok := store.TTL(ctx, "hits")
	require.True(t, ok)

	assert.Less(t, second, first, "increment must not refresh the window TTL")
}

func TestStoreIncrementEmptyKey(t *testing.T) {
	store := NewStore(Options{})
	_, err := store.Increment(context.Background(), "   ", 1, time.Minute)
	require.Error(t, err)
}

func TestStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{DefaultTTL: time.Minute, CleanupInterval: 10 * time.Millisecond})

	require.NoError(t, store.Set(ctx, "brief", 1, 30*time.Millisecond))
	_, ok := store.TTL(ctx, "brief")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = store.Get(ctx, "brief")
	assert.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{})

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	store.Delete(ctx, "k")

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
}
