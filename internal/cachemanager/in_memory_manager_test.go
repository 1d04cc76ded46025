package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "answer", 42, time.Minute)

	v, found := c.Get(ctx, "answer")
	require.True(t, found)
	require.Equal(t, 42, v)
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	_, found := c.Get(ctx, "missing")
	require.False(t, found)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "ephemeral", "x", 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, found := c.Get(ctx, "ephemeral")
	require.False(t, found)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "a", 1, time.Minute)
	c.Set(ctx, "b", 2, time.Minute)

	require.NoError(t, c.Delete(ctx, "a"))
	_, found := c.Get(ctx, "a")
	require.False(t, found)

	require.NoError(t, c.Flush(ctx))
	_, found = c.Get(ctx, "b")
	require.False(t, found)
}
