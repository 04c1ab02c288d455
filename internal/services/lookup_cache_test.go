package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLookupCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLookupCache(time.Minute)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "wiki:search:es:sol", []byte(`[{"title":"Sol"}]`), 0)
	value, ok := c.Get(ctx, "wiki:search:es:sol")
	require.True(t, ok)
	assert.JSONEq(t, `[{"title":"Sol"}]`, string(value))
}

func TestMemoryLookupCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLookupCache(time.Minute)

	c.Set(ctx, "short", []byte("x"), 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
}

func TestOutboundLimiter_Wait(t *testing.T) {
	limiter := NewOutboundLimiter(100)

	require.NoError(t, limiter.Wait(context.Background(), "es.wikipedia.org"))
	require.NoError(t, limiter.Wait(context.Background(), "en.wikipedia.org"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx, "es.wikipedia.org"))
}
