package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// LookupCache stores serialized wiki responses.
// Implemented in-process by MemoryLookupCache and shared by RedisService.
type LookupCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// MemoryLookupCache keeps lookups in process memory
type MemoryLookupCache struct {
	cache *cache.Cache
}

// NewMemoryLookupCache creates a cache whose entries expire after defaultTTL
func NewMemoryLookupCache(defaultTTL time.Duration) *MemoryLookupCache {
	return &MemoryLookupCache{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

// Get returns a cached value
func (c *MemoryLookupCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := value.([]byte)
	return data, ok
}

// Set stores a value; a zero ttl uses the cache default
func (c *MemoryLookupCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}
