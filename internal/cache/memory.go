package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type versioned[T any] struct {
	version string
	value   T
}

// MemoryCache is a process-local cache of typed values with per-entry
// expiration. MemoryCache[[]byte] implements Cache.
type MemoryCache[T any] struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache. A zero defaultTTL keeps entries
// until they are deleted.
func NewMemoryCache[T any](defaultTTL, cleanupInterval time.Duration) *MemoryCache[T] {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryCache[T]{
		items: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *MemoryCache[T]) Get(key, version string) (T, bool) {
	var zero T
	val, found := c.items.Get(key)
	if !found {
		return zero, false
	}
	entry := val.(versioned[T])
	if entry.version != version {
		c.items.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores value; a zero ttl uses the cache default
func (c *MemoryCache[T]) Set(key, version string, value T, ttl time.Duration) error {
	c.items.Set(key, versioned[T]{version: version, value: value}, ttl)
	return nil
}

func (c *MemoryCache[T]) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache[T]) Clear() error {
	c.items.Flush()
	return nil
}
