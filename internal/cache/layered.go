package cache

import (
	"errors"
	"fmt"
	"time"
)

// LayeredCache checks memory first and falls back to a persistent layer
// (disk or Redis)
type LayeredCache struct {
	memory     *MemoryCache[[]byte]
	persistent Cache
}

func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory:     NewMemoryCache[[]byte](memoryTTL, 10*time.Minute),
		persistent: NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves a value, promoting persistent hits to memory. A version
// mismatch in memory still consults the persistent layer, which may hold
// an entry written by a newer run.
func (c *LayeredCache) Get(key, version string) ([]byte, bool) {
	if val, found := c.memory.Get(key, version); found {
		return val, true
	}
	if val, found := c.persistent.Get(key, version); found {
		_ = c.memory.Set(key, version, val, 0)
		return val, true
	}
	return nil, false
}

func (c *LayeredCache) Set(key, version string, value []byte, ttl time.Duration) error {
	_ = c.memory.Set(key, version, value, ttl)
	if err := c.persistent.Set(key, version, value, ttl); err != nil {
		return fmt.Errorf("persist cache entry: %w", err)
	}
	return nil
}

func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.persistent.Delete(key)
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.persistent.Clear())
}
