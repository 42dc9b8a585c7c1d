package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/rs/zerolog/log"
)

// Cache stores derived resources (converted dictionaries, scraped pages).
//
// Every entry carries the version of the source it was derived from, e.g.
// the modification time of a frequency list. A Get with a different
// version is a miss and evicts the entry. Sources without a meaningful
// version use the empty string.
type Cache interface {
	Get(key, version string) ([]byte, bool)
	Set(key, version string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from an arbitrary identifier
func CacheKey(id string) string {
	hash := sha256.Sum256([]byte(id))
	return keyPrefix + hex.EncodeToString(hash[:])
}

const keyPrefix = "parlasf:v2:"

// New builds the cache described by the configuration.
// A configured Redis address replaces the disk layer. Nil is returned when
// caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	var persistent Cache
	if cfg.RedisAddr != "" {
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("using redis cache")
		persistent = NewRedisCache(cfg.RedisAddr, cfg.RedisDB, cfg.DiskTTL)
	} else {
		persistent = NewDiskCache(cfg.Dir, cfg.DiskTTL)
	}
	return &LayeredCache{
		memory:     NewMemoryCache[[]byte](cfg.MemoryTTL, 10*time.Minute),
		persistent: persistent,
	}
}
