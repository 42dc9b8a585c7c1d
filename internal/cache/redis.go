package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache stores entries in a Redis database so that several runs
// (or machines) share converted dictionaries and scraped pages
type RedisCache struct {
	ctx context.Context
	c   *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a cache backed by the Redis server at addr
func NewRedisCache(addr string, db int, ttl time.Duration) *RedisCache {
	return newRedisCacheWithClient(
		redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		ttl,
	)
}

func newRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		ctx: context.Background(),
		c:   client,
		ttl: ttl,
	}
}

const (
	redisFieldVersion = "version"
	redisFieldData    = "data"
)

// Get retrieves a value from Redis. Connection errors count as a miss.
// Entries are hashes holding the data next to its source version.
func (c *RedisCache) Get(key, version string) ([]byte, bool) {
	vals, err := c.c.HMGet(c.ctx, key, redisFieldVersion, redisFieldData).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		return nil, false
	}
	stored, okVer := vals[0].(string)
	data, okData := vals[1].(string)
	if !okVer || !okData {
		return nil, false
	}
	if stored != version {
		_ = c.Delete(key)
		return nil, false
	}
	return []byte(data), true
}

// Set stores a value with the given TTL, the default TTL when zero
func (c *RedisCache) Set(key, version string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	_, err := c.c.TxPipelined(c.ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(c.ctx, key)
		pipe.HSet(c.ctx, key, redisFieldVersion, version, redisFieldData, value)
		if ttl > 0 {
			pipe.Expire(c.ctx, key, ttl)
		}
		return nil
	})
	return err
}

func (c *RedisCache) Delete(key string) error {
	return c.c.Del(c.ctx, key).Err()
}

// Clear removes all parlasf keys, earlier key versions included, from the
// selected database
func (c *RedisCache) Clear() error {
	iter := c.c.Scan(c.ctx, 0, "parlasf:*", 100).Iterator()
	for iter.Next(c.ctx) {
		if err := c.c.Del(c.ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.c.Close()
}
