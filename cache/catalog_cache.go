// Package cache holds Redis-backed caches in front of the external catalog.
// Cache failures are never fatal: a miss or a Redis error just falls through
// to the live catalog call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tracktide/db"
	"tracktide/logger"

	"github.com/go-redis/redis/v8"
)

// CatalogCache caches catalog responses (search results, artist lookups)
// with a TTL.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a cache over the shared Redis client. Returns nil
// when Redis is not connected; callers treat a nil cache as a pass-through.
func NewCatalogCache(ttl time.Duration) *CatalogCache {
	if db.RedisClient == nil {
		return nil
	}
	return &CatalogCache{client: db.RedisClient, ttl: ttl}
}

func searchKey(query string) string {
	return fmt.Sprintf("catalog:search:%s", query)
}

func artistKey(artistID string) string {
	return fmt.Sprintf("catalog:artist:%s", artistID)
}

// GetSearch returns a cached search result, decoded into out.
// The bool reports a cache hit.
func (c *CatalogCache) GetSearch(ctx context.Context, query string, out interface{}) bool {
	return c.get(ctx, searchKey(query), out)
}

// SetSearch stores a search result.
func (c *CatalogCache) SetSearch(ctx context.Context, query string, value interface{}) {
	c.set(ctx, searchKey(query), value)
}

// GetArtist returns a cached artist lookup, decoded into out.
func (c *CatalogCache) GetArtist(ctx context.Context, artistID string, out interface{}) bool {
	return c.get(ctx, artistKey(artistID), out)
}

// SetArtist stores an artist lookup.
func (c *CatalogCache) SetArtist(ctx context.Context, artistID string, value interface{}) {
	c.set(ctx, artistKey(artistID), value)
}

func (c *CatalogCache) get(ctx context.Context, key string, out interface{}) bool {
	if c == nil {
		return false
	}

	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("[CatalogCache] read failed", logger.String("key", key), logger.ErrorField(err))
		}
		return false
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		logger.Warn("[CatalogCache] stale payload dropped", logger.String("key", key), logger.ErrorField(err))
		c.client.Del(ctx, key)
		return false
	}
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("[CatalogCache] marshal failed", logger.String("key", key), logger.ErrorField(err))
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("[CatalogCache] write failed", logger.String("key", key), logger.ErrorField(err))
	}
}
