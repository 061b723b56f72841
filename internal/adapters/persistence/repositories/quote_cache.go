package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// quoteCacheTTL keeps quotes short-lived so rate changes propagate quickly
const quoteCacheTTL = 10 * time.Minute

// redisQuoteCache implements QuoteCache backed by Redis
type redisQuoteCache struct {
	client *redis.Client
}

// NewRedisQuoteCache creates a Redis-backed quote cache
func NewRedisQuoteCache(addr, password string, db int) QuoteCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisQuoteCache{client: client}
}

// Get fetches a cached quote. A miss or a connection error both report false.
func (c *redisQuoteCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a quote with a TTL
func (c *redisQuoteCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, key, value, quoteCacheTTL).Err()
}
