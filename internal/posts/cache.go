package posts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const feedCacheKey = "posts:feed"

// Cache keeps the rendered feed in Redis for a short TTL. It is best
// effort: every miss or Redis failure just falls through to the store.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a feed cache. A nil client yields a no-op cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached feed when present.
func (c *Cache) Get(ctx context.Context) ([]Post, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, feedCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []Post
	if err := json.Unmarshal(payload, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

// Set stores the feed for the configured TTL.
func (c *Cache) Set(ctx context.Context, posts []Post) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(posts)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, feedCacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached feed after a mutation.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, feedCacheKey).Err()
}
