package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDashboardPrefix namespaces dashboard keys in a shared redis
const DefaultDashboardPrefix = "storefront:"

// RedisDashboardCache stores dashboard figures as JSON strings with a TTL
type RedisDashboardCache struct {
	client *redis.Client
	prefix string
}

// NewRedisDashboardCache creates a cache on an existing client
func NewRedisDashboardCache(client *redis.Client, prefix string) *RedisDashboardCache {
	if prefix == "" {
		prefix = DefaultDashboardPrefix
	}
	return &RedisDashboardCache{client: client, prefix: prefix}
}

// Get decodes the value stored at key into dest
func (c *RedisDashboardCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value at key for ttl
func (c *RedisDashboardCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every dashboard key under the prefix
func (c *RedisDashboardCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"dashboard:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan dashboard keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete dashboard keys: %w", err)
	}
	return nil
}

// InMemoryDashboardCache is the single-process fallback when redis is disabled
type InMemoryDashboardCache struct {
	store *ttlStore[[]byte]
}

// NewInMemoryDashboardCache creates an empty in-memory cache
func NewInMemoryDashboardCache() *InMemoryDashboardCache {
	return &InMemoryDashboardCache{store: newTTLStore[[]byte]()}
}

// Get decodes the value stored at key into dest
func (c *InMemoryDashboardCache) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := c.store.get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value at key for ttl
func (c *InMemoryDashboardCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	c.store.set(key, raw, ttl)
	return nil
}

// Invalidate drops every entry
func (c *InMemoryDashboardCache) Invalidate(context.Context) error {
	c.store.clear()
	return nil
}
