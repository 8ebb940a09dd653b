package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockCache mirrors account lockout state in Redis so a locked identity can
// be rejected without a database round trip. The key TTL equals the
// remaining lock window, so entries expire exactly when the lock does.
// The database remains the source of truth; the cache is best effort.
//
// Key format: lock:<email>
type LockCache struct {
	client *redis.Client
}

func NewLockCache(client *redis.Client) *LockCache {
	return &LockCache{client: client}
}

// Get returns the remaining lock window for the identity, if cached.
func (c *LockCache) Get(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := c.client.PTTL(ctx, c.key(key)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("lock cache get: %w", err)
	}
	// PTTL returns a negative duration when the key is missing or has no expiry.
	if ttl <= 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

// Set caches a lock that expires after the remaining window.
func (c *LockCache) Set(ctx context.Context, key string, remaining time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), "1", remaining).Err(); err != nil {
		return fmt.Errorf("lock cache set: %w", err)
	}
	return nil
}

// Clear drops the cached lock, if any.
func (c *LockCache) Clear(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("lock cache clear: %w", err)
	}
	return nil
}

func (c *LockCache) key(identity string) string {
	return "lock:" + identity
}
