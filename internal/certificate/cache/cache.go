// Package cache holds a short-TTL verification result cache.
//
// Verification is the hot read path (every share link hits it) while the
// underlying data changes only on revoke/reissue, so results are cached in
// Redis and invalidated on any lifecycle transition. Cache failures always
// degrade to a direct read; a broken cache never fails a request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "certo:verify:"

// VerifyCache caches serialized verification results by credential ID.
type VerifyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVerifyCache(client *redis.Client, ttl time.Duration) *VerifyCache {
	return &VerifyCache{client: client, ttl: ttl}
}

// Get returns the cached result for a credential ID, or ok=false on miss or
// cache error.
func (c *VerifyCache) Get(ctx context.Context, credentialID string, v any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, keyPrefix+credentialID).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	return true
}

// Set stores a verification result. Errors are returned for logging but are
// never fatal to the caller.
func (c *VerifyCache) Set(ctx context.Context, credentialID string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+credentialID, raw, c.ttl).Err()
}

// Invalidate drops the cached result after a lifecycle transition.
func (c *VerifyCache) Invalidate(ctx context.Context, credentialIDs ...string) error {
	if c == nil || c.client == nil || len(credentialIDs) == 0 {
		return nil
	}
	keys := make([]string, len(credentialIDs))
	for i, id := range credentialIDs {
		keys[i] = keyPrefix + id
	}
	err := c.client.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
