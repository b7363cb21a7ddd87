package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

const revokedSessionKeyPrefix = "revoked:session:"

// redisRevocationCache stores revoked session fingerprints in Redis
type redisRevocationCache struct {
	redis *database.Redis
}

// NewRedisRevocationCache creates a revocation cache backed by Redis
func NewRedisRevocationCache(redis *database.Redis) RevocationCache {
	return &redisRevocationCache{redis: redis}
}

// Revoke records fingerprint for ttl
func (c *redisRevocationCache) Revoke(ctx context.Context, fingerprint string, ttl time.Duration) error {
	if err := c.redis.Client.Set(ctx, revokedSessionKeyPrefix+fingerprint, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to record revoked session: %w", err)
	}
	return nil
}

// IsRevoked reports whether fingerprint was revoked and has not yet expired from the cache
func (c *redisRevocationCache) IsRevoked(ctx context.Context, fingerprint string) (bool, error) {
	exists, err := c.redis.Client.Exists(ctx, revokedSessionKeyPrefix+fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked session: %w", err)
	}
	return exists > 0, nil
}
