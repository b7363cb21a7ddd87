package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

// RateDecision is the outcome of one rate limit check.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter limits requests per key over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error)
}

const rateLimitKeyPrefix = "ratelimit:"

// slidingWindowScript trims, counts and records in one step so concurrent
// callers cannot all pass the count check.
// KEYS[1] window key; ARGV now ms, window ms, limit, member.
// Returns {allowed, remaining, retry_after_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local used = redis.call('ZCARD', key)
if used >= limit then
	local retry = window
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {0, 0, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window + 60000)
return {1, limit - used - 1, 0}
`)

// redisRateLimiter keeps a sorted-set log of request times per key
type redisRateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRedisRateLimiter creates a rate limiter backed by Redis
func NewRedisRateLimiter(redis *database.Redis) RateLimiter {
	return &redisRateLimiter{redis: redis, now: time.Now}
}

// Allow records the request when it fits in the window.
func (r *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error) {
	result, err := slidingWindowScript.Run(ctx, r.redis.Client,
		[]string{rateLimitKeyPrefix + key},
		r.now().UnixMilli(),
		window.Milliseconds(),
		limit,
		uuid.New().String(),
	).Int64Slice()
	if err != nil {
		return RateDecision{}, fmt.Errorf("failed to evaluate rate window: %w", err)
	}
	if len(result) != 3 {
		return RateDecision{}, fmt.Errorf("unexpected rate window reply of %d values", len(result))
	}

	decision := RateDecision{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
	}
	if !decision.Allowed {
		decision.RetryAfter = time.Duration(result[2]) * time.Millisecond
		if decision.RetryAfter <= 0 {
			decision.RetryAfter = window
		}
	}
	return decision, nil
}
