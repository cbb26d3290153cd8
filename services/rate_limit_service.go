package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiterInterface defines the contract for rate limiting operations.
type RateLimiterInterface interface {
	CheckLimit(ctx context.Context, key string, limit int, duration time.Duration) (bool, time.Duration, error)
}

// RateLimitService provides fixed-window rate limiting backed by Redis.
type RateLimitService struct {
	redis     redis.UniversalClient
	keyPrefix string
}

func NewRateLimitService(redisClient redis.UniversalClient) *RateLimitService {
	return &RateLimitService{
		redis:     redisClient,
		keyPrefix: "rate_limit:",
	}
}

// CheckLimit increments the counter for key and reports whether the caller
// is within limit. When over the limit it returns the remaining window as
// the retry-after duration.
func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, duration time.Duration) (bool, time.Duration, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.Pipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.Expire(ctx, rKey, duration)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, err
	}

	if incr.Val() > int64(limit) {
		ttl, err := s.redis.TTL(ctx, rKey).Result()
		if err != nil {
			return false, 0, err
		}
		return false, ttl, nil
	}

	return true, 0, nil
}
