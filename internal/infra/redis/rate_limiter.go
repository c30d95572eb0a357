package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter per key. A nil *RateLimiter allows
// everything, so wiring stays optional when Redis is not configured.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r == nil || limit <= 0 {
		return true, nil
	}
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// ChannelKey scopes the window to one session/chat on one channel.
func ChannelKey(channel, id string) string {
	return fmt.Sprintf("rate_limit:%s:%s", channel, id)
}
