// internal/pkg/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares one fixed window across process instances. Unlike
// the memory limiter it counts rejected requests too (INCR then compare),
// which keeps the admission bound intact while letting redis own the
// window via key expiry.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg, prefix: prefix}
}

func (l *RedisLimiter) Admit(ctx context.Context, key string) (Result, error) {
	rkey := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	count, err := l.client.Incr(ctx, rkey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiration on first request in the window
	if count == 1 {
		l.client.Expire(ctx, rkey, l.cfg.Window)
	}

	remaining := int64(l.cfg.MaxRequests) - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{Allowed: count <= int64(l.cfg.MaxRequests), Remaining: int(remaining)}, nil
}

// Sweep is a no-op: redis evicts expired windows itself.
func (l *RedisLimiter) Sweep(context.Context) int { return 0 }
