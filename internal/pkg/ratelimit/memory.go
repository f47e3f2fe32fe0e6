// internal/pkg/ratelimit/memory.go
package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

type bucket struct {
	count         int
	windowResetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// MemoryLimiter is an in-process fixed-window counter. Keys are spread
// across shards so distinct clients do not contend on one lock; the
// check-then-increment sequence for a key runs entirely under its shard
// lock, so concurrent callers can never admit more than MaxRequests per
// window.
type MemoryLimiter struct {
	cfg    Config
	shards [shardCount]*shard

	clock func() time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	l := &MemoryLimiter{cfg: cfg, clock: time.Now}
	for i := range l.shards {
		l.shards[i] = &shard{buckets: make(map[string]*bucket)}
	}
	return l
}

func (l *MemoryLimiter) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return l.shards[h.Sum32()%shardCount]
}

// Admit applies the fixed-window rule: reset the bucket if its window has
// passed, reject without incrementing once the cap is reached, otherwise
// count the request.
func (l *MemoryLimiter) Admit(_ context.Context, key string) (Result, error) {
	now := l.clock()
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{windowResetAt: now.Add(l.cfg.Window)}
		s.buckets[key] = b
	}

	if now.After(b.windowResetAt) {
		b.count = 0
		b.windowResetAt = now.Add(l.cfg.Window)
	}

	if b.count >= l.cfg.MaxRequests {
		return Result{Allowed: false, Remaining: 0}, nil
	}

	b.count++
	return Result{Allowed: true, Remaining: l.cfg.MaxRequests - b.count}, nil
}

// Sweep removes buckets whose window has elapsed. Buckets are only ever
// created lazily, so this is the sole bound on table growth.
func (l *MemoryLimiter) Sweep(_ context.Context) int {
	now := l.clock()
	removed := 0
	for _, s := range l.shards {
		s.mu.Lock()
		for key, b := range s.buckets {
			if now.After(b.windowResetAt) {
				delete(s.buckets, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}
