// internal/pkg/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of an admission check.
type Result struct {
	Allowed   bool
	Remaining int
}

// Config holds fixed-window parameters for one limiter instance.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Limiter is a fixed-window admission counter. Admit is an admission
// control primitive, not an error source: a rejected request is reported
// through Result.Allowed, while the error return is reserved for backing
// store failures (redis).
type Limiter interface {
	Admit(ctx context.Context, key string) (Result, error)
	// Sweep drops buckets whose window has fully elapsed and returns how
	// many were removed. Backends with native expiry may return 0.
	Sweep(ctx context.Context) int
}
