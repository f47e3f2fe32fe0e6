package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestLimiter returns a memory limiter with a controllable clock.
func newTestLimiter(t *testing.T, cfg Config) (*MemoryLimiter, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(cfg)
	l.clock = func() time.Time { return now }
	return l, &now
}

func TestAdmitWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxRequests: 5, Window: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.Admit(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Admit returned error: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
		if res.Remaining != 4-i {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, res.Remaining, 4-i)
		}
	}

	// Sixth request in the same window must be rejected.
	res, err := l.Admit(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Admit returned error: %v", err)
	}
	if res.Allowed {
		t.Fatal("sixth request allowed, want rejected")
	}
	if res.Remaining != 0 {
		t.Errorf("rejected request Remaining = %d, want 0", res.Remaining)
	}
}

func TestRejectedRequestsDoNotConsumeBudget(t *testing.T) {
	l, now := newTestLimiter(t, Config{MaxRequests: 2, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		l.Admit(ctx, "client")
	}

	// The window resets; a fresh budget must be available regardless of
	// how many rejected calls piled up.
	*now = now.Add(time.Minute + time.Second)
	res, _ := l.Admit(ctx, "client")
	if !res.Allowed {
		t.Fatal("request after window reset rejected, want allowed")
	}
	if res.Remaining != 1 {
		t.Errorf("Remaining after reset = %d, want 1", res.Remaining)
	}
}

func TestDistinctKeysDoNotInterfere(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxRequests: 1, Window: time.Minute})
	ctx := context.Background()

	if res, _ := l.Admit(ctx, "a"); !res.Allowed {
		t.Fatal("first request for key a rejected")
	}
	if res, _ := l.Admit(ctx, "a"); res.Allowed {
		t.Fatal("second request for key a allowed")
	}
	if res, _ := l.Admit(ctx, "b"); !res.Allowed {
		t.Fatal("first request for key b rejected, keys must not interfere")
	}
}

func TestConcurrentAdmissionsBounded(t *testing.T) {
	const max = 50
	l, _ := newTestLimiter(t, Config{MaxRequests: max, Window: time.Minute})
	ctx := context.Background()

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Admit(ctx, "shared")
			if err != nil {
				t.Errorf("Admit returned error: %v", err)
				return
			}
			if res.Allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != max {
		t.Fatalf("admitted %d concurrent requests, want exactly %d", admitted, max)
	}
}

func TestSweepRemovesElapsedBuckets(t *testing.T) {
	l, now := newTestLimiter(t, Config{MaxRequests: 5, Window: time.Minute})
	ctx := context.Background()

	l.Admit(ctx, "a")
	l.Admit(ctx, "b")

	if removed := l.Sweep(ctx); removed != 0 {
		t.Fatalf("Sweep removed %d live buckets, want 0", removed)
	}

	*now = now.Add(2 * time.Minute)
	l.Admit(ctx, "c") // fresh bucket in the new window

	if removed := l.Sweep(ctx); removed != 2 {
		t.Fatalf("Sweep removed %d buckets, want 2", removed)
	}
}
