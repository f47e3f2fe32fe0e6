// internal/pkg/session/store.go
package session

import (
	"context"
	"time"
)

// ValidFunc decides whether a session is still valid at the given instant.
// The Manager supplies its TTL predicate; stores never interpret TTLs
// themselves.
type ValidFunc func(s *Session, now time.Time) bool

// Store is the backing table behind the Manager. The in-memory store is
// the default; the redis store substitutes a shared table behind the same
// contract for horizontally scaled deployments.
type Store interface {
	// Save inserts or replaces a session. ttl is the remaining absolute
	// lifetime, used by backends with native expiry.
	Save(ctx context.Context, s *Session, ttl time.Duration) error

	// Touch loads the session for token and evaluates valid. An invalid
	// or missing session is deleted and reported as ErrNotFound. On
	// success LastActivityAt is set to now and the refreshed session is
	// returned. The load-check-refresh-or-delete sequence is atomic with
	// respect to concurrent callers for the same token.
	Touch(ctx context.Context, token string, now time.Time, valid ValidFunc) (*Session, error)

	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// Sweep removes every stored session failing valid and returns the
	// count removed. Backends with native expiry may return 0.
	Sweep(ctx context.Context, now time.Time, valid ValidFunc) (int, error)
}
