// internal/pkg/session/manager.go
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"polisure-service/internal/domain/auth"
	xerrors "polisure-service/internal/pkg/errors"
)

// tokenBytes gives 256 bits of entropy, making tokens infeasible to guess
// even under the login rate limiter's bounds.
const tokenBytes = 32

// Manager owns the session lifecycle: issue on login, validate-and-refresh
// on every privileged request, destroy on logout, sweep in the background.
// The TTL policy lives here; the Store only holds records.
type Manager struct {
	store Store
	cfg   Config

	clock func() time.Time
}

func NewManager(store Store, cfg Config) *Manager {
	return &Manager{store: store, cfg: cfg, clock: time.Now}
}

// AbsoluteTTL returns the absolute lifetime for a session of the given
// class. RememberMe has no effect for administrative principals.
func (m *Manager) AbsoluteTTL(class auth.PrincipalClass, rememberMe bool) time.Duration {
	if class == auth.ClassAdministrative {
		return m.cfg.AdminAbsoluteTTL
	}
	if rememberMe {
		return m.cfg.RememberAbsoluteTTL
	}
	return m.cfg.StandardAbsoluteTTL
}

func (m *Manager) idleTTL(class auth.PrincipalClass) time.Duration {
	if class == auth.ClassAdministrative {
		return m.cfg.AdminIdleTTL
	}
	return m.cfg.StandardIdleTTL
}

func (m *Manager) isValid(s *Session, now time.Time) bool {
	if now.Sub(s.LoginAt) > m.AbsoluteTTL(s.Class, s.RememberMe) {
		return false
	}
	if now.Sub(s.LastActivityAt) > m.idleTTL(s.Class) {
		return false
	}
	return true
}

// Create issues a session for an authenticated principal and returns the
// opaque token the caller delivers as a cookie.
func (m *Manager) Create(ctx context.Context, principal *auth.Principal, rememberMe bool, ip, userAgent string) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.clock()
	sess := &Session{
		Token:          token,
		PrincipalID:    principal.ID,
		Email:          principal.Email,
		FullName:       principal.FullName,
		Class:          principal.Class,
		Role:           principal.Role,
		RememberMe:     rememberMe,
		IPAddress:      ip,
		UserAgent:      userAgent,
		LoginAt:        now,
		LastActivityAt: now,
	}

	ttl := m.AbsoluteTTL(principal.Class, rememberMe)
	if err := m.store.Save(ctx, sess, ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Validate checks the token and refreshes the session's activity stamp.
// Missing and expired sessions are indistinguishable to the caller: both
// surface as ErrNotFound from the store, and an expired record is deleted
// on this first failed validation.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, xerrors.ErrNotFound
	}
	return m.store.Touch(ctx, token, m.clock(), m.isValid)
}

// Destroy removes a session immediately. Destroying an unknown token is
// not an error: logout must be idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// SweepExpired removes every stored session that fails the validity
// invariant and returns the count removed. Run it on a timer; lazy
// eviction alone lets never-revisited sessions accumulate.
func (m *Manager) SweepExpired(ctx context.Context) int {
	removed, _ := m.store.Sweep(ctx, m.clock(), m.isValid)
	return removed
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
