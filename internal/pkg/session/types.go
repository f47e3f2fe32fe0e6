// internal/pkg/session/types.go
package session

import (
	"time"

	"polisure-service/internal/domain/auth"
)

// Session binds an opaque token to a principal with time-based validity.
// A session is valid iff both the absolute and the inactivity bound hold:
//
//	now - LoginAt         <= absolute TTL(class, rememberMe)
//	now - LastActivityAt  <= inactivity TTL(class)
type Session struct {
	Token          string              `json:"-"`
	PrincipalID    int64               `json:"principal_id"`
	Email          string              `json:"email"`
	FullName       string              `json:"full_name"`
	Class          auth.PrincipalClass `json:"class"`
	Role           string              `json:"role,omitempty"`
	RememberMe     bool                `json:"remember_me"`
	IPAddress      string              `json:"ip_address"`
	UserAgent      string              `json:"user_agent"`
	LoginAt        time.Time           `json:"login_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
}

// Config carries the TTL policy. Administrative sessions ignore
// RememberMe: elevated privilege must re-authenticate on the short idle
// bound and the standard absolute bound regardless of what the client
// asked for.
type Config struct {
	StandardAbsoluteTTL time.Duration // standard, remember_me=false
	RememberAbsoluteTTL time.Duration // standard, remember_me=true
	StandardIdleTTL     time.Duration
	AdminAbsoluteTTL    time.Duration
	AdminIdleTTL        time.Duration
}

// DefaultConfig returns the production TTL matrix.
func DefaultConfig() Config {
	return Config{
		StandardAbsoluteTTL: 24 * time.Hour,
		RememberAbsoluteTTL: 30 * 24 * time.Hour,
		StandardIdleTTL:     2 * time.Hour,
		AdminAbsoluteTTL:    24 * time.Hour,
		AdminIdleTTL:        30 * time.Minute,
	}
}
