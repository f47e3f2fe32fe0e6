// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// PrincipalClass separates ordinary customers from administrative staff.
// Session TTL policy depends on it.
type PrincipalClass string

const (
	ClassStandard       PrincipalClass = "standard"
	ClassAdministrative PrincipalClass = "administrative"
)

// Principal represents an authenticated actor: a customer account or an
// administrative staff account.
type Principal struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	FullName     string         `json:"full_name" db:"full_name"`
	PasswordHash string         `json:"-" db:"password_hash"`
	Class        PrincipalClass `json:"class" db:"class"`
	Role         string         `json:"role,omitempty" db:"role"`
	Status       string         `json:"status" db:"status"` // active, disabled
	LastLogin    sql.NullTime   `json:"last_login" db:"last_login"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// IsAdministrative reports whether the principal carries elevated privilege.
func (p *Principal) IsAdministrative() bool {
	return p.Class == ClassAdministrative
}
