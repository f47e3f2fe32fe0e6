// internal/domain/auth/dto.go
package auth

import "time"

// LoginRequest for account login
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse successful login response
type LoginResponse struct {
	SessionToken string    `json:"-"` // delivered via cookie, never in the body
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserInfo  `json:"user"`
}

// UserInfo minimal principal information
type UserInfo struct {
	ID       int64          `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Class    PrincipalClass `json:"class"`
	Role     string         `json:"role,omitempty"`
}

// CreateAdminRequest for creating administrative accounts
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=12"`
	Role     string `json:"role" binding:"required,oneof=admin super_admin"`
}
