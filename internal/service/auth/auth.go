// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	auditdomain "polisure-service/internal/domain/audit"
	"polisure-service/internal/domain/auth"
	"polisure-service/internal/domain/blacklist"
	auditlog "polisure-service/internal/pkg/audit"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/ratelimit"
	"polisure-service/internal/pkg/session"
)

// PrincipalStore is the durable backing for principal records.
type PrincipalStore interface {
	FindByEmail(ctx context.Context, email string) (*auth.Principal, error)
	FindByID(ctx context.Context, id int64) (*auth.Principal, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, p *auth.Principal) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// DenyList screens request attributes against the blacklist.
type DenyList interface {
	Check(ctx context.Context, c blacklist.Candidate) error
}

// AuthService validates credentials and owns the login/logout flows.
// It never distinguishes "unknown email" from "wrong password" in its
// externally visible error, to prevent account enumeration.
type AuthService struct {
	principals   PrincipalStore
	sessions     *session.Manager
	loginLimiter ratelimit.Limiter
	denylist     DenyList
	audit        *auditlog.Log
	logger       *zap.Logger
}

func NewAuthService(
	principals PrincipalStore,
	sessions *session.Manager,
	loginLimiter ratelimit.Limiter,
	denylist DenyList,
	audit *auditlog.Log,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		principals:   principals,
		sessions:     sessions,
		loginLimiter: loginLimiter,
		denylist:     denylist,
		audit:        audit,
		logger:       logger,
	}
}

// Login authenticates an email/password pair and issues a session.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	// Rate limiting runs before anything else: a correct password on a
	// throttled client address is still rejected.
	res, err := s.loginLimiter.Admit(ctx, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("rate limiter failure: %w", err)
	}
	if !res.Allowed {
		s.audit.Record(ctx, auditdomain.Record{
			Action:    auditdomain.ActionLoginRateLimited,
			Resource:  "auth/login",
			ClientIP:  req.IPAddress,
			UserAgent: req.UserAgent,
		})
		return nil, xerrors.ErrRateLimited
	}

	principal, err := s.principals.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			s.recordLoginFailure(ctx, req, "unknown identifier")
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}

	// Disabled accounts fail the same way as bad credentials.
	if principal.Status != "active" {
		s.recordLoginFailure(ctx, req, "account "+principal.Status)
		return nil, xerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		s.recordLoginFailure(ctx, req, "credential mismatch")
		return nil, xerrors.ErrInvalidCredentials
	}

	// Screen the authenticated identity before issuing a session.
	if err := s.denylist.Check(ctx, blacklist.Candidate{
		Email:    principal.Email,
		ClientIP: req.IPAddress,
	}); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, principal, req.RememberMe, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.principals.UpdateLastLogin(ctx, principal.ID); err != nil {
		// log only, the session is already live
		s.logger.Error("failed to update last login", zap.Int64("principal_id", principal.ID), zap.Error(err))
	}

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    principal.ID,
		PrincipalEmail: principal.Email,
		Action:         auditdomain.ActionLogin,
		Resource:       "session",
		ClientIP:       req.IPAddress,
		UserAgent:      req.UserAgent,
	})

	return &auth.LoginResponse{
		SessionToken: sess.Token,
		ExpiresAt:    sess.LoginAt.Add(s.sessions.AbsoluteTTL(principal.Class, req.RememberMe)),
		User: auth.UserInfo{
			ID:       principal.ID,
			Email:    principal.Email,
			FullName: principal.FullName,
			Class:    principal.Class,
			Role:     principal.Role,
		},
	}, nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, req *auth.LoginRequest, reason string) {
	s.audit.Record(ctx, auditdomain.Record{
		Action:    auditdomain.ActionLoginFailed,
		Resource:  "auth/login",
		Details:   reason,
		ClientIP:  req.IPAddress,
		UserAgent: req.UserAgent,
	})
	s.logger.Warn("login failed",
		zap.String("email", req.Email),
		zap.String("ip", req.IPAddress),
		zap.String("reason", reason),
	)
}

// ValidateSession resolves a session token for the auth middleware.
// Missing, unknown and expired tokens collapse into one outcome.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("session validation failure: %w", err)
	}
	return sess, nil
}

// Logout destroys the caller's session.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if err := s.sessions.Destroy(ctx, sess.Token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    sess.PrincipalID,
		PrincipalEmail: sess.Email,
		Action:         auditdomain.ActionLogout,
		Resource:       "session",
		ClientIP:       sess.IPAddress,
		UserAgent:      sess.UserAgent,
	})
	return nil
}

// CreateAdmin provisions an administrative account.
func (s *AuthService) CreateAdmin(ctx context.Context, req *auth.CreateAdminRequest, actor *session.Session) (*auth.UserInfo, error) {
	exists, err := s.principals.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, xerrors.ErrDuplicateEntry
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	principal := &auth.Principal{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Class:        auth.ClassAdministrative,
		Role:         req.Role,
		Status:       "active",
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    actor.PrincipalID,
		PrincipalEmail: actor.Email,
		Action:         auditdomain.ActionAdminCreated,
		Resource:       fmt.Sprintf("principal/%d", principal.ID),
		Details:        principal.Email,
		ClientIP:       actor.IPAddress,
		UserAgent:      actor.UserAgent,
	})

	return &auth.UserInfo{
		ID:       principal.ID,
		Email:    principal.Email,
		FullName: principal.FullName,
		Class:    principal.Class,
		Role:     principal.Role,
	}, nil
}

// DeleteAdmin removes an administrative account.
func (s *AuthService) DeleteAdmin(ctx context.Context, id int64, actor *session.Session) error {
	if id == actor.PrincipalID {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "cannot delete own account")
	}

	target, err := s.principals.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Class != auth.ClassAdministrative {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "principal is not administrative")
	}

	if err := s.principals.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    actor.PrincipalID,
		PrincipalEmail: actor.Email,
		Action:         auditdomain.ActionAdminDeleted,
		Resource:       fmt.Sprintf("principal/%d", id),
		Details:        target.Email,
		ClientIP:       actor.IPAddress,
		UserAgent:      actor.UserAgent,
	})
	return nil
}

// EnsureBootstrapAdmin creates the initial administrative account if no
// principal uses the email yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password, fullName string) error {
	exists, err := s.principals.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check bootstrap admin: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	principal := &auth.Principal{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Class:        auth.ClassAdministrative,
		Role:         "super_admin",
		Status:       "active",
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
