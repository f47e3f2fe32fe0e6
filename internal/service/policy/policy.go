// internal/service/policy/policy.go
package policy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	auditdomain "polisure-service/internal/domain/audit"
	"polisure-service/internal/domain/blacklist"
	"polisure-service/internal/domain/policy"
	auditlog "polisure-service/internal/pkg/audit"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/ratelimit"
)

// PolicyStore is the durable backing for policy records.
type PolicyStore interface {
	FindByNumber(ctx context.Context, number string) (*policy.Policy, error)
}

// DenyList screens request attributes against the blacklist.
type DenyList interface {
	Check(ctx context.Context, c blacklist.Candidate) error
}

// PolicyService gates access to policy documents behind the one-time
// access code issued at purchase. Verification shares the login rate
// limiter's throttle class: it is a credential check.
type PolicyService struct {
	policies PolicyStore
	limiter  ratelimit.Limiter
	denylist DenyList
	audit    *auditlog.Log
	logger   *zap.Logger
}

func NewPolicyService(
	policies PolicyStore,
	limiter ratelimit.Limiter,
	denylist DenyList,
	audit *auditlog.Log,
	logger *zap.Logger,
) *PolicyService {
	return &PolicyService{
		policies: policies,
		limiter:  limiter,
		denylist: denylist,
		audit:    audit,
		logger:   logger,
	}
}

// VerifyAccess checks the one-time access code for a policy and screens
// the request against the blacklist. An unknown policy number and a wrong
// code produce the same error, so the endpoint cannot be used to probe
// which policy numbers exist.
func (s *PolicyService) VerifyAccess(ctx context.Context, req *policy.VerifyRequest) (*policy.VerifyResponse, error) {
	res, err := s.limiter.Admit(ctx, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("rate limiter failure: %w", err)
	}
	if !res.Allowed {
		return nil, xerrors.ErrRateLimited
	}

	record, err := s.policies.FindByNumber(ctx, req.PolicyNumber)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			s.recordFailure(ctx, req, "unknown policy")
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up policy: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.AccessCodeHash), []byte(req.AccessCode)); err != nil {
		s.recordFailure(ctx, req, "access code mismatch")
		return nil, xerrors.ErrInvalidCredentials
	}

	// Screen everything known about the request: the attributes on
	// record plus whatever the caller supplied, the vehicle, and the
	// client address.
	candidate := blacklist.Candidate{
		FirstName:   firstNonEmpty(req.FirstName, record.HolderFirst),
		LastName:    firstNonEmpty(req.LastName, record.HolderLast),
		Email:       record.HolderEmail,
		DateOfBirth: firstNonEmpty(req.DateOfBirth, record.HolderDOB),
		Postcode:    firstNonEmpty(req.Postcode, record.Postcode),
		AssetTag:    firstNonEmpty(req.VehicleReg, record.VehicleReg),
		ClientIP:    req.IPAddress,
	}
	if err := s.denylist.Check(ctx, candidate); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalEmail: record.HolderEmail,
		Action:         auditdomain.ActionPolicyVerified,
		Resource:       "policy/" + record.PolicyNumber,
		ClientIP:       req.IPAddress,
		UserAgent:      req.UserAgent,
	})

	return &policy.VerifyResponse{
		PolicyNumber: record.PolicyNumber,
		HolderName:   record.HolderFirst + " " + record.HolderLast,
		VehicleReg:   record.VehicleReg,
		Status:       record.Status,
		IssuedAt:     record.IssuedAt,
		ExpiresAt:    record.ExpiresAt,
	}, nil
}

func (s *PolicyService) recordFailure(ctx context.Context, req *policy.VerifyRequest, reason string) {
	s.audit.Record(ctx, auditdomain.Record{
		Action:    auditdomain.ActionPolicyVerifyFailed,
		Resource:  "policy/" + req.PolicyNumber,
		Details:   reason,
		ClientIP:  req.IPAddress,
		UserAgent: req.UserAgent,
	})
	s.logger.Warn("policy verification failed",
		zap.String("policy_number", req.PolicyNumber),
		zap.String("ip", req.IPAddress),
		zap.String("reason", reason),
	)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
