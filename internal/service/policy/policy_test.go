package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"polisure-service/internal/domain/blacklist"
	"polisure-service/internal/domain/policy"
	auditlog "polisure-service/internal/pkg/audit"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/ratelimit"
)

type fakePolicyStore struct {
	byNumber map[string]*policy.Policy
}

func (f *fakePolicyStore) FindByNumber(_ context.Context, number string) (*policy.Policy, error) {
	p, ok := f.byNumber[number]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type captureDenyList struct {
	denyAssetTag string
	last         blacklist.Candidate
}

func (f *captureDenyList) Check(_ context.Context, c blacklist.Candidate) error {
	f.last = c
	if f.denyAssetTag != "" && c.AssetTag == f.denyAssetTag {
		return xerrors.ErrBlacklistDenied
	}
	return nil
}

func newTestService(t *testing.T) (*PolicyService, *captureDenyList) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("CODE-1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}

	store := &fakePolicyStore{byNumber: map[string]*policy.Policy{
		"POL-2025-0001": {
			ID:             1,
			PolicyNumber:   "POL-2025-0001",
			AccessCodeHash: string(hash),
			HolderFirst:    "Jane",
			HolderLast:     "Smith",
			HolderEmail:    "jane@example.com",
			HolderDOB:      "1990-04-01",
			Postcode:       "SW1A 1AA",
			VehicleReg:     "AB12 CDE",
			Status:         "active",
			IssuedAt:       time.Now().Add(-24 * time.Hour),
			ExpiresAt:      time.Now().Add(364 * 24 * time.Hour),
		},
	}}

	deny := &captureDenyList{}
	svc := NewPolicyService(
		store,
		ratelimit.NewMemoryLimiter(ratelimit.Config{MaxRequests: 5, Window: 15 * time.Minute}),
		deny,
		auditlog.NewLog(100, nil),
		zap.NewNop(),
	)
	return svc, deny
}

func verifyReq() *policy.VerifyRequest {
	return &policy.VerifyRequest{
		PolicyNumber: "POL-2025-0001",
		AccessCode:   "CODE-1234",
		IPAddress:    "203.0.113.50",
		UserAgent:    "go-test",
	}
}

func TestVerifyAccessSuccess(t *testing.T) {
	svc, deny := newTestService(t)

	resp, err := svc.VerifyAccess(context.Background(), verifyReq())
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if resp.HolderName != "Jane Smith" {
		t.Errorf("HolderName = %q", resp.HolderName)
	}

	// The screening candidate merges record attributes with the request.
	if deny.last.Email != "jane@example.com" {
		t.Errorf("candidate email = %q, want record holder email", deny.last.Email)
	}
	if deny.last.AssetTag != "AB12 CDE" {
		t.Errorf("candidate asset tag = %q, want record vehicle reg", deny.last.AssetTag)
	}
	if deny.last.ClientIP != "203.0.113.50" {
		t.Errorf("candidate client ip = %q", deny.last.ClientIP)
	}
}

func TestVerifyUnknownPolicyAndWrongCodeIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	unknown := verifyReq()
	unknown.PolicyNumber = "POL-0000-9999"
	_, errUnknown := svc.VerifyAccess(ctx, unknown)

	wrong := verifyReq()
	wrong.AccessCode = "CODE-9999"
	_, errWrong := svc.VerifyAccess(ctx, wrong)

	if !errors.Is(errUnknown, xerrors.ErrInvalidCredentials) {
		t.Errorf("unknown policy: err = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrong, xerrors.ErrInvalidCredentials) {
		t.Errorf("wrong code: err = %v, want ErrInvalidCredentials", errWrong)
	}
}

func TestVerifyRateLimited(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := verifyReq()
	req.AccessCode = "CODE-9999"
	for i := 0; i < 5; i++ {
		svc.VerifyAccess(ctx, req)
	}

	// Correct code on the sixth attempt: still throttled.
	if _, err := svc.VerifyAccess(ctx, verifyReq()); !errors.Is(err, xerrors.ErrRateLimited) {
		t.Fatalf("sixth attempt: err = %v, want ErrRateLimited", err)
	}
}

func TestVerifyBlacklistedVehicleDenied(t *testing.T) {
	svc, deny := newTestService(t)
	deny.denyAssetTag = "AB12 CDE"

	_, err := svc.VerifyAccess(context.Background(), verifyReq())
	if !errors.Is(err, xerrors.ErrBlacklistDenied) {
		t.Fatalf("err = %v, want ErrBlacklistDenied", err)
	}
}
