package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	authdomain "polisure-service/internal/domain/auth"
	"polisure-service/internal/domain/blacklist"
	"polisure-service/internal/middleware"
	auditlog "polisure-service/internal/pkg/audit"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/ratelimit"
	"polisure-service/internal/pkg/session"
	authUsecase "polisure-service/internal/service/auth"
)

type stubPrincipalStore struct {
	byEmail map[string]*authdomain.Principal
}

func (s *stubPrincipalStore) FindByEmail(_ context.Context, email string) (*authdomain.Principal, error) {
	p, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (s *stubPrincipalStore) FindByID(context.Context, int64) (*authdomain.Principal, error) {
	return nil, xerrors.ErrNotFound
}

func (s *stubPrincipalStore) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }
func (s *stubPrincipalStore) Create(context.Context, *authdomain.Principal) error { return nil }
func (s *stubPrincipalStore) UpdateLastLogin(context.Context, int64) error        { return nil }
func (s *stubPrincipalStore) Delete(context.Context, int64) error                 { return nil }

type allowAllDenyList struct{}

func (allowAllDenyList) Check(context.Context, blacklist.Candidate) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	store := &stubPrincipalStore{byEmail: map[string]*authdomain.Principal{
		"user@example.com": {
			ID:           1,
			Email:        "user@example.com",
			FullName:     "Test User",
			PasswordHash: string(hash),
			Class:        authdomain.ClassStandard,
			Status:       "active",
		},
	}}

	svc := authUsecase.NewAuthService(
		store,
		session.NewManager(session.NewMemoryStore(), session.DefaultConfig()),
		ratelimit.NewMemoryLimiter(ratelimit.Config{MaxRequests: 5, Window: 15 * time.Minute}),
		allowAllDenyList{},
		auditlog.NewLog(100, zap.NewNop()),
		zap.NewNop(),
	)
	handler := NewAuthHandler(svc, true, zap.NewNop())

	r := gin.New()
	r.POST("/api/v1/auth/login", handler.Login)
	return r
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r := newTestRouter(t)

	body := `{"email":"user@example.com","password":"correct-horse","remember_me":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), `"session_token"`) {
		t.Fatal("session token must not appear in the response body")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("cookie must be Secure")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
	// Standard session without remember_me: cookie lives for the 24h
	// absolute TTL, give or take test latency.
	if cookie.MaxAge < 23*3600 || cookie.MaxAge > 24*3600 {
		t.Errorf("MaxAge = %d, want ~24h", cookie.MaxAge)
	}
	if len(cookie.Value) < 43 {
		t.Errorf("token length = %d, want >= 43 (256-bit base64url)", len(cookie.Value))
	}
}

func TestLoginWrongPasswordGives401(t *testing.T) {
	r := newTestRouter(t)

	body := `{"email":"user@example.com","password":"wrong","remember_me":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("no cookie should be set on failed login")
	}
}
