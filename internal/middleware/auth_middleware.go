// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"polisure-service/internal/domain/auth"
	"polisure-service/internal/pkg/response"
	authUsecase "polisure-service/internal/service/auth"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "polisure_session"

const sessionContextKey = "session"

type AuthMiddleware struct {
	authService *authUsecase.AuthService
}

func NewAuthMiddleware(authService *authUsecase.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the session cookie and attaches the session to the
// request context. Missing, unknown and expired sessions all produce the
// same 401.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		sess, err := m.authService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// RequireAdministrative rejects non-administrative principals.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireAdministrative() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if sess.Class != auth.ClassAdministrative {
			response.Error(c, http.StatusForbidden, "insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// AdminOnly returns middlewares for administrative routes (Auth + class check).
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireAdministrative(),
	}
}

// extractToken reads the session cookie, falling back to a Bearer header
// for non-browser clients.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
