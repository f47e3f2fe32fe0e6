// internal/middleware/helpers.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"polisure-service/internal/pkg/session"
)

// GetSession gets the validated session from context
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

// MustGetSession gets the validated session from context or panics
func MustGetSession(c *gin.Context) *session.Session {
	sess, ok := GetSession(c)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// IsAuthenticated checks if request carries a validated session
func IsAuthenticated(c *gin.Context) bool {
	_, ok := GetSession(c)
	return ok
}
