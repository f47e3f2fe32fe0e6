// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"polisure-service/internal/pkg/ratelimit"
	"polisure-service/internal/pkg/response"
)

// RateLimitMiddleware throttles general API traffic per client address.
// The stricter login limiter lives inside the auth and policy services;
// this one only bounds overall request volume.
func RateLimitMiddleware(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Admit(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Error("rate limiter failure", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			response.TooManyRequests(c, "too many requests, slow down")
			return
		}

		c.Next()
	}
}
