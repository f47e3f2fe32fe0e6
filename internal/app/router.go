// internal/app/router.go
package app

import (
	auditHandler "polisure-service/internal/handlers/audit"
	authHandler "polisure-service/internal/handlers/auth"
	blacklistHandler "polisure-service/internal/handlers/blacklist"
	policyHandler "polisure-service/internal/handlers/policy"
	"polisure-service/internal/middleware"
	"polisure-service/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	PolicyHandler    *policyHandler.PolicyHandler
	BlacklistHandler *blacklistHandler.BlacklistHandler
	AuditHandler     *auditHandler.AuditHandler
	AuthMiddleware   *middleware.AuthMiddleware
	APILimiter       ratelimit.Limiter
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(h.APILimiter, logger))

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Policy Access ====================
	policies := api.Group("/policies")
	{
		policies.POST("/verify", h.PolicyHandler.Verify)
	}

	// ==================== Administration ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/blacklist", h.BlacklistHandler.List)
		admin.POST("/blacklist", h.BlacklistHandler.Create)
		admin.PUT("/blacklist/:id", h.BlacklistHandler.Update)
		admin.DELETE("/blacklist/:id", h.BlacklistHandler.Delete)

		admin.GET("/audit", h.AuditHandler.Query)

		admin.POST("/accounts", h.AuthHandler.CreateAdmin)
		admin.DELETE("/accounts/:id", h.AuthHandler.DeleteAdmin)
	}
}
