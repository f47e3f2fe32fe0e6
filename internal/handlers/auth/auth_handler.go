// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"polisure-service/internal/domain/auth"
	"polisure-service/internal/middleware"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/response"
	authUsecase "polisure-service/internal/service/auth"
)

type AuthHandler struct {
	authService  *authUsecase.AuthService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// ========== Login ==========

// Login authenticates and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	// Set IP and User-Agent
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login rejected",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, xerrors.ErrRateLimited):
			response.TooManyRequests(c, "too many login attempts, try again later")
		case errors.Is(err, xerrors.ErrBlacklistDenied):
			response.Forbidden(c, "request denied")
		case errors.Is(err, xerrors.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid email or password")
		default:
			response.Error(c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	// Cookie lifetime aligns with the session's absolute TTL; the
	// inactivity bound is enforced server-side.
	maxAge := int(time.Until(loginResp.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, loginResp.SessionToken, maxAge, "/", "", h.cookieSecure, true)

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Logout ==========

// Logout destroys the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	if err := h.authService.Logout(c.Request.Context(), sess); err != nil {
		h.logger.Error("logout failed",
			zap.Int64("principal_id", sess.PrincipalID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "logout failed", nil)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Current principal ==========

// Me returns the principal behind the current session
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	response.Success(c, http.StatusOK, "ok", auth.UserInfo{
		ID:       sess.PrincipalID,
		Email:    sess.Email,
		FullName: sess.FullName,
		Class:    sess.Class,
		Role:     sess.Role,
	})
}

// ========== Administrative accounts ==========

// CreateAdmin provisions an administrative account (admin only)
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	var req auth.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	info, err := h.authService.CreateAdmin(c.Request.Context(), &req, sess)
	if err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "email already in use", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create account", nil)
		return
	}

	response.Success(c, http.StatusCreated, "account created", info)
}

// DeleteAdmin removes an administrative account (admin only)
func (h *AuthHandler) DeleteAdmin(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid account id", nil)
		return
	}

	if err := h.authService.DeleteAdmin(c.Request.Context(), id, sess); err != nil {
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "account not found")
		case errors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to delete account", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "account deleted", nil)
}
