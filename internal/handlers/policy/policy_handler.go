// internal/handlers/policy/policy_handler.go
package policy

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"polisure-service/internal/domain/policy"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/response"
	policyUsecase "polisure-service/internal/service/policy"
)

type PolicyHandler struct {
	service *policyUsecase.PolicyService
	logger  *zap.Logger
}

func NewPolicyHandler(service *policyUsecase.PolicyService, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{service: service, logger: logger}
}

// Verify checks a policy number plus one-time access code
func (h *PolicyHandler) Verify(c *gin.Context) {
	var req policy.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	resp, err := h.service.VerifyAccess(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrRateLimited):
			response.TooManyRequests(c, "too many attempts, try again later")
		case errors.Is(err, xerrors.ErrBlacklistDenied):
			// deliberately generic: the denial must not reveal which
			// attribute tripped it
			response.Forbidden(c, "request denied")
		case errors.Is(err, xerrors.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid policy number or access code")
		default:
			h.logger.Error("policy verification failure", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "verification failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "policy verified", resp)
}
