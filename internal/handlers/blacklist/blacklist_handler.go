// internal/handlers/blacklist/blacklist_handler.go
package blacklist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"polisure-service/internal/domain/blacklist"
	"polisure-service/internal/middleware"
	xerrors "polisure-service/internal/pkg/errors"
	"polisure-service/internal/pkg/response"
	blacklistUsecase "polisure-service/internal/service/blacklist"
)

type BlacklistHandler struct {
	service *blacklistUsecase.Service
}

func NewBlacklistHandler(service *blacklistUsecase.Service) *BlacklistHandler {
	return &BlacklistHandler{service: service}
}

func actorFrom(c *gin.Context) blacklistUsecase.Actor {
	sess := middleware.MustGetSession(c)
	return blacklistUsecase.Actor{
		PrincipalID: sess.PrincipalID,
		Email:       sess.Email,
		ClientIP:    c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
	}
}

// List returns all blacklist entries
func (h *BlacklistHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list entries", nil)
		return
	}
	response.Success(c, http.StatusOK, "ok", entries)
}

// Create adds a blacklist entry
func (h *BlacklistHandler) Create(c *gin.Context) {
	var req blacklist.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	entry, err := h.service.Create(c.Request.Context(), &req, actorFrom(c))
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create entry", nil)
		return
	}

	response.Success(c, http.StatusCreated, "entry created", entry)
}

// Update replaces a blacklist entry's rule and reason
func (h *BlacklistHandler) Update(c *gin.Context) {
	var req blacklist.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), &req, actorFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "entry not found")
		case errors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update entry", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "entry updated", entry)
}

// Delete removes a blacklist entry
func (h *BlacklistHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "entry not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete entry", nil)
		return
	}

	response.Success(c, http.StatusOK, "entry deleted", nil)
}
