// internal/handlers/audit/audit_handler.go
package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditlog "polisure-service/internal/pkg/audit"
	"polisure-service/internal/pkg/response"
)

const maxPageSize = 500

type AuditHandler struct {
	log *auditlog.Log
}

func NewAuditHandler(log *auditlog.Log) *AuditHandler {
	return &AuditHandler{log: log}
}

// Query returns a newest-first page of audit entries (admin only)
func (h *AuditHandler) Query(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if limit <= 0 || limit > maxPageSize {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries := h.log.Query(limit, offset)
	response.Success(c, http.StatusOK, "ok", gin.H{
		"entries": entries,
		"total":   h.log.Len(),
		"limit":   limit,
		"offset":  offset,
	})
}
