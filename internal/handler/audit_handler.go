package handler

import (
	"net/http"

	"catering-backend/internal/middleware"
	"catering-backend/internal/policy"
	"catering-backend/internal/service"
	"catering-backend/pkg/pagination"
	"catering-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", middleware.Require(policy.ActionListAuditLogs), h.ListAuditLogs)
}

// ListAuditLogs returns the audit trail, optionally scoped to one request
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        request_id  query     string  false  "Filter by request"
// @Param        action      query     string  false  "Filter by action"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      500         {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.AuditFilter{
		RequestID: c.Query("request_id"),
		Action:    c.Query("action"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	logs, total, err := h.auditService.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, listEnvelope("audit_logs", logs, total, params.Page, params.Limit)))
}
