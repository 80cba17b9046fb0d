package handler

import (
	"net/http"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/internal/service"
	"autoshop/pkg/pagination"
	"autoshop/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit", middleware.RequireRole(model.RoleAdmin), h.ListAuditLogs)
}

// ListAuditLogs returns the action trail, newest first
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response{data=handler.ListResponse}
// @Router       /audit [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ListResponse{
		Items: entries,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}
