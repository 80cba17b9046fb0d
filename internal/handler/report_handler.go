package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/internal/service"
	"autoshop/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	reports.Use(middleware.RequireRole(model.RoleAdmin))
	{
		reports.GET("/financial", h.GetFinancialReport)
		reports.GET("/financial/csv", h.ExportFinancialReport)
		reports.GET("/financial/export", h.ExportFinancialReport)
	}
}

// GetFinancialReport aggregates revenue and activity over a period
// @Summary      Financial report
// @Description  Revenue, completed orders, incoming requests and usage breakdowns for [from, to]
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  true  "Period start (YYYY-MM-DD)"
// @Param        to    query     string  true  "Period end (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=model.FinancialReport}
// @Failure      400   {object}  response.Response
// @Router       /reports/financial [get]
func (h *ReportHandler) GetFinancialReport(c *gin.Context) {
	report, err := h.reportService.GetFinancialReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ExportFinancialReport downloads the report as CSV
// @Summary      Export financial report
// @Description  Same aggregation as /reports/financial rendered as a semicolon-delimited CSV attachment
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        from  query     string  true  "Period start (YYYY-MM-DD)"
// @Param        to    query     string  true  "Period end (YYYY-MM-DD)"
// @Success      200   {string}  string  "CSV file"
// @Failure      400   {object}  response.Response
// @Router       /reports/financial/csv [get]
func (h *ReportHandler) ExportFinancialReport(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")

	report, err := h.reportService.GetFinancialReport(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}

	// Render into memory first so an encoding failure can still produce a
	// clean error response instead of a truncated download.
	var buf bytes.Buffer
	if err := h.reportService.WriteFinancialReportCSV(&buf, report); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to render report"))
		return
	}

	filename := fmt.Sprintf("financial-report_%s_%s.csv", from, to)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
