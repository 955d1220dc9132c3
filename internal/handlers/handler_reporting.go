package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

// reportingHandler handles HTTP requests for cross-budget reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the reporting routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/violations", h.getViolationsReport)
	}
}

// getViolationsReport godoc
// @Summary List over-threshold budget utilization
// @Description Retrieves the ledger rows of active budgets whose utilization is at or above the threshold percentage
// @Tags reports
// @Produce  json
// @Param   threshold query number false "Utilization threshold percentage" default(80)
// @Success 200 {object} dto.ViolationsReportResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to build violations report"
// @Security BearerAuth
// @Router /reports/violations [get]
func (h *reportingHandler) getViolationsReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ViolationsReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ViolationsReport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.reportingService.GetViolationsReport(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to build violations report in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build violations report"})
		return
	}

	logger.Info("Violations report built successfully", slog.Int("count", report.Count))
	c.JSON(http.StatusOK, report)
}
