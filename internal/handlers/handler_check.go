package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

// checkHandler handles HTTP requests for the budget check endpoint.
type checkHandler struct {
	checkService portssvc.CheckSvcFacade
}

// newCheckHandler creates a new checkHandler.
func newCheckHandler(cs portssvc.CheckSvcFacade) *checkHandler {
	return &checkHandler{
		checkService: cs,
	}
}

// registerCheckRoutes registers the budget check route.
func registerCheckRoutes(rg *gin.RouterGroup, checkService portssvc.CheckSvcFacade) {
	h := newCheckHandler(checkService)

	rg.POST("/budget-check", h.checkTransaction)
}

// checkTransaction godoc
// @Summary Check a candidate transaction against active budgets
// @Description Evaluates the requested amount against every ACTIVE budget covering the transaction date and returns the strictest outcome. The check never consumes budget. A blocked transaction still returns 200; the decision is in the response body.
// @Tags check
// @Accept  json
// @Produce  json
// @Param   check body dto.BudgetCheckRequest true "Candidate transaction"
// @Success 200 {object} dto.BudgetCheckResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to run budget check"
// @Security BearerAuth
// @Router /budget-check [post]
func (h *checkHandler) checkTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BudgetCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BudgetCheck", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received budget check request",
		slog.String("transaction_date", req.TransactionDate),
		slog.Int("segment_count", len(req.SegmentValueIDs)))

	result, err := h.checkService.CheckTransaction(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error on budget check", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to run budget check in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run budget check"})
		}
		return
	}

	logger.Info("Budget check completed",
		slog.Bool("allowed", result.Allowed),
		slog.String("control_level", string(result.ControlLevel)),
		slog.Int("budgets_evaluated", result.BudgetsEvaluated))
	c.JSON(http.StatusOK, result)
}
