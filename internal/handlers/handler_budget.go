package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

// budgetHandler handles HTTP requests related to budget definitions.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

// newBudgetHandler creates a new budgetHandler.
func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{
		budgetService: bs,
	}
}

// registerBudgetRoutes registers routes related to budget definitions.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.GET("/:budgetID", h.getBudgetByID)
		budgets.PUT("/:budgetID", h.updateBudget)
		budgets.DELETE("/:budgetID", h.deleteBudget)
		budgets.POST("/:budgetID/activate", h.activateBudget)
		budgets.POST("/:budgetID/deactivate", h.deactivateBudget)
		budgets.POST("/:budgetID/close", h.closeBudget)
		budgets.GET("/:budgetID/summary", h.getBudgetSummary)
	}
}

// createBudget godoc
// @Summary Create a new budget
// @Description Creates a budget definition in DRAFT status
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Budget code already exists"
// @Failure 500 {object} map[string]string "Failed to create budget"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create budget", slog.String("budget_code", req.BudgetCode))

	createdBudget, err := h.budgetService.CreateBudget(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Attempted to create duplicate budget", slog.String("budget_code", req.BudgetCode))
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Budget code '%s' already exists", req.BudgetCode)})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating budget", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create budget in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create budget"})
		}
		return
	}

	logger.Info("Budget created successfully", slog.String("budget_id", createdBudget.BudgetID))
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(createdBudget))
}

// listBudgets godoc
// @Summary List budgets
// @Description Retrieves budgets filtered by status, control level and covered date
// @Tags budgets
// @Produce  json
// @Param   status query string false "Budget status (DRAFT, ACTIVE, CLOSED)"
// @Param   controlLevel query string false "Default control level"
// @Param   date query string false "Date the budget period must cover (YYYY-MM-DD)"
// @Param   search query string false "Case-insensitive match against budget code and name"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListBudgetsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list budgets"
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBudgetsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListBudgets", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error listing budgets", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list budgets from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list budgets"})
		}
		return
	}

	logger.Info("Budgets listed successfully", slog.Int("count", len(budgets)))
	c.JSON(http.StatusOK, dto.ToListBudgetsResponse(budgets))
}

// getBudgetByID godoc
// @Summary Get a budget by ID
// @Description Retrieves details for a specific budget
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to retrieve budget"
// @Security BearerAuth
// @Router /budgets/{budgetID} [get]
func (h *budgetHandler) getBudgetByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			logger.Error("Failed to get budget from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// updateBudget godoc
// @Summary Update a budget
// @Description Updates a DRAFT budget's details
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   budget body dto.UpdateBudgetRequest true "Fields to update"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget is not in DRAFT status"
// @Failure 500 {object} map[string]string "Failed to update budget"
// @Security BearerAuth
// @Router /budgets/{budgetID} [put]
func (h *budgetHandler) updateBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Updater user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("updater_user_id", updaterUserID))
	logger.Info("Received request to update budget")

	updatedBudget, err := h.budgetService.UpdateBudget(c.Request.Context(), budgetID, req, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Warn("Budget is not editable", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating budget", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update budget in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		}
		return
	}

	logger.Info("Budget updated successfully")
	c.JSON(http.StatusOK, dto.ToBudgetResponse(updatedBudget))
}

// deleteBudget godoc
// @Summary Delete a budget
// @Description Deletes a DRAFT budget that has no funded amounts
// @Tags budgets
// @Param   budgetID path string true "Budget ID"
// @Success 204 "Budget deleted"
// @Failure 400 {object} map[string]string "Budget has funded amounts"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget is not in DRAFT status"
// @Failure 500 {object} map[string]string "Failed to delete budget"
// @Security BearerAuth
// @Router /budgets/{budgetID} [delete]
func (h *budgetHandler) deleteBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))
	logger.Info("Received request to delete budget")

	err := h.budgetService.DeleteBudget(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for delete")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Warn("Budget is not deletable", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Budget has funded amounts", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to delete budget in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget"})
		}
		return
	}

	logger.Info("Budget deleted successfully")
	c.Status(http.StatusNoContent)
}

// activateBudget godoc
// @Summary Activate a budget
// @Description Transitions a DRAFT budget to ACTIVE so it can be checked and consumed
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Budget has no segments or no amounts"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget cannot be activated from its current status"
// @Failure 500 {object} map[string]string "Failed to activate budget"
// @Security BearerAuth
// @Router /budgets/{budgetID}/activate [post]
func (h *budgetHandler) activateBudget(c *gin.Context) {
	h.transitionBudget(c, "activate", h.budgetService.ActivateBudget)
}

// deactivateBudget godoc
// @Summary Deactivate a budget
// @Description Switches an ACTIVE budget back to DRAFT for corrections
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget is not ACTIVE"
// @Failure 500 {object} map[string]string "Failed to deactivate budget"
// @Security BearerAuth
// @Router /budgets/{budgetID}/deactivate [post]
func (h *budgetHandler) deactivateBudget(c *gin.Context) {
	h.transitionBudget(c, "deactivate", h.budgetService.DeactivateBudget)
}

// closeBudget godoc
// @Summary Close a budget
// @Description Transitions a budget to its terminal CLOSED status
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget is already closed"
// @Failure 500 {object} map[string]string "Failed to close budget"
// @Security BearerAuth
// @Router /budgets/{budgetID}/close [post]
func (h *budgetHandler) closeBudget(c *gin.Context) {
	h.transitionBudget(c, "close", h.budgetService.CloseBudget)
}

// transitionBudget runs one of the budget lifecycle operations and maps its
// outcome onto the shared HTTP contract.
func (h *budgetHandler) transitionBudget(c *gin.Context, action string, fn func(ctx context.Context, budgetID, userID string) (*domain.Budget, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("user_id", userID), slog.String("action", action))
	logger.Info("Received budget lifecycle request")

	budget, err := fn(c.Request.Context(), budgetID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for lifecycle action")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrMissingPrerequisite) {
			logger.Warn("Budget is missing activation prerequisites", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Warn("Invalid budget status transition", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Budget lifecycle action failed in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to %s budget", action)})
		}
		return
	}

	logger.Info("Budget lifecycle action succeeded", slog.String("status", string(budget.Status)))
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// getBudgetSummary godoc
// @Summary Get a budget summary
// @Description Retrieves the aggregated consumption view of a budget with a per segment type breakdown
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetSummaryResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to build budget summary"
// @Security BearerAuth
// @Router /budgets/{budgetID}/summary [get]
func (h *budgetHandler) getBudgetSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))
	logger.Info("Received request for budget summary")

	summary, err := h.budgetService.GetBudgetSummary(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for summary")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			logger.Error("Failed to build budget summary in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build budget summary"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(summary))
}
