package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

// amountHandler handles HTTP requests related to the budget amount ledger,
// including the three-stage consumption funnel.
type amountHandler struct {
	fundsService portssvc.FundsSvcFacade
}

// newAmountHandler creates a new amountHandler.
func newAmountHandler(fs portssvc.FundsSvcFacade) *amountHandler {
	return &amountHandler{
		fundsService: fs,
	}
}

// registerAmountRoutes registers routes related to the budget amount ledger.
func registerAmountRoutes(rg *gin.RouterGroup, fundsService portssvc.FundsSvcFacade) {
	h := newAmountHandler(fundsService)

	budgetAmounts := rg.Group("/budgets/:budgetID/amounts")
	{
		budgetAmounts.POST("", h.createAmount)
		budgetAmounts.GET("", h.listAmounts)
	}

	amounts := rg.Group("/amounts")
	{
		amounts.GET("/:budgetAmountID", h.getAmountByID)
		amounts.PUT("/:budgetAmountID", h.updateAmount)
		amounts.DELETE("/:budgetAmountID", h.deleteAmount)
		amounts.POST("/:budgetAmountID/adjust", h.adjustAmount)
		amounts.POST("/:budgetAmountID/commit", h.consumeCommitment)
		amounts.POST("/:budgetAmountID/release-commitment", h.releaseCommitment)
		amounts.POST("/:budgetAmountID/encumber", h.consumeEncumbrance)
		amounts.POST("/:budgetAmountID/release-encumbrance", h.releaseEncumbrance)
		amounts.POST("/:budgetAmountID/actual", h.consumeActual)
		amounts.POST("/:budgetAmountID/reverse-actual", h.reverseActual)
	}
}

// respondLedgerError maps ledger service errors onto the shared HTTP contract.
func respondLedgerError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Ledger row or budget not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn("Insufficient available budget", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrOverRelease):
		logger.Warn("Release exceeds consumed amount", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInactiveBudget):
		logger.Warn("Budget is not active", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		logger.Warn("Budget status does not permit this operation", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Segment already funded", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on ledger operation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Ledger operation failed in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// createAmount godoc
// @Summary Fund a budget segment
// @Description Creates the ledger row for an enrolled segment of a DRAFT budget
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   amount body dto.CreateAmountRequest true "Funding details"
// @Success 201 {object} dto.AmountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Budget or segment not found"
// @Failure 409 {object} map[string]string "Segment already funded or budget not DRAFT"
// @Failure 500 {object} map[string]string "Failed to create amount"
// @Security BearerAuth
// @Router /budgets/{budgetID}/amounts [post]
func (h *amountHandler) createAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.CreateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAmount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to fund budget segment", slog.String("budget_segment_id", req.BudgetSegmentID))

	amount, err := h.fundsService.CreateAmount(c.Request.Context(), budgetID, req, creatorUserID)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to create amount")
		return
	}

	logger.Info("Budget amount created successfully", slog.String("budget_amount_id", amount.BudgetAmountID))
	c.JSON(http.StatusCreated, dto.ToAmountResponse(amount))
}

// listAmounts godoc
// @Summary List the ledger rows of a budget
// @Description Retrieves a budget's amounts joined with their segment master entries
// @Tags amounts
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.ListAmountsResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to list amounts"
// @Security BearerAuth
// @Router /budgets/{budgetID}/amounts [get]
func (h *amountHandler) listAmounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))

	details, err := h.fundsService.ListAmounts(c.Request.Context(), budgetID)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to list amounts")
		return
	}

	logger.Info("Budget amounts listed successfully", slog.Int("count", len(details)))
	c.JSON(http.StatusOK, dto.ToListAmountsResponse(details))
}

// getAmountByID godoc
// @Summary Get a ledger row by ID
// @Description Retrieves a budget amount with its derived values
// @Tags amounts
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 500 {object} map[string]string "Failed to retrieve amount"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID} [get]
func (h *amountHandler) getAmountByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetAmountID := c.Param("budgetAmountID")

	logger = logger.With(slog.String("budget_amount_id", budgetAmountID))

	amount, err := h.fundsService.GetAmountByID(c.Request.Context(), budgetAmountID)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to retrieve amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToAmountResponse(amount))
}

// updateAmount godoc
// @Summary Update a ledger row
// @Description Updates a budget amount's details; the original budget only while the budget is DRAFT
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   amount body dto.UpdateAmountRequest true "Fields to update"
// @Success 200 {object} dto.AmountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 409 {object} map[string]string "Budget is not in DRAFT status"
// @Failure 500 {object} map[string]string "Failed to update amount"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID} [put]
func (h *amountHandler) updateAmount(c *gin.Context) {
	var req dto.UpdateAmountRequest
	h.mutateLedger(c, "update", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.UpdateAmount(ctx, budgetAmountID, req, userID)
	})
}

// deleteAmount godoc
// @Summary Delete a ledger row
// @Description Removes an unconsumed amount from a DRAFT budget
// @Tags amounts
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Success 204 "Amount deleted"
// @Failure 400 {object} map[string]string "Amount has recorded consumption"
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 409 {object} map[string]string "Budget is not in DRAFT status"
// @Failure 500 {object} map[string]string "Failed to delete amount"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID} [delete]
func (h *amountHandler) deleteAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetAmountID := c.Param("budgetAmountID")

	logger = logger.With(slog.String("budget_amount_id", budgetAmountID))
	logger.Info("Received request to delete budget amount")

	if err := h.fundsService.DeleteAmount(c.Request.Context(), budgetAmountID); err != nil {
		respondLedgerError(c, logger, err, "Failed to delete amount")
		return
	}

	logger.Info("Budget amount deleted successfully")
	c.Status(http.StatusNoContent)
}

// adjustAmount godoc
// @Summary Adjust a ledger row's budget ceiling
// @Description Applies a signed delta to the adjustment counter of an ACTIVE budget's amount
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   adjustment body dto.AdjustAmountRequest true "Signed adjustment"
// @Success 200 {object} dto.AmountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 409 {object} map[string]string "Budget is not ACTIVE"
// @Failure 422 {object} map[string]string "Adjustment would drop the ceiling below consumption"
// @Failure 500 {object} map[string]string "Failed to adjust amount"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/adjust [post]
func (h *amountHandler) adjustAmount(c *gin.Context) {
	var req dto.AdjustAmountRequest
	h.mutateLedger(c, "adjust", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.AdjustAmount(ctx, budgetAmountID, req, userID)
	})
}

// consumeCommitment godoc
// @Summary Record a commitment
// @Description Consumes Stage 1 committed budget against availability
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   consumption body dto.ConsumeCommitmentRequest true "Amount to commit"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 409 {object} map[string]string "Budget is not ACTIVE"
// @Failure 422 {object} map[string]string "Insufficient available budget"
// @Failure 500 {object} map[string]string "Failed to record commitment"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/commit [post]
func (h *amountHandler) consumeCommitment(c *gin.Context) {
	var req dto.ConsumeCommitmentRequest
	h.mutateLedger(c, "commit", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.ConsumeCommitment(ctx, budgetAmountID, req, userID)
	})
}

// releaseCommitment godoc
// @Summary Release a commitment
// @Description Frees Stage 1 committed budget
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   release body dto.ReleaseCommitmentRequest true "Amount to release"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 422 {object} map[string]string "Release exceeds the committed amount"
// @Failure 500 {object} map[string]string "Failed to release commitment"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/release-commitment [post]
func (h *amountHandler) releaseCommitment(c *gin.Context) {
	var req dto.ReleaseCommitmentRequest
	h.mutateLedger(c, "release-commitment", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.ReleaseCommitment(ctx, budgetAmountID, req, userID)
	})
}

// consumeEncumbrance godoc
// @Summary Record an encumbrance
// @Description Consumes Stage 2 encumbered budget, optionally releasing the matching commitment
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   consumption body dto.ConsumeEncumbranceRequest true "Amount to encumber"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 409 {object} map[string]string "Budget is not ACTIVE"
// @Failure 422 {object} map[string]string "Insufficient available budget or over-release"
// @Failure 500 {object} map[string]string "Failed to record encumbrance"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/encumber [post]
func (h *amountHandler) consumeEncumbrance(c *gin.Context) {
	var req dto.ConsumeEncumbranceRequest
	h.mutateLedger(c, "encumber", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.ConsumeEncumbrance(ctx, budgetAmountID, req, userID)
	})
}

// releaseEncumbrance godoc
// @Summary Release an encumbrance
// @Description Frees Stage 2 encumbered budget
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   release body dto.ReleaseEncumbranceRequest true "Amount to release"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 422 {object} map[string]string "Release exceeds the encumbered amount"
// @Failure 500 {object} map[string]string "Failed to release encumbrance"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/release-encumbrance [post]
func (h *amountHandler) releaseEncumbrance(c *gin.Context) {
	var req dto.ReleaseEncumbranceRequest
	h.mutateLedger(c, "release-encumbrance", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.ReleaseEncumbrance(ctx, budgetAmountID, req, userID)
	})
}

// consumeActual godoc
// @Summary Record actual spending
// @Description Consumes Stage 3 actual budget, optionally releasing the matching encumbrance
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   consumption body dto.ConsumeActualRequest true "Amount spent"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 409 {object} map[string]string "Budget is not ACTIVE"
// @Failure 422 {object} map[string]string "Insufficient available budget or over-release"
// @Failure 500 {object} map[string]string "Failed to record actual"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/actual [post]
func (h *amountHandler) consumeActual(c *gin.Context) {
	var req dto.ConsumeActualRequest
	h.mutateLedger(c, "actual", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.ConsumeActual(ctx, budgetAmountID, req, userID)
	})
}

// reverseActual godoc
// @Summary Reverse actual spending
// @Description Backs out Stage 3 actual budget for credit memos and corrections
// @Tags amounts
// @Accept  json
// @Produce  json
// @Param   budgetAmountID path string true "Budget Amount ID"
// @Param   reversal body dto.ReverseActualRequest true "Amount to reverse"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Amount not found"
// @Failure 422 {object} map[string]string "Reversal exceeds the actual amount"
// @Failure 500 {object} map[string]string "Failed to reverse actual"
// @Security BearerAuth
// @Router /amounts/{budgetAmountID}/reverse-actual [post]
func (h *amountHandler) reverseActual(c *gin.Context) {
	var req dto.ReverseActualRequest
	h.mutateLedger(c, "reverse-actual", &req, func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error) {
		return h.fundsService.ReverseActual(ctx, budgetAmountID, req, userID)
	})
}

// mutateLedger binds the request body, resolves the acting user and runs the
// given ledger mutation, responding with the updated row.
func (h *amountHandler) mutateLedger(c *gin.Context, action string, req interface{}, fn func(ctx context.Context, budgetAmountID, userID string) (*domain.BudgetAmount, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetAmountID := c.Param("budgetAmountID")

	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Failed to bind JSON for ledger mutation", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_amount_id", budgetAmountID), slog.String("user_id", userID), slog.String("action", action))
	logger.Info("Received ledger mutation request")

	amount, err := fn(c.Request.Context(), budgetAmountID, userID)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to "+action)
		return
	}

	logger.Info("Ledger mutation succeeded")
	c.JSON(http.StatusOK, dto.ToAmountResponse(amount))
}
