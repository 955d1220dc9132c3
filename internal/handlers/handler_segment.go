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

// segmentHandler handles HTTP requests related to budget segment memberships
// and the segment master.
type segmentHandler struct {
	segmentService portssvc.SegmentSvcFacade
	budgetService  portssvc.BudgetReaderSvc
}

// newSegmentHandler creates a new segmentHandler.
func newSegmentHandler(ss portssvc.SegmentSvcFacade, bs portssvc.BudgetReaderSvc) *segmentHandler {
	return &segmentHandler{
		segmentService: ss,
		budgetService:  bs,
	}
}

// registerSegmentRoutes registers routes related to budget segments.
func registerSegmentRoutes(rg *gin.RouterGroup, segmentService portssvc.SegmentSvcFacade, budgetService portssvc.BudgetReaderSvc) {
	h := newSegmentHandler(segmentService, budgetService)

	budgetSegments := rg.Group("/budgets/:budgetID/segments")
	{
		budgetSegments.POST("", h.addSegments)
		budgetSegments.GET("", h.listSegments)
	}

	segments := rg.Group("/segments")
	{
		segments.PUT("/:budgetSegmentID", h.updateSegment)
		segments.DELETE("/:budgetSegmentID", h.removeSegment)
	}

	rg.GET("/segment-values", h.listSegmentValues)
}

// addSegments godoc
// @Summary Enroll segment values into a budget
// @Description Adds segment master entries to a DRAFT budget so they can be funded
// @Tags segments
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   segments body dto.AddSegmentsRequest true "Segment value IDs to enroll"
// @Success 201 {object} dto.ListSegmentsResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown segment value"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget is not DRAFT or segment already enrolled"
// @Failure 500 {object} map[string]string "Failed to add segments"
// @Security BearerAuth
// @Router /budgets/{budgetID}/segments [post]
func (h *segmentHandler) addSegments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.AddSegmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddSegments", slog.String("error", err.Error()))
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
	logger.Info("Received request to add budget segments", slog.Int("count", len(req.SegmentValueIDs)))

	details, err := h.segmentService.AddSegments(c.Request.Context(), budgetID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for segment enrollment")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Warn("Budget is not in DRAFT status", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Segment already enrolled in budget", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error adding segments", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to add segments in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add segments"})
		}
		return
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), budgetID)
	if err != nil {
		logger.Error("Failed to reload budget after segment enrollment", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add segments"})
		return
	}

	logger.Info("Budget segments added successfully", slog.Int("count", len(details)))
	c.JSON(http.StatusCreated, dto.ToListSegmentsResponse(details, budget.DefaultControlLevel))
}

// listSegments godoc
// @Summary List the segments of a budget
// @Description Retrieves a budget's memberships with their effective control levels
// @Tags segments
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.ListSegmentsResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to list segments"
// @Security BearerAuth
// @Router /budgets/{budgetID}/segments [get]
func (h *segmentHandler) listSegments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for segment listing")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			logger.Error("Failed to get budget from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list segments"})
		}
		return
	}

	details, err := h.segmentService.ListSegments(c.Request.Context(), budgetID)
	if err != nil {
		logger.Error("Failed to list segments from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list segments"})
		return
	}

	logger.Info("Budget segments listed successfully", slog.Int("count", len(details)))
	c.JSON(http.StatusOK, dto.ToListSegmentsResponse(details, budget.DefaultControlLevel))
}

// updateSegment godoc
// @Summary Update a budget segment
// @Description Updates a membership's control level override, active flag or notes
// @Tags segments
// @Accept  json
// @Produce  json
// @Param   budgetSegmentID path string true "Budget Segment ID"
// @Param   segment body dto.UpdateSegmentRequest true "Fields to update"
// @Success 200 {object} dto.BudgetSegmentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Segment not found"
// @Failure 500 {object} map[string]string "Failed to update segment"
// @Security BearerAuth
// @Router /segments/{budgetSegmentID} [put]
func (h *segmentHandler) updateSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetSegmentID := c.Param("budgetSegmentID")

	var req dto.UpdateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSegment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Updater user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_segment_id", budgetSegmentID), slog.String("updater_user_id", updaterUserID))
	logger.Info("Received request to update budget segment")

	updated, err := h.segmentService.UpdateSegment(c.Request.Context(), budgetSegmentID, req, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Segment not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Segment not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating segment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update segment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update segment"})
		}
		return
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), updated.BudgetID)
	if err != nil {
		logger.Error("Failed to reload budget after segment update", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update segment"})
		return
	}

	details, err := h.segmentService.ListSegments(c.Request.Context(), updated.BudgetID)
	if err != nil {
		logger.Error("Failed to reload segments after segment update", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update segment"})
		return
	}

	logger.Info("Budget segment updated successfully")
	for i := range details {
		if details[i].BudgetSegmentID == updated.BudgetSegmentID {
			c.JSON(http.StatusOK, dto.ToBudgetSegmentResponse(&details[i], budget.DefaultControlLevel))
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update segment"})
}

// removeSegment godoc
// @Summary Remove a budget segment
// @Description Removes an unfunded membership from a DRAFT budget
// @Tags segments
// @Param   budgetSegmentID path string true "Budget Segment ID"
// @Success 204 "Segment removed"
// @Failure 400 {object} map[string]string "Segment has a funded amount"
// @Failure 404 {object} map[string]string "Segment not found"
// @Failure 409 {object} map[string]string "Budget is not in DRAFT status"
// @Failure 500 {object} map[string]string "Failed to remove segment"
// @Security BearerAuth
// @Router /segments/{budgetSegmentID} [delete]
func (h *segmentHandler) removeSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetSegmentID := c.Param("budgetSegmentID")

	logger = logger.With(slog.String("budget_segment_id", budgetSegmentID))
	logger.Info("Received request to remove budget segment")

	err := h.segmentService.RemoveSegment(c.Request.Context(), budgetSegmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Segment not found for removal")
			c.JSON(http.StatusNotFound, gin.H{"error": "Segment not found"})
		} else if errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Warn("Budget is not in DRAFT status", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Segment has a funded amount", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to remove segment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove segment"})
		}
		return
	}

	logger.Info("Budget segment removed successfully")
	c.Status(http.StatusNoContent)
}

// listSegmentValues godoc
// @Summary List the segment master
// @Description Retrieves segment master entries available for enrollment
// @Tags segments
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListSegmentValuesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list segment values"
// @Security BearerAuth
// @Router /segment-values [get]
func (h *segmentHandler) listSegmentValues(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListSegmentValuesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListSegmentValues", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	values, err := h.segmentService.ListSegmentValues(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list segment values from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list segment values"})
		return
	}

	logger.Info("Segment values listed successfully", slog.Int("count", len(values)))
	c.JSON(http.StatusOK, dto.ToListSegmentValuesResponse(values))
}
