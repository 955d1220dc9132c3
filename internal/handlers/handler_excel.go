package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportFileSize caps xlsx uploads at 10 MiB.
const maxImportFileSize = 10 << 20

// excelHandler handles spreadsheet import and export for budget amounts.
type excelHandler struct {
	excelService portssvc.ExcelSvcFacade
}

// newExcelHandler creates a new excelHandler.
func newExcelHandler(es portssvc.ExcelSvcFacade) *excelHandler {
	return &excelHandler{
		excelService: es,
	}
}

// registerExcelRoutes registers the spreadsheet exchange routes.
func registerExcelRoutes(rg *gin.RouterGroup, excelService portssvc.ExcelSvcFacade) {
	h := newExcelHandler(excelService)

	budgets := rg.Group("/budgets/:budgetID")
	{
		budgets.POST("/amounts/import", h.importAmounts)
		budgets.GET("/export", h.exportBudget)
		budgets.GET("/import-template", h.generateTemplate)
	}
}

// importAmounts godoc
// @Summary Import budget amounts from a spreadsheet
// @Description Bulk loads amounts into a DRAFT budget from an xlsx upload. Rows that fail validation are reported individually; valid rows still load. Any failed row makes the response a 400 carrying the same result body.
// @Tags excel
// @Accept  multipart/form-data
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   file formData file true "xlsx file with segment code, original budget, adjustment and notes columns"
// @Success 200 {object} dto.ImportResultResponse
// @Failure 400 {object} dto.ImportResultResponse "Row errors, missing file, unreadable workbook or budget not DRAFT"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to import amounts"
// @Security BearerAuth
// @Router /budgets/{budgetID}/amounts/import [post]
func (h *excelHandler) importAmounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Missing file in import request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field with an xlsx upload is required"})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		logger.Warn("Import file too large", slog.Int64("size", fileHeader.Size))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file exceeds the 10MB limit"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		logger.Warn("Import file has unsupported extension", slog.String("filename", fileHeader.Filename))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx files are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("user_id", userID))
	logger.Info("Received amount import request", slog.String("filename", fileHeader.Filename), slog.Int64("size", fileHeader.Size))

	result, err := h.excelService.ImportAmounts(c.Request.Context(), budgetID, file, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for import")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrImportValidation) {
			logger.Warn("Import rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to import amounts in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import amounts"})
		}
		return
	}

	logger.Info("Amount import completed",
		slog.Int("total_rows", result.TotalRows),
		slog.Int("success_count", result.SuccessCount),
		slog.Int("error_count", result.ErrorCount))
	status := http.StatusOK
	if result.ErrorCount > 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, dto.ToImportResultResponse(result))
}

// exportBudget godoc
// @Summary Export a budget as a spreadsheet
// @Description Renders a budget with its funded segments as an xlsx workbook
// @Tags excel
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   budgetID path string true "Budget ID"
// @Success 200 {file} file "xlsx workbook"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to export budget"
// @Security BearerAuth
// @Router /budgets/{budgetID}/export [get]
func (h *excelHandler) exportBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))
	logger.Info("Received budget export request")

	data, err := h.excelService.ExportBudget(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for export")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			logger.Error("Failed to export budget in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export budget"})
		}
		return
	}

	logger.Info("Budget exported successfully", slog.Int("bytes", len(data)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=budget_%s.xlsx", budgetID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// generateTemplate godoc
// @Summary Download an amount import template
// @Description Renders an import template pre-filled with the budget's enrolled segment codes
// @Tags excel
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   budgetID path string true "Budget ID"
// @Success 200 {file} file "xlsx template"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to generate template"
// @Security BearerAuth
// @Router /budgets/{budgetID}/import-template [get]
func (h *excelHandler) generateTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))
	logger.Info("Received import template request")

	data, err := h.excelService.GenerateTemplate(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for template generation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			logger.Error("Failed to generate template in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		}
		return
	}

	logger.Info("Import template generated successfully", slog.Int("bytes", len(data)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=budget_%s_import_template.xlsx", budgetID))
	c.Data(http.StatusOK, xlsxContentType, data)
}
