package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/middleware"
	"github.com/procureflow/budget_control_app/internal/utils/excelio"
)

// excelService handles bulk spreadsheet exchange for budget amounts.
type excelService struct {
	budgetRepo  portsrepo.BudgetRepositoryFacade
	segmentRepo portsrepo.SegmentRepositoryFacade
	fundsRepo   portsrepo.FundsRepositoryFacade
}

// NewExcelService creates a new ExcelService.
func NewExcelService(budgetRepo portsrepo.BudgetRepositoryFacade, segmentRepo portsrepo.SegmentRepositoryFacade, fundsRepo portsrepo.FundsRepositoryFacade) portssvc.ExcelSvcFacade {
	return &excelService{
		budgetRepo:  budgetRepo,
		segmentRepo: segmentRepo,
		fundsRepo:   fundsRepo,
	}
}

// Ensure excelService implements the portssvc.ExcelSvcFacade interface
var _ portssvc.ExcelSvcFacade = (*excelService)(nil)

// ImportAmounts loads budget amounts into a DRAFT budget from an xlsx upload.
// Validation is per row: a bad row is reported and skipped while the valid
// rows still load. Re-importing a segment replaces its original budget,
// adjustment and notes; consumption counters are never touched.
func (s *excelService) ImportAmounts(ctx context.Context, budgetID string, file io.Reader, userID string) (*domain.ImportResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.Status != domain.BudgetDraft {
		return nil, fmt.Errorf("%w: amounts can only be imported into a DRAFT budget", apperrors.ErrImportValidation)
	}

	rows, err := excelio.ParseAmountRows(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrImportValidation, err.Error())
	}

	now := time.Now().UTC()
	result := &domain.ImportResult{
		TotalRows:   len(rows),
		Errors:      []string{},
		TotalBudget: decimal.Zero,
	}
	seen := map[string]bool{}

	for _, row := range rows {
		if row.SegmentCode == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing segment code", row.RowNumber))
			continue
		}
		if seen[row.SegmentCode] {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate segment code '%s'", row.RowNumber, row.SegmentCode))
			continue
		}
		seen[row.SegmentCode] = true

		original := decimal.Zero
		if row.OriginalBudget != "" {
			original, err = decimal.NewFromString(row.OriginalBudget)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid original budget '%s'", row.RowNumber, row.OriginalBudget))
				continue
			}
		}
		adjustment := decimal.Zero
		if row.Adjustment != "" {
			adjustment, err = decimal.NewFromString(row.Adjustment)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid adjustment '%s'", row.RowNumber, row.Adjustment))
				continue
			}
		}
		if original.IsNegative() {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: original budget cannot be negative", row.RowNumber))
			continue
		}

		segment, err := s.segmentRepo.FindBudgetSegmentByCode(ctx, budgetID, row.SegmentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: segment code '%s' is not part of this budget", row.RowNumber, row.SegmentCode))
				continue
			}
			return nil, fmt.Errorf("failed to look up segment code %q: %w", row.SegmentCode, err)
		}

		amount := domain.BudgetAmount{
			BudgetAmountID:   uuid.NewString(),
			BudgetID:         budgetID,
			BudgetSegmentID:  segment.BudgetSegmentID,
			OriginalBudget:   original,
			AdjustmentAmount: adjustment,
			Notes:            row.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if _, err := s.fundsRepo.UpsertAmount(ctx, amount); err != nil {
			logger.Error("Failed to upsert imported amount", slog.String("error", err.Error()), slog.String("segment_code", row.SegmentCode))
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to save amount for '%s'", row.RowNumber, row.SegmentCode))
			continue
		}

		result.SuccessCount++
		result.ImportedCount++
		result.TotalBudget = result.TotalBudget.Add(original).Add(adjustment)
	}
	result.ErrorCount = len(result.Errors)

	logger.Info("Amount import finished",
		slog.String("budget_id", budgetID),
		slog.Int("total_rows", result.TotalRows),
		slog.Int("success", result.SuccessCount),
		slog.Int("errors", result.ErrorCount))
	return result, nil
}

// ExportBudget renders a budget with its funded segments as an xlsx workbook.
func (s *excelService) ExportBudget(ctx context.Context, budgetID string) ([]byte, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	details, err := s.fundsRepo.ListAmountDetails(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list amounts for budget %s: %w", budgetID, err)
	}
	data, err := excelio.BuildBudgetWorkbook(budget, details)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook for budget %s: %w", budgetID, err)
	}
	return data, nil
}

// GenerateTemplate renders an import template pre-filled with the budget's
// enrolled segment codes.
func (s *excelService) GenerateTemplate(ctx context.Context, budgetID string) ([]byte, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	segments, err := s.segmentRepo.ListBudgetSegments(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments for budget %s: %w", budgetID, err)
	}
	data, err := excelio.BuildImportTemplate(budget, segments)
	if err != nil {
		return nil, fmt.Errorf("failed to build template for budget %s: %w", budgetID, err)
	}
	return data, nil
}
