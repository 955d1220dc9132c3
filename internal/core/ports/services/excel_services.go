package services

import (
	"context"
	"io"

	"github.com/procureflow/budget_control_app/internal/core/domain"
)

// ExcelSvcFacade handles bulk spreadsheet exchange for budget amounts.
type ExcelSvcFacade interface {
	// ImportAmounts loads budget amounts into a DRAFT budget from an xlsx
	// upload. Row failures are reported per row; valid rows still load.
	ImportAmounts(ctx context.Context, budgetID string, file io.Reader, userID string) (*domain.ImportResult, error)

	// ExportBudget renders a budget with its funded segments as an xlsx
	// workbook and returns the serialized file.
	ExportBudget(ctx context.Context, budgetID string) ([]byte, error)

	// GenerateTemplate renders an import template pre-filled with the
	// budget's enrolled segment codes.
	GenerateTemplate(ctx context.Context, budgetID string) ([]byte, error)
}
