package dto

import (
	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ViolationsReportParams defines query parameters for the violations report.
// Threshold is a utilization percentage; rows at or above it are reported.
type ViolationsReportParams struct {
	Threshold float64 `form:"threshold,default=80"`
}

// ViolationRowResponse is one over-threshold ledger row across active budgets.
type ViolationRowResponse struct {
	BudgetID              string              `json:"budgetID"`
	BudgetCode            string              `json:"budgetCode"`
	BudgetName            string              `json:"budgetName"`
	SegmentCode           string              `json:"segmentCode"`
	SegmentType           string              `json:"segmentType"`
	ControlLevel          domain.ControlLevel `json:"controlLevel"`
	TotalBudget           decimal.Decimal     `json:"totalBudget"`
	ConsumedTotal         decimal.Decimal     `json:"consumedTotal"`
	Available             decimal.Decimal     `json:"available"`
	UtilizationPercentage decimal.Decimal     `json:"utilizationPercentage"`
	OverBudget            bool                `json:"overBudget"`
}

// ViolationsReportResponse wraps the violations report.
type ViolationsReportResponse struct {
	Threshold  float64                `json:"threshold"`
	Count      int                    `json:"count"`
	Violations []ViolationRowResponse `json:"violations"`
}

// ToViolationRowResponse converts a domain.AmountDetail to ViolationRowResponse DTO
func ToViolationRowResponse(d *domain.AmountDetail) ViolationRowResponse {
	return ViolationRowResponse{
		BudgetID:              d.Budget.BudgetID,
		BudgetCode:            d.Budget.BudgetCode,
		BudgetName:            d.Budget.BudgetName,
		SegmentCode:           d.SegmentValue.Code,
		SegmentType:           d.SegmentValue.SegmentTypeName,
		ControlLevel:          d.EffectiveControlLevel(),
		TotalBudget:           d.Amount.TotalBudget(),
		ConsumedTotal:         d.Amount.ConsumedTotal(),
		Available:             d.Amount.Available(),
		UtilizationPercentage: d.Amount.UtilizationPercentage(),
		OverBudget:            d.Amount.Available().IsNegative(),
	}
}

// ImportResultResponse is the row-partial outcome of a bulk amount import.
type ImportResultResponse struct {
	TotalRows     int             `json:"totalRows"`
	SuccessCount  int             `json:"successCount"`
	ImportedCount int             `json:"importedCount"`
	ErrorCount    int             `json:"errorCount"`
	Errors        []string        `json:"errors"`
	TotalBudget   decimal.Decimal `json:"totalBudget"`
}

// ToImportResultResponse converts a domain.ImportResult to ImportResultResponse DTO
func ToImportResultResponse(r *domain.ImportResult) ImportResultResponse {
	return ImportResultResponse{
		TotalRows:     r.TotalRows,
		SuccessCount:  r.SuccessCount,
		ImportedCount: r.ImportedCount,
		ErrorCount:    r.ErrorCount,
		Errors:        r.Errors,
		TotalBudget:   r.TotalBudget,
	}
}
