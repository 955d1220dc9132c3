package dto

import (
	"time"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a new budget.
// Dates are date-only strings; the effective period is inclusive on both ends.
type CreateBudgetRequest struct {
	BudgetCode          string              `json:"budgetCode" binding:"required"`
	BudgetName          string              `json:"budgetName" binding:"required"`
	Description         string              `json:"description"`
	StartDate           string              `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate             string              `json:"endDate" binding:"required,datetime=2006-01-02"`
	CurrencyCode        string              `json:"currencyCode" binding:"required,uppercase,len=3"`
	DefaultControlLevel domain.ControlLevel `json:"defaultControlLevel" binding:"required,controllevel"`
	Notes               string              `json:"notes"`
}

// UpdateBudgetRequest defines the data allowed for updating a budget.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateBudgetRequest struct {
	BudgetName          *string              `json:"budgetName"`
	Description         *string              `json:"description"`
	StartDate           *string              `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate             *string              `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	DefaultControlLevel *domain.ControlLevel `json:"defaultControlLevel" binding:"omitempty,controllevel"`
	Notes               *string              `json:"notes"`
}

// ListBudgetsParams defines query parameters for listing budgets.
type ListBudgetsParams struct {
	Status       string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE CLOSED"`
	ControlLevel string `form:"controlLevel" binding:"omitempty,controllevel"`
	Date         string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Search       string `form:"search"`
	Limit        int    `form:"limit,default=20"`
	Offset       int    `form:"offset,default=0"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID            string              `json:"budgetID"`
	BudgetCode          string              `json:"budgetCode"`
	BudgetName          string              `json:"budgetName"`
	Description         string              `json:"description"`
	StartDate           string              `json:"startDate"`
	EndDate             string              `json:"endDate"`
	CurrencyCode        string              `json:"currencyCode"`
	DefaultControlLevel domain.ControlLevel `json:"defaultControlLevel"`
	Status              domain.BudgetStatus `json:"status"`
	IsActive            bool                `json:"isActive"`
	Notes               string              `json:"notes"`
	ActivatedBy         string              `json:"activatedBy,omitempty"`
	ActivatedAt         *time.Time          `json:"activatedAt,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	CreatedBy           string              `json:"createdBy"`
	LastUpdatedAt       time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy       string              `json:"lastUpdatedBy"`
}

// ListBudgetsResponse wraps the list of budgets.
type ListBudgetsResponse struct {
	Budgets []BudgetResponse `json:"budgets"`
}

// BudgetTotalsResponse defines the aggregated ledger counters of a budget,
// including the derived values.
type BudgetTotalsResponse struct {
	TotalOriginal         decimal.Decimal `json:"totalOriginal"`
	TotalAdjustments      decimal.Decimal `json:"totalAdjustments"`
	TotalBudget           decimal.Decimal `json:"totalBudget"`
	TotalCommitted        decimal.Decimal `json:"totalCommitted"`
	TotalEncumbered       decimal.Decimal `json:"totalEncumbered"`
	TotalActual           decimal.Decimal `json:"totalActual"`
	TotalConsumed         decimal.Decimal `json:"totalConsumed"`
	TotalAvailable        decimal.Decimal `json:"totalAvailable"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
}

// SegmentTypeBreakdownResponse defines one segment type row of a budget summary.
type SegmentTypeBreakdownResponse struct {
	SegmentType           string          `json:"segmentType"`
	TotalBudget           decimal.Decimal `json:"totalBudget"`
	Committed             decimal.Decimal `json:"committed"`
	Encumbered            decimal.Decimal `json:"encumbered"`
	Actual                decimal.Decimal `json:"actual"`
	Available             decimal.Decimal `json:"available"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
	Count                 int             `json:"count"`
}

// BudgetSummaryResponse defines the full reporting view of a budget.
type BudgetSummaryResponse struct {
	Budget           BudgetResponse                 `json:"budget"`
	Totals           BudgetTotalsResponse           `json:"totals"`
	SegmentBreakdown []SegmentTypeBreakdownResponse `json:"segmentBreakdown"`
}

// ToBudgetResponse converts a domain.Budget to BudgetResponse DTO
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:            b.BudgetID,
		BudgetCode:          b.BudgetCode,
		BudgetName:          b.BudgetName,
		Description:         b.Description,
		StartDate:           b.StartDate.Format("2006-01-02"),
		EndDate:             b.EndDate.Format("2006-01-02"),
		CurrencyCode:        b.CurrencyCode,
		DefaultControlLevel: b.DefaultControlLevel,
		Status:              b.Status,
		IsActive:            b.IsActive,
		Notes:               b.Notes,
		ActivatedBy:         b.ActivatedBy,
		ActivatedAt:         b.ActivatedAt,
		CreatedAt:           b.CreatedAt,
		CreatedBy:           b.CreatedBy,
		LastUpdatedAt:       b.LastUpdatedAt,
		LastUpdatedBy:       b.LastUpdatedBy,
	}
}

// ToListBudgetsResponse converts a slice of domain.Budget to ListBudgetsResponse
func ToListBudgetsResponse(budgets []domain.Budget) ListBudgetsResponse {
	res := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		res[i] = ToBudgetResponse(&b)
	}
	return ListBudgetsResponse{Budgets: res}
}

// ToBudgetTotalsResponse converts domain.BudgetTotals to BudgetTotalsResponse DTO
func ToBudgetTotalsResponse(t domain.BudgetTotals) BudgetTotalsResponse {
	return BudgetTotalsResponse{
		TotalOriginal:         t.TotalOriginal,
		TotalAdjustments:      t.TotalAdjustments,
		TotalBudget:           t.TotalBudget(),
		TotalCommitted:        t.TotalCommitted,
		TotalEncumbered:       t.TotalEncumbered,
		TotalActual:           t.TotalActual,
		TotalConsumed:         t.TotalConsumed(),
		TotalAvailable:        t.TotalAvailable(),
		UtilizationPercentage: t.UtilizationPercentage(),
	}
}

// ToBudgetSummaryResponse converts a domain.BudgetSummary to BudgetSummaryResponse DTO
func ToBudgetSummaryResponse(s *domain.BudgetSummary) BudgetSummaryResponse {
	breakdown := make([]SegmentTypeBreakdownResponse, len(s.Breakdown))
	for i, b := range s.Breakdown {
		breakdown[i] = SegmentTypeBreakdownResponse{
			SegmentType:           b.SegmentType,
			TotalBudget:           b.TotalBudget,
			Committed:             b.Committed,
			Encumbered:            b.Encumbered,
			Actual:                b.Actual,
			Available:             b.Available,
			UtilizationPercentage: b.UtilizationPercentage,
			Count:                 b.Count,
		}
	}
	return BudgetSummaryResponse{
		Budget:           ToBudgetResponse(&s.Budget),
		Totals:           ToBudgetTotalsResponse(s.Totals),
		SegmentBreakdown: breakdown,
	}
}
