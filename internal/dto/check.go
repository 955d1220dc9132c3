package dto

import (
	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetCheckRequest defines a candidate transaction to validate against the
// active budgets covering its date.
type BudgetCheckRequest struct {
	SegmentValueIDs []string        `json:"segmentValueIDs" binding:"required,min=1"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate string          `json:"transactionDate" binding:"required,datetime=2006-01-02"`
}

// CheckViolationResponse reports one segment whose available budget does not
// cover the requested amount.
type CheckViolationResponse struct {
	Segment      string              `json:"segment"`
	SegmentType  string              `json:"segmentType"`
	ControlLevel domain.ControlLevel `json:"controlLevel"`
	TotalBudget  decimal.Decimal     `json:"totalBudget"`
	Committed    decimal.Decimal     `json:"committed"`
	Encumbered   decimal.Decimal     `json:"encumbered"`
	Actual       decimal.Decimal     `json:"actual"`
	Available    decimal.Decimal     `json:"available"`
	Requested    decimal.Decimal     `json:"requested"`
	Shortage     decimal.Decimal     `json:"shortage"`
}

// BudgetCheckResponse is the allow/block decision for a candidate transaction.
type BudgetCheckResponse struct {
	Allowed          bool                     `json:"allowed"`
	ControlLevel     domain.ControlLevel      `json:"controlLevel"`
	Message          string                   `json:"message"`
	Violations       []CheckViolationResponse `json:"violations"`
	BudgetsEvaluated int                      `json:"budgetsEvaluated"`
}

// ToBudgetCheckResponse converts a domain.CheckResult to BudgetCheckResponse DTO.
// budgetsEvaluated is the number of active budgets that covered the date.
func ToBudgetCheckResponse(result domain.CheckResult, budgetsEvaluated int) BudgetCheckResponse {
	violations := make([]CheckViolationResponse, len(result.Violations))
	for i, v := range result.Violations {
		violations[i] = CheckViolationResponse{
			Segment:      v.Segment,
			SegmentType:  v.SegmentType,
			ControlLevel: v.ControlLevel,
			TotalBudget:  v.TotalBudget,
			Committed:    v.Committed,
			Encumbered:   v.Encumbered,
			Actual:       v.Actual,
			Available:    v.Available,
			Requested:    v.Requested,
			Shortage:     v.Shortage,
		}
	}
	return BudgetCheckResponse{
		Allowed:          result.Allowed,
		ControlLevel:     result.ControlLevel,
		Message:          result.Message,
		Violations:       violations,
		BudgetsEvaluated: budgetsEvaluated,
	}
}
