package dto

import (
	"time"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAmountRequest defines the data needed to fund a budget segment.
type CreateAmountRequest struct {
	BudgetSegmentID string          `json:"budgetSegmentID" binding:"required"`
	OriginalBudget  decimal.Decimal `json:"originalBudget" binding:"required"`
	Notes           string          `json:"notes"`
}

// UpdateAmountRequest defines the data allowed for updating a ledger row.
// The original budget may only change while the budget is still DRAFT; notes
// are updatable at any time. Pointers distinguish omitted fields.
type UpdateAmountRequest struct {
	OriginalBudget *decimal.Decimal `json:"originalBudget"`
	Notes          *string          `json:"notes"`
}

// AdjustAmountRequest defines a signed change to a ledger row's budget ceiling.
type AdjustAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason"`
}

// ConsumeCommitmentRequest records a Stage 1 commitment (PR approval).
type ConsumeCommitmentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ReleaseCommitmentRequest frees committed budget (PR cancellation).
type ReleaseCommitmentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ConsumeEncumbranceRequest records a Stage 2 encumbrance (PO approval).
// ReleaseCommitment moves the amount out of the committed counter (PR->PO
// flow); when false the encumbrance is validated against availability.
type ConsumeEncumbranceRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	ReleaseCommitment bool            `json:"releaseCommitment"`
}

// ReleaseEncumbranceRequest frees encumbered budget (PO cancellation).
type ReleaseEncumbranceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ConsumeActualRequest records Stage 3 actual spending (invoice posting).
type ConsumeActualRequest struct {
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	ReleaseEncumbrance bool            `json:"releaseEncumbrance"`
}

// ReverseActualRequest backs out actual spending (credit memo or correction).
type ReverseActualRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AmountResponse defines the data returned for a ledger row, including the
// derived values.
type AmountResponse struct {
	BudgetAmountID        string          `json:"budgetAmountID"`
	BudgetID              string          `json:"budgetID"`
	BudgetSegmentID       string          `json:"budgetSegmentID"`
	OriginalBudget        decimal.Decimal `json:"originalBudget"`
	AdjustmentAmount      decimal.Decimal `json:"adjustmentAmount"`
	TotalBudget           decimal.Decimal `json:"totalBudget"`
	CommittedAmount       decimal.Decimal `json:"committedAmount"`
	EncumberedAmount      decimal.Decimal `json:"encumberedAmount"`
	ActualAmount          decimal.Decimal `json:"actualAmount"`
	ConsumedTotal         decimal.Decimal `json:"consumedTotal"`
	Available             decimal.Decimal `json:"available"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
	Notes                 string          `json:"notes"`
	LastCommittedAt       *time.Time      `json:"lastCommittedAt,omitempty"`
	LastEncumberedAt      *time.Time      `json:"lastEncumberedAt,omitempty"`
	LastActualAt          *time.Time      `json:"lastActualAt,omitempty"`
	LastAdjustedAt        *time.Time      `json:"lastAdjustedAt,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	CreatedBy             string          `json:"createdBy"`
	LastUpdatedAt         time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy         string          `json:"lastUpdatedBy"`
}

// AmountDetailResponse joins a ledger row with its segment master entry.
type AmountDetailResponse struct {
	AmountResponse
	SegmentCode           string              `json:"segmentCode"`
	SegmentType           string              `json:"segmentType"`
	EffectiveControlLevel domain.ControlLevel `json:"effectiveControlLevel"`
}

// ListAmountsResponse wraps the ledger rows of a budget.
type ListAmountsResponse struct {
	Amounts []AmountDetailResponse `json:"amounts"`
}

// ToAmountResponse converts a domain.BudgetAmount to AmountResponse DTO
func ToAmountResponse(a *domain.BudgetAmount) AmountResponse {
	return AmountResponse{
		BudgetAmountID:        a.BudgetAmountID,
		BudgetID:              a.BudgetID,
		BudgetSegmentID:       a.BudgetSegmentID,
		OriginalBudget:        a.OriginalBudget,
		AdjustmentAmount:      a.AdjustmentAmount,
		TotalBudget:           a.TotalBudget(),
		CommittedAmount:       a.CommittedAmount,
		EncumberedAmount:      a.EncumberedAmount,
		ActualAmount:          a.ActualAmount,
		ConsumedTotal:         a.ConsumedTotal(),
		Available:             a.Available(),
		UtilizationPercentage: a.UtilizationPercentage(),
		Notes:                 a.Notes,
		LastCommittedAt:       a.LastCommittedAt,
		LastEncumberedAt:      a.LastEncumberedAt,
		LastActualAt:          a.LastActualAt,
		LastAdjustedAt:        a.LastAdjustedAt,
		CreatedAt:             a.CreatedAt,
		CreatedBy:             a.CreatedBy,
		LastUpdatedAt:         a.LastUpdatedAt,
		LastUpdatedBy:         a.LastUpdatedBy,
	}
}

// ToAmountDetailResponse converts a domain.AmountDetail to AmountDetailResponse DTO
func ToAmountDetailResponse(d *domain.AmountDetail) AmountDetailResponse {
	return AmountDetailResponse{
		AmountResponse:        ToAmountResponse(&d.Amount),
		SegmentCode:           d.SegmentValue.Code,
		SegmentType:           d.SegmentValue.SegmentTypeName,
		EffectiveControlLevel: d.EffectiveControlLevel(),
	}
}

// ToListAmountsResponse converts ledger details to ListAmountsResponse
func ToListAmountsResponse(details []domain.AmountDetail) ListAmountsResponse {
	res := make([]AmountDetailResponse, len(details))
	for i, d := range details {
		res[i] = ToAmountDetailResponse(&d)
	}
	return ListAmountsResponse{Amounts: res}
}
