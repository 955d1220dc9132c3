package domain

import (
	"fmt"
	"time"

	"github.com/procureflow/budget_control_app/internal/apperrors"
)

// BudgetStatus is the lifecycle status of a budget.
// Workflow: DRAFT -> ACTIVE -> CLOSED; deactivation returns ACTIVE to DRAFT.
type BudgetStatus string

const (
	BudgetDraft  BudgetStatus = "DRAFT"
	BudgetActive BudgetStatus = "ACTIVE"
	BudgetClosed BudgetStatus = "CLOSED"
)

// Budget is the main budget definition: effective period, currency, default
// control level and lifecycle status. It owns its segment memberships and,
// through them, the funded amount records.
//
// Invariant: IsActive=true implies Status=ACTIVE. The flip side does not hold;
// an ACTIVE budget may be temporarily switched off for checking.
type Budget struct {
	BudgetID            string       `json:"budgetID"`
	BudgetCode          string       `json:"budgetCode"` // unique, e.g. "FY2026-OPERATING"
	BudgetName          string       `json:"budgetName"`
	Description         string       `json:"description"`
	StartDate           time.Time    `json:"startDate"`
	EndDate             time.Time    `json:"endDate"`
	CurrencyCode        string       `json:"currencyCode"` // FK -> currencies.code
	DefaultControlLevel ControlLevel `json:"defaultControlLevel"`
	Status              BudgetStatus `json:"status"`
	IsActive            bool         `json:"isActive"`
	Notes               string       `json:"notes"`
	AuditFields
	ActivatedBy string     `json:"activatedBy"`
	ActivatedAt *time.Time `json:"activatedAt"`
}

// CanActivate reports whether the budget may transition to ACTIVE given the
// current number of segment memberships and funded amount rows.
func (b *Budget) CanActivate(segmentCount, amountCount int) (bool, string) {
	if b.Status == BudgetActive {
		return false, "budget is already active"
	}
	if b.Status == BudgetClosed {
		return false, "cannot activate a closed budget"
	}
	if segmentCount == 0 {
		return false, "budget must have at least one segment value before activation"
	}
	if amountCount == 0 {
		return false, "budget must have at least one budget amount before activation"
	}
	return true, ""
}

// Activate transitions the budget to ACTIVE, recording who activated it and when.
func (b *Budget) Activate(actor string, now time.Time, segmentCount, amountCount int) error {
	ok, reason := b.CanActivate(segmentCount, amountCount)
	if !ok {
		if b.Status == BudgetActive || b.Status == BudgetClosed {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidTransition, reason)
		}
		return fmt.Errorf("%w: %s", apperrors.ErrMissingPrerequisite, reason)
	}
	b.Status = BudgetActive
	b.IsActive = true
	b.ActivatedBy = actor
	activatedAt := now
	b.ActivatedAt = &activatedAt
	b.LastUpdatedAt = now
	b.LastUpdatedBy = actor
	return nil
}

// Close transitions the budget to CLOSED unconditionally. Closed budgets are
// terminal and cannot be reactivated.
func (b *Budget) Close(actor string, now time.Time) {
	b.Status = BudgetClosed
	b.IsActive = false
	b.LastUpdatedAt = now
	if actor != "" {
		b.LastUpdatedBy = actor
	}
}

// Deactivate switches the budget off without closing it. The budget returns to
// DRAFT and becomes re-editable; consumed funds stay on the ledger.
func (b *Budget) Deactivate(actor string, now time.Time) {
	b.IsActive = false
	b.Status = BudgetDraft
	b.LastUpdatedAt = now
	if actor != "" {
		b.LastUpdatedBy = actor
	}
}

// CanDelete reports whether the budget may be destroyed. Only DRAFT budgets
// with no budget amounts qualify.
func (b *Budget) CanDelete(amountCount int) (bool, string) {
	if b.Status == BudgetActive {
		return false, "cannot delete an ACTIVE budget, deactivate it first"
	}
	if b.Status == BudgetClosed {
		return false, "cannot delete a CLOSED budget"
	}
	if amountCount > 0 {
		return false, "cannot delete budget with existing budget amounts"
	}
	return true, ""
}

// IsDateInRange reports whether the given date falls within the budget's
// effective period, inclusive on both ends.
func (b *Budget) IsDateInRange(date time.Time) bool {
	return !date.Before(b.StartDate) && !date.After(b.EndDate)
}
