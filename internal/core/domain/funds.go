package domain

import (
	"fmt"
	"time"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BudgetAmount is the per-segment-value funds ledger: the allocated budget and
// the three consumption counters of the procure-to-pay funnel.
//
// Stage 1 committed   <- approved purchase requisitions
// Stage 2 encumbered  <- approved purchase orders
// Stage 3 actual      <- posted invoices
//
// The counters are system-maintained and mutated only through the consume/
// release/reverse/adjust operations below; persistence of a mutation must be a
// single atomic read-modify-write on the row (see FundsRepository).
type BudgetAmount struct {
	BudgetAmountID   string          `json:"budgetAmountID"`
	BudgetID         string          `json:"budgetID"`
	BudgetSegmentID  string          `json:"budgetSegmentID"` // one-to-one with BudgetSegment
	OriginalBudget   decimal.Decimal `json:"originalBudget"`
	AdjustmentAmount decimal.Decimal `json:"adjustmentAmount"` // signed
	CommittedAmount  decimal.Decimal `json:"committedAmount"`
	EncumberedAmount decimal.Decimal `json:"encumberedAmount"`
	ActualAmount     decimal.Decimal `json:"actualAmount"`
	Notes            string          `json:"notes"`
	AuditFields
	LastCommittedAt  *time.Time `json:"lastCommittedAt"`
	LastEncumberedAt *time.Time `json:"lastEncumberedAt"`
	LastActualAt     *time.Time `json:"lastActualAt"`
	LastAdjustedAt   *time.Time `json:"lastAdjustedAt"`
}

// FundsCheck is the result of an availability probe against one ledger row.
type FundsCheck struct {
	Sufficient bool            `json:"sufficient"`
	Available  decimal.Decimal `json:"available"`
	Requested  decimal.Decimal `json:"requested"`
	Shortage   decimal.Decimal `json:"shortage"` // zero when sufficient
}

// TotalBudget returns original + adjustments.
func (a *BudgetAmount) TotalBudget() decimal.Decimal {
	return a.OriginalBudget.Add(a.AdjustmentAmount)
}

// ConsumedTotal returns committed + encumbered + actual.
func (a *BudgetAmount) ConsumedTotal() decimal.Decimal {
	return a.CommittedAmount.Add(a.EncumberedAmount).Add(a.ActualAmount)
}

// Available returns total budget minus consumed. A negative result means the
// segment is over budget; that is reportable, not structurally invalid.
func (a *BudgetAmount) Available() decimal.Decimal {
	return a.TotalBudget().Sub(a.ConsumedTotal())
}

// UtilizationPercentage returns consumed/total*100 rounded to 2 decimals,
// or 0.00 when the total budget is zero.
func (a *BudgetAmount) UtilizationPercentage() decimal.Decimal {
	total := a.TotalBudget()
	if total.IsZero() {
		return decimal.Zero.Round(2)
	}
	return a.ConsumedTotal().Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

// CheckFundsAvailable probes whether amount fits in the available budget.
func (a *BudgetAmount) CheckFundsAvailable(amount decimal.Decimal) FundsCheck {
	available := a.Available()
	shortage := amount.Sub(available)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}
	return FundsCheck{
		Sufficient: available.GreaterThanOrEqual(amount),
		Available:  available,
		Requested:  amount,
		Shortage:   shortage,
	}
}

// CanConsume validates a prospective consumption. budgetActive is the parent
// budget's IsActive flag; the ledger row does not hold a back-pointer.
func (a *BudgetAmount) CanConsume(amount decimal.Decimal, budgetActive bool) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !budgetActive {
		return apperrors.ErrInactiveBudget
	}
	if available := a.Available(); available.LessThan(amount) {
		return fmt.Errorf("%w: available %s, requested %s", apperrors.ErrInsufficientFunds, available, amount)
	}
	return nil
}

// ConsumeCommitment records a Stage 1 commitment (PR approval).
func (a *BudgetAmount) ConsumeCommitment(amount decimal.Decimal, budgetActive bool, now time.Time) error {
	if err := a.CanConsume(amount, budgetActive); err != nil {
		return err
	}
	a.CommittedAmount = a.CommittedAmount.Add(amount)
	a.LastCommittedAt = &now
	a.LastUpdatedAt = now
	return nil
}

// ReleaseCommitment frees committed budget (PR cancellation).
func (a *BudgetAmount) ReleaseCommitment(amount decimal.Decimal, now time.Time) error {
	if amount.GreaterThan(a.CommittedAmount) {
		return fmt.Errorf("%w: cannot release %s, only %s is committed", apperrors.ErrOverRelease, amount, a.CommittedAmount)
	}
	a.CommittedAmount = a.CommittedAmount.Sub(amount)
	a.LastUpdatedAt = now
	return nil
}

// ConsumeEncumbrance records a Stage 2 encumbrance (PO approval). When
// releaseCommitment is true the amount moves out of the committed counter
// (PR->PO flow); otherwise it is a direct encumbrance revalidated against
// availability.
func (a *BudgetAmount) ConsumeEncumbrance(amount decimal.Decimal, releaseCommitment bool, budgetActive bool, now time.Time) error {
	if releaseCommitment {
		if amount.GreaterThan(a.CommittedAmount) {
			return fmt.Errorf("%w: cannot encumber %s, only %s is committed", apperrors.ErrOverRelease, amount, a.CommittedAmount)
		}
		a.CommittedAmount = a.CommittedAmount.Sub(amount)
	} else {
		if err := a.CanConsume(amount, budgetActive); err != nil {
			return err
		}
	}
	a.EncumberedAmount = a.EncumberedAmount.Add(amount)
	a.LastEncumberedAt = &now
	a.LastUpdatedAt = now
	return nil
}

// ReleaseEncumbrance frees encumbered budget (PO cancellation).
func (a *BudgetAmount) ReleaseEncumbrance(amount decimal.Decimal, now time.Time) error {
	if amount.GreaterThan(a.EncumberedAmount) {
		return fmt.Errorf("%w: cannot release %s, only %s is encumbered", apperrors.ErrOverRelease, amount, a.EncumberedAmount)
	}
	a.EncumberedAmount = a.EncumberedAmount.Sub(amount)
	a.LastUpdatedAt = now
	return nil
}

// ConsumeActual records Stage 3 actual spending (invoice posting). When
// releaseEncumbrance is true the amount moves out of the encumbered counter
// (PO->Invoice flow); otherwise it is a direct consumption revalidated
// against availability.
func (a *BudgetAmount) ConsumeActual(amount decimal.Decimal, releaseEncumbrance bool, budgetActive bool, now time.Time) error {
	if releaseEncumbrance {
		if amount.GreaterThan(a.EncumberedAmount) {
			return fmt.Errorf("%w: cannot consume %s as actual, only %s is encumbered", apperrors.ErrOverRelease, amount, a.EncumberedAmount)
		}
		a.EncumberedAmount = a.EncumberedAmount.Sub(amount)
	} else {
		if err := a.CanConsume(amount, budgetActive); err != nil {
			return err
		}
	}
	a.ActualAmount = a.ActualAmount.Add(amount)
	a.LastActualAt = &now
	a.LastUpdatedAt = now
	return nil
}

// ReverseActual backs out actual spending (credit memo or correction).
func (a *BudgetAmount) ReverseActual(amount decimal.Decimal, now time.Time) error {
	if amount.GreaterThan(a.ActualAmount) {
		return fmt.Errorf("%w: cannot reverse %s, only %s is recorded as actual", apperrors.ErrOverRelease, amount, a.ActualAmount)
	}
	a.ActualAmount = a.ActualAmount.Sub(amount)
	a.LastUpdatedAt = now
	return nil
}

// AdjustBudget moves the budget ceiling by delta (positive or negative) and
// returns the new total budget. Adjustments are not constrained by
// availability; they change the ceiling, not consumption. A non-empty reason
// appends a timestamped entry to the notes log.
func (a *BudgetAmount) AdjustBudget(delta decimal.Decimal, reason string, now time.Time) decimal.Decimal {
	a.AdjustmentAmount = a.AdjustmentAmount.Add(delta)
	a.LastAdjustedAt = &now
	a.LastUpdatedAt = now
	if reason != "" {
		entry := fmt.Sprintf("[%s] Adjustment: %s - %s", now.Format("2006-01-02"), delta, reason)
		if a.Notes == "" {
			a.Notes = entry
		} else {
			a.Notes = a.Notes + "\n" + entry
		}
	}
	return a.TotalBudget()
}
