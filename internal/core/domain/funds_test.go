package domain_test

import (
	"testing"
	"time"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ledger with original=10000, committed=2000, encumbered=3000, actual=1000
// => available=4000. Mirrors the standard scenario used across check tests.
func fundedAmount() *domain.BudgetAmount {
	return &domain.BudgetAmount{
		BudgetAmountID:   "amt-1",
		BudgetID:         "budget-1",
		BudgetSegmentID:  "seg-1",
		OriginalBudget:   dec("10000"),
		AdjustmentAmount: decimal.Zero,
		CommittedAmount:  dec("2000"),
		EncumberedAmount: dec("3000"),
		ActualAmount:     dec("1000"),
	}
}

// assertInvariant checks available = original + adjustment - committed - encumbered - actual.
func assertInvariant(t *testing.T, a *domain.BudgetAmount) {
	t.Helper()
	expected := a.OriginalBudget.Add(a.AdjustmentAmount).
		Sub(a.CommittedAmount).Sub(a.EncumberedAmount).Sub(a.ActualAmount)
	assert.True(t, a.Available().Equal(expected),
		"available %s != derived %s", a.Available(), expected)
}

func TestBudgetAmount_Derivations(t *testing.T) {
	a := fundedAmount()

	assert.True(t, a.TotalBudget().Equal(dec("10000")))
	assert.True(t, a.ConsumedTotal().Equal(dec("6000")))
	assert.True(t, a.Available().Equal(dec("4000")))
	assert.Equal(t, "60", a.UtilizationPercentage().String())
	assertInvariant(t, a)
}

func TestBudgetAmount_UtilizationZeroTotal(t *testing.T) {
	a := &domain.BudgetAmount{}
	assert.True(t, a.UtilizationPercentage().IsZero())

	// adjustment cancelling the original also yields a zero total
	a.OriginalBudget = dec("500")
	a.AdjustmentAmount = dec("-500")
	assert.True(t, a.UtilizationPercentage().IsZero())
}

func TestBudgetAmount_UtilizationRounding(t *testing.T) {
	a := &domain.BudgetAmount{
		OriginalBudget: dec("3000"),
		ActualAmount:   dec("1000"),
	}
	// 1000/3000*100 = 33.333... -> 33.33
	assert.Equal(t, "33.33", a.UtilizationPercentage().String())
}

func TestBudgetAmount_CheckFundsAvailable(t *testing.T) {
	a := fundedAmount()

	check := a.CheckFundsAvailable(dec("3000"))
	assert.True(t, check.Sufficient)
	assert.True(t, check.Available.Equal(dec("4000")))
	assert.True(t, check.Shortage.IsZero())

	check = a.CheckFundsAvailable(dec("4000"))
	assert.True(t, check.Sufficient, "exact available amount is sufficient")

	check = a.CheckFundsAvailable(dec("5000"))
	assert.False(t, check.Sufficient)
	assert.True(t, check.Shortage.Equal(dec("1000")))
	assert.True(t, check.Requested.Equal(dec("5000")))
}

func TestBudgetAmount_CanConsume(t *testing.T) {
	a := fundedAmount()

	assert.NoError(t, a.CanConsume(dec("4000"), true))

	err := a.CanConsume(decimal.Zero, true)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = a.CanConsume(dec("-5"), true)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = a.CanConsume(dec("100"), false)
	assert.ErrorIs(t, err, apperrors.ErrInactiveBudget)

	err = a.CanConsume(dec("4000.01"), true)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
}

func TestBudgetAmount_CommitmentRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()
	before := a.CommittedAmount

	require.NoError(t, a.ConsumeCommitment(dec("500"), true, now))
	assert.True(t, a.CommittedAmount.Equal(dec("2500")))
	require.NotNil(t, a.LastCommittedAt)
	assertInvariant(t, a)

	require.NoError(t, a.ReleaseCommitment(dec("500"), now))
	assert.True(t, a.CommittedAmount.Equal(before), "round trip restores the counter")
	assertInvariant(t, a)
}

func TestBudgetAmount_ConsumeCommitment_Insufficient(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	err := a.ConsumeCommitment(dec("4001"), true, now)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.True(t, a.CommittedAmount.Equal(dec("2000")), "failed consume leaves counters untouched")
}

func TestBudgetAmount_ReleaseCommitment_OverRelease(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	err := a.ReleaseCommitment(dec("2000.01"), now)
	assert.ErrorIs(t, err, apperrors.ErrOverRelease)
	assertInvariant(t, a)
}

func TestBudgetAmount_EncumbranceFromCommitment(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	// PR->PO flow: moves 1500 from committed to encumbered, available unchanged
	availableBefore := a.Available()
	require.NoError(t, a.ConsumeEncumbrance(dec("1500"), true, true, now))
	assert.True(t, a.CommittedAmount.Equal(dec("500")))
	assert.True(t, a.EncumberedAmount.Equal(dec("4500")))
	assert.True(t, a.Available().Equal(availableBefore), "waterfall keeps availability stable")
	assertInvariant(t, a)
}

func TestBudgetAmount_EncumbranceFromCommitment_ExceedsCommitted(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	err := a.ConsumeEncumbrance(dec("2500"), true, true, now)
	assert.ErrorIs(t, err, apperrors.ErrOverRelease)
	assertInvariant(t, a)
}

func TestBudgetAmount_DirectEncumbrance(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	// PO without PR: validated against availability instead of committed
	require.NoError(t, a.ConsumeEncumbrance(dec("4000"), false, true, now))
	assert.True(t, a.CommittedAmount.Equal(dec("2000")), "committed untouched on direct path")
	assert.True(t, a.EncumberedAmount.Equal(dec("7000")))
	assert.True(t, a.Available().IsZero())
	assertInvariant(t, a)

	err := a.ConsumeEncumbrance(dec("0.01"), false, true, now)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
}

func TestBudgetAmount_EncumbranceRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	require.NoError(t, a.ConsumeEncumbrance(dec("1000"), false, true, now))
	require.NoError(t, a.ReleaseEncumbrance(dec("1000"), now))
	assert.True(t, a.EncumberedAmount.Equal(dec("3000")))
	assertInvariant(t, a)

	err := a.ReleaseEncumbrance(dec("3001"), now)
	assert.ErrorIs(t, err, apperrors.ErrOverRelease)
}

func TestBudgetAmount_ActualFromEncumbrance(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	// PO->Invoice flow
	require.NoError(t, a.ConsumeActual(dec("3000"), true, true, now))
	assert.True(t, a.EncumberedAmount.IsZero())
	assert.True(t, a.ActualAmount.Equal(dec("4000")))
	assertInvariant(t, a)

	err := a.ConsumeActual(dec("1"), true, true, now)
	assert.ErrorIs(t, err, apperrors.ErrOverRelease, "nothing left encumbered")
}

func TestBudgetAmount_DirectActual(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	// Invoice without PO: validated against availability
	require.NoError(t, a.ConsumeActual(dec("4000"), false, true, now))
	assert.True(t, a.ActualAmount.Equal(dec("5000")))
	assert.True(t, a.EncumberedAmount.Equal(dec("3000")))
	assertInvariant(t, a)
}

func TestBudgetAmount_ReverseActual(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	require.NoError(t, a.ReverseActual(dec("1000"), now))
	assert.True(t, a.ActualAmount.IsZero())
	assertInvariant(t, a)

	err := a.ReverseActual(dec("0.01"), now)
	assert.ErrorIs(t, err, apperrors.ErrOverRelease)
}

func TestBudgetAmount_AdjustBudget(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	newTotal := a.AdjustBudget(dec("5000"), "reallocation from marketing", now)
	assert.True(t, newTotal.Equal(dec("15000")))
	assert.True(t, a.Available().Equal(dec("9000")))
	assert.Contains(t, a.Notes, "reallocation from marketing")
	assert.Contains(t, a.Notes, "Adjustment: 5000")
	require.NotNil(t, a.LastAdjustedAt)
	assertInvariant(t, a)

	// negative adjustment always succeeds, even past the consumed floor
	newTotal = a.AdjustBudget(dec("-12000"), "", now)
	assert.True(t, newTotal.Equal(dec("3000")))
	assert.True(t, a.Available().IsNegative(), "over-budget is reportable, not invalid")
	assertInvariant(t, a)
}

func TestBudgetAmount_AdjustBudget_AppendsNotes(t *testing.T) {
	now := time.Now().UTC()
	a := fundedAmount()

	a.AdjustBudget(dec("100"), "first", now)
	a.AdjustBudget(dec("200"), "second", now)

	assert.Contains(t, a.Notes, "first")
	assert.Contains(t, a.Notes, "second")
	assert.Contains(t, a.Notes, "\n", "adjustment log is append-only")
}
