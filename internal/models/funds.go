package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetAmount represents a row in the budget_amount table, the funds ledger
// for one budget segment. The consumption counters are only ever written
// through row-locked transactional updates.
type BudgetAmount struct {
	BudgetAmountID   string          `db:"budget_amount_id"`
	BudgetID         string          `db:"budget_id"`
	BudgetSegmentID  string          `db:"budget_segment_id"` // unique
	OriginalBudget   decimal.Decimal `db:"original_budget"`
	AdjustmentAmount decimal.Decimal `db:"adjustment_amount"`
	CommittedAmount  decimal.Decimal `db:"committed_amount"`
	EncumberedAmount decimal.Decimal `db:"encumbered_amount"`
	ActualAmount     decimal.Decimal `db:"actual_amount"`
	Notes            string          `db:"notes"`
	AuditFields
	LastCommittedAt  *time.Time `db:"last_committed_at"`
	LastEncumberedAt *time.Time `db:"last_encumbered_at"`
	LastActualAt     *time.Time `db:"last_actual_at"`
	LastAdjustedAt   *time.Time `db:"last_adjusted_at"`
}
