package domain

import "github.com/shopspring/decimal"

// BudgetTotals aggregates the ledger counters of one budget across all its
// funded segment values.
type BudgetTotals struct {
	TotalOriginal    decimal.Decimal `json:"totalOriginal"`
	TotalAdjustments decimal.Decimal `json:"totalAdjustments"`
	TotalCommitted   decimal.Decimal `json:"totalCommitted"`
	TotalEncumbered  decimal.Decimal `json:"totalEncumbered"`
	TotalActual      decimal.Decimal `json:"totalActual"`
}

// TotalBudget returns original + adjustments.
func (t BudgetTotals) TotalBudget() decimal.Decimal {
	return t.TotalOriginal.Add(t.TotalAdjustments)
}

// TotalConsumed returns committed + encumbered + actual.
func (t BudgetTotals) TotalConsumed() decimal.Decimal {
	return t.TotalCommitted.Add(t.TotalEncumbered).Add(t.TotalActual)
}

// TotalAvailable returns total budget minus total consumed.
func (t BudgetTotals) TotalAvailable() decimal.Decimal {
	return t.TotalBudget().Sub(t.TotalConsumed())
}

// UtilizationPercentage returns consumed/total*100 rounded to 2 decimals, or
// 0.00 when the total budget is zero.
func (t BudgetTotals) UtilizationPercentage() decimal.Decimal {
	total := t.TotalBudget()
	if total.IsZero() {
		return decimal.Zero.Round(2)
	}
	return t.TotalConsumed().Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

// AmountDetail joins a ledger row with its membership, segment master entry
// and parent budget, for listings, exports and the violations report.
type AmountDetail struct {
	Budget       Budget        `json:"budget"`
	Segment      BudgetSegment `json:"segment"`
	SegmentValue SegmentValue  `json:"segmentValue"`
	Amount       BudgetAmount  `json:"amount"`
}

// EffectiveControlLevel resolves the detail's control level against its
// budget's default.
func (d AmountDetail) EffectiveControlLevel() ControlLevel {
	return d.Segment.EffectiveControlLevel(d.Budget.DefaultControlLevel)
}

// SegmentTypeBreakdown aggregates a budget's ledger rows by segment type.
type SegmentTypeBreakdown struct {
	SegmentType           string          `json:"segmentType"`
	TotalBudget           decimal.Decimal `json:"totalBudget"`
	Committed             decimal.Decimal `json:"committed"`
	Encumbered            decimal.Decimal `json:"encumbered"`
	Actual                decimal.Decimal `json:"actual"`
	Available             decimal.Decimal `json:"available"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
	Count                 int             `json:"count"`
}

// BudgetSummary is the full reporting view of one budget.
type BudgetSummary struct {
	Budget    Budget                 `json:"budget"`
	Totals    BudgetTotals           `json:"totals"`
	Breakdown []SegmentTypeBreakdown `json:"segmentBreakdown"`
}
