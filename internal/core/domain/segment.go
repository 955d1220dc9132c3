package domain

// SegmentValue is one value within a dimension of the chart of accounts
// (e.g. Account=5000, Department=1). The segment master lives in the GL
// subsystem; this is the read model budgets refer to.
type SegmentValue struct {
	SegmentValueID  string `json:"segmentValueID"`
	SegmentTypeID   string `json:"segmentTypeID"`
	SegmentTypeName string `json:"segmentTypeName"` // e.g. "Account", "Department"
	Code            string `json:"code"`
	Alias           string `json:"alias"`
}

// BudgetSegment enrolls one segment value into a budget, optionally overriding
// the budget's default control level. Unique per (budget, segment value).
type BudgetSegment struct {
	BudgetSegmentID string        `json:"budgetSegmentID"`
	BudgetID        string        `json:"budgetID"`
	SegmentValueID  string        `json:"segmentValueID"`
	ControlLevel    *ControlLevel `json:"controlLevel"` // nil defers to the budget default
	IsActive        bool          `json:"isActive"`
	Notes           string        `json:"notes"`
	AuditFields
}

// EffectiveControlLevel returns the override if present, else the parent
// budget's default.
func (s *BudgetSegment) EffectiveControlLevel(budgetDefault ControlLevel) ControlLevel {
	if s.ControlLevel != nil {
		return *s.ControlLevel
	}
	return budgetDefault
}

// BudgetSegmentDetail joins a membership with its segment master entry for
// listing and reporting.
type BudgetSegmentDetail struct {
	BudgetSegment
	SegmentValue SegmentValue `json:"segmentValue"`
}
