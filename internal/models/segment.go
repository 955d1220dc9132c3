package models

// SegmentType represents a row in the segment_types table, one dimension of
// the chart of accounts (Account, Department, Project, ...).
type SegmentType struct {
	SegmentTypeID string `db:"segment_type_id"`
	Name          string `db:"name"`
	DisplayOrder  int    `db:"display_order"`
	AuditFields
}

// SegmentValue represents a row in the segment_values table.
type SegmentValue struct {
	SegmentValueID string `db:"segment_value_id"`
	SegmentTypeID  string `db:"segment_type_id"`
	Code           string `db:"code"`
	Alias          string `db:"alias"`
	AuditFields
}

// BudgetSegment represents a row in the budget_segment_value table.
// ControlLevel is nullable; NULL defers to the budget's default.
type BudgetSegment struct {
	BudgetSegmentID string  `db:"budget_segment_id"`
	BudgetID        string  `db:"budget_id"`
	SegmentValueID  string  `db:"segment_value_id"`
	ControlLevel    *string `db:"control_level"`
	IsActive        bool    `db:"is_active"`
	Notes           string  `db:"notes"`
	AuditFields
}
