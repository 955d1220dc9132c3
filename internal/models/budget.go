package models

import "time"

// Budget represents a row in the budget_header table.
// ActivatedBy/ActivatedAt are nullable; they are set on first activation.
type Budget struct {
	BudgetID            string    `db:"budget_id"`
	BudgetCode          string    `db:"budget_code"` // unique
	BudgetName          string    `db:"budget_name"`
	Description         string    `db:"description"`
	StartDate           time.Time `db:"start_date"`
	EndDate             time.Time `db:"end_date"`
	CurrencyCode        string    `db:"currency_code"`
	DefaultControlLevel string    `db:"default_control_level"`
	Status              string    `db:"status"`
	IsActive            bool      `db:"is_active"`
	Notes               string    `db:"notes"`
	AuditFields
	ActivatedBy string     `db:"activated_by"` // nullable
	ActivatedAt *time.Time `db:"activated_at"`
}
