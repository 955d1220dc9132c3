package services

import (
	"context"

	"github.com/procureflow/budget_control_app/internal/dto"
)

// CheckSvcFacade validates candidate transactions against the active budgets
// covering their date. The check never consumes budget.
type CheckSvcFacade interface {
	// CheckTransaction evaluates the candidate transaction against every
	// ACTIVE budget whose period covers its date and returns the strictest
	// outcome.
	CheckTransaction(ctx context.Context, req dto.BudgetCheckRequest) (*dto.BudgetCheckResponse, error)
}

// ReportingSvcFacade provides cross-budget reporting views.
type ReportingSvcFacade interface {
	// GetViolationsReport lists the ledger rows of active budgets whose
	// utilization is at or above the threshold percentage.
	GetViolationsReport(ctx context.Context, params dto.ViolationsReportParams) (*dto.ViolationsReportResponse, error)
}
