package services

import (
	"context"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/procureflow/budget_control_app/internal/dto"
)

// FundsReaderSvc defines read operations for the budget amount ledger
type FundsReaderSvc interface {
	// GetAmountByID retrieves a ledger row by its ID.
	GetAmountByID(ctx context.Context, budgetAmountID string) (*domain.BudgetAmount, error)

	// ListAmounts retrieves the ledger rows of a budget with their segment
	// master entries.
	ListAmounts(ctx context.Context, budgetID string) ([]domain.AmountDetail, error)
}

// FundsWriterSvc defines setup operations on the budget amount ledger
type FundsWriterSvc interface {
	// CreateAmount funds a budget segment. One ledger row per membership.
	CreateAmount(ctx context.Context, budgetID string, req dto.CreateAmountRequest, creatorUserID string) (*domain.BudgetAmount, error)

	// UpdateAmount updates a ledger row's details. The original budget may
	// only change while the budget is still DRAFT; notes at any time.
	UpdateAmount(ctx context.Context, budgetAmountID string, req dto.UpdateAmountRequest, userID string) (*domain.BudgetAmount, error)

	// DeleteAmount removes an unconsumed ledger row from a DRAFT budget.
	DeleteAmount(ctx context.Context, budgetAmountID string) error

	// AdjustAmount moves a ledger row's budget ceiling by a signed delta.
	// Only ACTIVE budgets may be adjusted.
	AdjustAmount(ctx context.Context, budgetAmountID string, req dto.AdjustAmountRequest, userID string) (*domain.BudgetAmount, error)
}

// FundsConsumptionSvc defines the three-stage consumption funnel. Every
// operation is an atomic row-locked read-modify-write on the ledger row.
type FundsConsumptionSvc interface {
	// ConsumeCommitment records a Stage 1 commitment (PR approval).
	ConsumeCommitment(ctx context.Context, budgetAmountID string, req dto.ConsumeCommitmentRequest, userID string) (*domain.BudgetAmount, error)

	// ReleaseCommitment frees committed budget (PR cancellation).
	ReleaseCommitment(ctx context.Context, budgetAmountID string, req dto.ReleaseCommitmentRequest, userID string) (*domain.BudgetAmount, error)

	// ConsumeEncumbrance records a Stage 2 encumbrance (PO approval).
	ConsumeEncumbrance(ctx context.Context, budgetAmountID string, req dto.ConsumeEncumbranceRequest, userID string) (*domain.BudgetAmount, error)

	// ReleaseEncumbrance frees encumbered budget (PO cancellation).
	ReleaseEncumbrance(ctx context.Context, budgetAmountID string, req dto.ReleaseEncumbranceRequest, userID string) (*domain.BudgetAmount, error)

	// ConsumeActual records Stage 3 actual spending (invoice posting).
	ConsumeActual(ctx context.Context, budgetAmountID string, req dto.ConsumeActualRequest, userID string) (*domain.BudgetAmount, error)

	// ReverseActual backs out actual spending (credit memo or correction).
	ReverseActual(ctx context.Context, budgetAmountID string, req dto.ReverseActualRequest, userID string) (*domain.BudgetAmount, error)
}

// FundsSvcFacade combines all ledger service interfaces
// This is a facade for clients that need access to all operations
type FundsSvcFacade interface {
	FundsReaderSvc
	FundsWriterSvc
	FundsConsumptionSvc
}
