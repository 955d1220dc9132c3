package services

import (
	"context"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/procureflow/budget_control_app/internal/dto"
)

// BudgetReaderSvc defines read operations for budget definitions
type BudgetReaderSvc interface {
	// GetBudgetByID retrieves a specific budget by its ID.
	GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgets retrieves budgets matching the given filters.
	ListBudgets(ctx context.Context, params dto.ListBudgetsParams) ([]domain.Budget, error)

	// GetBudgetSummary retrieves the aggregated reporting view of a budget.
	GetBudgetSummary(ctx context.Context, budgetID string) (*domain.BudgetSummary, error)
}

// BudgetWriterSvc defines write operations for budget definitions
type BudgetWriterSvc interface {
	// CreateBudget persists a new budget in DRAFT status.
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error)

	// UpdateBudget updates a budget's details. Only DRAFT budgets are editable.
	UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, updaterUserID string) (*domain.Budget, error)

	// DeleteBudget destroys a DRAFT budget that has no funded amounts.
	DeleteBudget(ctx context.Context, budgetID string) error
}

// BudgetLifecycleSvc defines the budget state machine operations
type BudgetLifecycleSvc interface {
	// ActivateBudget transitions a DRAFT budget to ACTIVE.
	ActivateBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)

	// DeactivateBudget switches an ACTIVE budget back to DRAFT.
	DeactivateBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)

	// CloseBudget transitions a budget to its terminal CLOSED status.
	CloseBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
// This is a facade for clients that need access to all operations
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
	BudgetLifecycleSvc
}
