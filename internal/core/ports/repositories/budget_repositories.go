package repositories

import (
	"context"
	"time"

	"github.com/procureflow/budget_control_app/internal/core/domain"
)

// BudgetListFilter narrows a budget listing. Zero values mean "no filter".
type BudgetListFilter struct {
	Status       domain.BudgetStatus
	ControlLevel domain.ControlLevel
	DateWithin   *time.Time // budgets whose period covers this date
	Search       string     // case-insensitive match against code and name
	Limit        int
	Offset       int
}

// BudgetReader defines read operations for budget definitions
type BudgetReader interface {
	// FindBudgetByID retrieves a specific budget by its unique identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// FindBudgetByCode retrieves a budget by its unique budget code.
	FindBudgetByCode(ctx context.Context, budgetCode string) (*domain.Budget, error)

	// ListBudgets retrieves budgets matching the filter, newest first.
	ListBudgets(ctx context.Context, filter BudgetListFilter) ([]domain.Budget, error)

	// ListActiveBudgetsForDate retrieves all ACTIVE budgets whose period
	// covers the given date. Used by the budget check.
	ListActiveBudgetsForDate(ctx context.Context, date time.Time) ([]domain.Budget, error)

	// CountBudgetSegments returns the number of segment memberships on a budget.
	CountBudgetSegments(ctx context.Context, budgetID string) (int, error)

	// CountBudgetAmounts returns the number of funded ledger rows on a budget.
	CountBudgetAmounts(ctx context.Context, budgetID string) (int, error)
}

// BudgetWriter defines write operations for budget definitions
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget updates an existing budget's details and lifecycle fields.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// DeleteBudget destroys a budget. Memberships cascade at the DB level;
	// the service enforces the DRAFT/no-amounts precondition.
	DeleteBudget(ctx context.Context, budgetID string) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
