package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/procureflow/budget_control_app/internal/core/domain"
)

// FundsReader defines read operations for the budget amount ledger
type FundsReader interface {
	// FindAmountByID retrieves a ledger row by its identifier.
	FindAmountByID(ctx context.Context, budgetAmountID string) (*domain.BudgetAmount, error)

	// FindAmountByBudgetSegment retrieves the ledger row funding a membership.
	FindAmountByBudgetSegment(ctx context.Context, budgetSegmentID string) (*domain.BudgetAmount, error)

	// ListAmountDetails retrieves all ledger rows of a budget joined with
	// their membership, segment master entry and parent budget.
	ListAmountDetails(ctx context.Context, budgetID string) ([]domain.AmountDetail, error)

	// ListActiveAmountDetails retrieves the ledger rows of every ACTIVE
	// budget. Used by the violations report.
	ListActiveAmountDetails(ctx context.Context) ([]domain.AmountDetail, error)

	// SummarizeBudget aggregates the ledger counters across a budget.
	SummarizeBudget(ctx context.Context, budgetID string) (*domain.BudgetTotals, error)
}

// FundsWriter defines write operations for the budget amount ledger
type FundsWriter interface {
	// SaveAmount persists a new ledger row.
	SaveAmount(ctx context.Context, amount domain.BudgetAmount) error

	// UpsertAmount inserts a ledger row, or replaces the original budget,
	// adjustment and notes of an existing row for the same membership.
	// Consumption counters are never touched. Used by the bulk import.
	UpsertAmount(ctx context.Context, amount domain.BudgetAmount) (inserted bool, err error)

	// DeleteAmount removes a ledger row.
	DeleteAmount(ctx context.Context, budgetAmountID string) error
}

// FundsTransactionSupport defines the row-locked operations every consumption
// mutation runs through. The read-modify-write of a ledger row must happen
// under FOR UPDATE within a single transaction.
type FundsTransactionSupport interface {
	// FindAmountByIDForUpdate selects a ledger row and locks it for update
	// within the given transaction.
	FindAmountByIDForUpdate(ctx context.Context, tx pgx.Tx, budgetAmountID string) (*domain.BudgetAmount, error)

	// UpdateAmountInTx writes back a mutated ledger row within the given
	// transaction. The row must have been locked by FindAmountByIDForUpdate.
	UpdateAmountInTx(ctx context.Context, tx pgx.Tx, amount domain.BudgetAmount) error
}

// FundsRepositoryFacade combines all ledger repository interfaces
type FundsRepositoryFacade interface {
	FundsReader
	FundsWriter
	FundsTransactionSupport
	TransactionManager
}
