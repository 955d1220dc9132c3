package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
)

// NewRepositoryProvider creates all pgsql-backed repositories and bundles them
// for the service container.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BudgetRepo:   newPgxBudgetRepository(dbPool),
		SegmentRepo:  newPgxSegmentRepository(dbPool),
		FundsRepo:    newPgxFundsRepository(dbPool),
		CurrencyRepo: newPgxCurrencyRepository(dbPool),
	}
}
