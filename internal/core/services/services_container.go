package services

import (
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.Budget = NewBudgetService(repos.BudgetRepo, repos.FundsRepo, repos.CurrencyRepo)
	container.Segment = NewSegmentService(repos.SegmentRepo, repos.BudgetRepo, repos.FundsRepo)
	container.Funds = NewFundsService(repos.FundsRepo, repos.SegmentRepo, repos.BudgetRepo)
	container.Check = NewCheckService(repos.BudgetRepo, repos.SegmentRepo)
	container.Reporting = NewReportingService(repos.FundsRepo)
	container.Excel = NewExcelService(repos.BudgetRepo, repos.SegmentRepo, repos.FundsRepo)

	return container
}
