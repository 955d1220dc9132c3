package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
)

// --- Mock BudgetRepository ---

type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindBudgetByCode(ctx context.Context, budgetCode string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgets(ctx context.Context, filter portsrepo.BudgetListFilter) ([]domain.Budget, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListActiveBudgetsForDate(ctx context.Context, date time.Time) ([]domain.Budget, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) CountBudgetSegments(ctx context.Context, budgetID string) (int, error) {
	args := m.Called(ctx, budgetID)
	return args.Int(0), args.Error(1)
}

func (m *MockBudgetRepository) CountBudgetAmounts(ctx context.Context, budgetID string) (int, error) {
	args := m.Called(ctx, budgetID)
	return args.Int(0), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	args := m.Called(ctx, budgetID)
	return args.Error(0)
}

// --- Mock SegmentRepository ---

type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) FindSegmentValueByID(ctx context.Context, segmentValueID string) (*domain.SegmentValue, error) {
	args := m.Called(ctx, segmentValueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SegmentValue), args.Error(1)
}

func (m *MockSegmentRepository) FindSegmentValuesByIDs(ctx context.Context, segmentValueIDs []string) (map[string]domain.SegmentValue, error) {
	args := m.Called(ctx, segmentValueIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.SegmentValue), args.Error(1)
}

func (m *MockSegmentRepository) ListSegmentValues(ctx context.Context, limit int, offset int) ([]domain.SegmentValue, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SegmentValue), args.Error(1)
}

func (m *MockSegmentRepository) FindBudgetSegmentByID(ctx context.Context, budgetSegmentID string) (*domain.BudgetSegment, error) {
	args := m.Called(ctx, budgetSegmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetSegment), args.Error(1)
}

func (m *MockSegmentRepository) FindBudgetSegmentByCode(ctx context.Context, budgetID string, segmentCode string) (*domain.BudgetSegment, error) {
	args := m.Called(ctx, budgetID, segmentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetSegment), args.Error(1)
}

func (m *MockSegmentRepository) ListBudgetSegments(ctx context.Context, budgetID string) ([]domain.BudgetSegmentDetail, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetSegmentDetail), args.Error(1)
}

func (m *MockSegmentRepository) FindApplicableSegments(ctx context.Context, budgetID string, segmentValueIDs []string) ([]domain.CheckTarget, error) {
	args := m.Called(ctx, budgetID, segmentValueIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckTarget), args.Error(1)
}

func (m *MockSegmentRepository) SaveBudgetSegment(ctx context.Context, segment domain.BudgetSegment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentRepository) UpdateBudgetSegment(ctx context.Context, segment domain.BudgetSegment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentRepository) DeleteBudgetSegment(ctx context.Context, budgetSegmentID string) error {
	args := m.Called(ctx, budgetSegmentID)
	return args.Error(0)
}

// --- Mock FundsRepository ---

type MockFundsRepository struct {
	mock.Mock
}

func (m *MockFundsRepository) FindAmountByID(ctx context.Context, budgetAmountID string) (*domain.BudgetAmount, error) {
	args := m.Called(ctx, budgetAmountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetAmount), args.Error(1)
}

func (m *MockFundsRepository) FindAmountByBudgetSegment(ctx context.Context, budgetSegmentID string) (*domain.BudgetAmount, error) {
	args := m.Called(ctx, budgetSegmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetAmount), args.Error(1)
}

func (m *MockFundsRepository) ListAmountDetails(ctx context.Context, budgetID string) ([]domain.AmountDetail, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AmountDetail), args.Error(1)
}

func (m *MockFundsRepository) ListActiveAmountDetails(ctx context.Context) ([]domain.AmountDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AmountDetail), args.Error(1)
}

func (m *MockFundsRepository) SummarizeBudget(ctx context.Context, budgetID string) (*domain.BudgetTotals, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetTotals), args.Error(1)
}

func (m *MockFundsRepository) SaveAmount(ctx context.Context, amount domain.BudgetAmount) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockFundsRepository) UpsertAmount(ctx context.Context, amount domain.BudgetAmount) (bool, error) {
	args := m.Called(ctx, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockFundsRepository) DeleteAmount(ctx context.Context, budgetAmountID string) error {
	args := m.Called(ctx, budgetAmountID)
	return args.Error(0)
}

func (m *MockFundsRepository) FindAmountByIDForUpdate(ctx context.Context, tx pgx.Tx, budgetAmountID string) (*domain.BudgetAmount, error) {
	args := m.Called(ctx, tx, budgetAmountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetAmount), args.Error(1)
}

func (m *MockFundsRepository) UpdateAmountInTx(ctx context.Context, tx pgx.Tx, amount domain.BudgetAmount) error {
	args := m.Called(ctx, tx, amount)
	return args.Error(0)
}

func (m *MockFundsRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockFundsRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockFundsRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
