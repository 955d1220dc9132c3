package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/core/services"
	"github.com/procureflow/budget_control_app/internal/dto"
)

type CheckServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo  *MockBudgetRepository
	mockSegmentRepo *MockSegmentRepository
	service         portssvc.CheckSvcFacade
}

func (suite *CheckServiceTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockSegmentRepo = new(MockSegmentRepository)
	suite.service = services.NewCheckService(suite.mockBudgetRepo, suite.mockSegmentRepo)
}

func (suite *CheckServiceTestSuite) activeBudget(level domain.ControlLevel) domain.Budget {
	return domain.Budget{
		BudgetID:            uuid.NewString(),
		BudgetCode:          "FY2026-" + uuid.NewString()[:8],
		StartDate:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		DefaultControlLevel: level,
		Status:              domain.BudgetActive,
		IsActive:            true,
	}
}

// target returns a funded membership with the given available budget and no
// control level override.
func (suite *CheckServiceTestSuite) target(budgetID string, code string, available int64) domain.CheckTarget {
	return domain.CheckTarget{
		Segment:      domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: budgetID, IsActive: true},
		SegmentValue: domain.SegmentValue{SegmentValueID: uuid.NewString(), Code: code, SegmentTypeName: "Account"},
		Amount:       domain.BudgetAmount{OriginalBudget: decimal.NewFromInt(available)},
	}
}

func (suite *CheckServiceTestSuite) request(amount int64) dto.BudgetCheckRequest {
	return dto.BudgetCheckRequest{
		SegmentValueIDs: []string{uuid.NewString()},
		Amount:          decimal.NewFromInt(amount),
		TransactionDate: "2026-06-15",
	}
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_InvalidDate() {
	ctx := context.Background()
	req := suite.request(100)
	req.TransactionDate = "15/06/2026"

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.request(0)

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_NoActiveBudgets() {
	ctx := context.Background()
	req := suite.request(100)

	suite.mockBudgetRepo.On("ListActiveBudgetsForDate", ctx, checkDate()).Return([]domain.Budget{}, nil).Once()

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.True(resp.Allowed)
	suite.Equal(domain.ControlNone, resp.ControlLevel)
	suite.Equal("no active budget found for this date", resp.Message)
	suite.Equal(0, resp.BudgetsEvaluated)
	suite.Empty(resp.Violations)
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_WithinBudget() {
	ctx := context.Background()
	req := suite.request(500)
	budget := suite.activeBudget(domain.ControlAbsolute)

	suite.mockBudgetRepo.On("ListActiveBudgetsForDate", ctx, checkDate()).Return([]domain.Budget{budget}, nil).Once()
	suite.mockSegmentRepo.On("FindApplicableSegments", ctx, budget.BudgetID, req.SegmentValueIDs).
		Return([]domain.CheckTarget{suite.target(budget.BudgetID, "5000", 1000)}, nil).Once()

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.True(resp.Allowed)
	suite.Equal(domain.ControlAbsolute, resp.ControlLevel)
	suite.Equal("budget check passed", resp.Message)
	suite.Equal(1, resp.BudgetsEvaluated)
	suite.Empty(resp.Violations)
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_AbsoluteBlock() {
	ctx := context.Background()
	req := suite.request(1500)
	budget := suite.activeBudget(domain.ControlAbsolute)

	suite.mockBudgetRepo.On("ListActiveBudgetsForDate", ctx, checkDate()).Return([]domain.Budget{budget}, nil).Once()
	suite.mockSegmentRepo.On("FindApplicableSegments", ctx, budget.BudgetID, req.SegmentValueIDs).
		Return([]domain.CheckTarget{suite.target(budget.BudgetID, "5000", 1000)}, nil).Once()

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.False(resp.Allowed)
	suite.Equal(domain.ControlAbsolute, resp.ControlLevel)
	suite.Equal("budget exceeded - transaction blocked by absolute control", resp.Message)
	suite.Require().Len(resp.Violations, 1)
	suite.Equal("5000", resp.Violations[0].Segment)
	suite.True(resp.Violations[0].Shortage.Equal(decimal.NewFromInt(500)))
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_AdvisoryAllowsOverage() {
	ctx := context.Background()
	req := suite.request(1500)
	budget := suite.activeBudget(domain.ControlAdvisory)

	suite.mockBudgetRepo.On("ListActiveBudgetsForDate", ctx, checkDate()).Return([]domain.Budget{budget}, nil).Once()
	suite.mockSegmentRepo.On("FindApplicableSegments", ctx, budget.BudgetID, req.SegmentValueIDs).
		Return([]domain.CheckTarget{suite.target(budget.BudgetID, "5000", 1000)}, nil).Once()

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.True(resp.Allowed)
	suite.Equal(domain.ControlAdvisory, resp.ControlLevel)
	suite.Equal("budget exceeded - advisory warning issued, transaction allowed", resp.Message)
	suite.Len(resp.Violations, 1)
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_NoApplicableSegments() {
	ctx := context.Background()
	req := suite.request(100)
	budget := suite.activeBudget(domain.ControlAbsolute)

	suite.mockBudgetRepo.On("ListActiveBudgetsForDate", ctx, checkDate()).Return([]domain.Budget{budget}, nil).Once()
	suite.mockSegmentRepo.On("FindApplicableSegments", ctx, budget.BudgetID, req.SegmentValueIDs).
		Return([]domain.CheckTarget{}, nil).Once()

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.True(resp.Allowed)
	suite.Equal(domain.ControlNone, resp.ControlLevel)
	suite.Equal("budget check passed", resp.Message)
	suite.Empty(resp.Violations)
}

func (suite *CheckServiceTestSuite) TestCheckTransaction_BlockFromOneBudgetWins() {
	ctx := context.Background()
	req := suite.request(1500)
	advisory := suite.activeBudget(domain.ControlAdvisory)
	absolute := suite.activeBudget(domain.ControlAbsolute)

	suite.mockBudgetRepo.On("ListActiveBudgetsForDate", ctx, checkDate()).Return([]domain.Budget{advisory, absolute}, nil).Once()
	suite.mockSegmentRepo.On("FindApplicableSegments", ctx, advisory.BudgetID, req.SegmentValueIDs).
		Return([]domain.CheckTarget{suite.target(advisory.BudgetID, "5000", 1000)}, nil).Once()
	suite.mockSegmentRepo.On("FindApplicableSegments", ctx, absolute.BudgetID, req.SegmentValueIDs).
		Return([]domain.CheckTarget{suite.target(absolute.BudgetID, "100", 1200)}, nil).Once()

	resp, err := suite.service.CheckTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.False(resp.Allowed)
	suite.Equal(domain.ControlAbsolute, resp.ControlLevel)
	suite.Equal("budget exceeded - transaction blocked by absolute control", resp.Message)
	suite.Equal(2, resp.BudgetsEvaluated)
	suite.Len(resp.Violations, 2)
}

// checkDate is the parsed form of the fixed request date.
func checkDate() time.Time {
	return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
}

func TestCheckService(t *testing.T) {
	suite.Run(t, new(CheckServiceTestSuite))
}
