package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/core/services"
	"github.com/procureflow/budget_control_app/internal/dto"
)

type FundsServiceTestSuite struct {
	suite.Suite
	mockFundsRepo   *MockFundsRepository
	mockSegmentRepo *MockSegmentRepository
	mockBudgetRepo  *MockBudgetRepository
	service         portssvc.FundsSvcFacade
}

func (suite *FundsServiceTestSuite) SetupTest() {
	suite.mockFundsRepo = new(MockFundsRepository)
	suite.mockSegmentRepo = new(MockSegmentRepository)
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.service = services.NewFundsService(suite.mockFundsRepo, suite.mockSegmentRepo, suite.mockBudgetRepo)
}

// ledgerRow returns a funded row with 10000 allocated and 2000/3000/1000
// consumed across the three stages, leaving 4000 available.
func (suite *FundsServiceTestSuite) ledgerRow(budgetID string) *domain.BudgetAmount {
	return &domain.BudgetAmount{
		BudgetAmountID:   uuid.NewString(),
		BudgetID:         budgetID,
		BudgetSegmentID:  uuid.NewString(),
		OriginalBudget:   decimal.NewFromInt(10000),
		AdjustmentAmount: decimal.Zero,
		CommittedAmount:  decimal.NewFromInt(2000),
		EncumberedAmount: decimal.NewFromInt(3000),
		ActualAmount:     decimal.NewFromInt(1000),
	}
}

func (suite *FundsServiceTestSuite) activeBudget() *domain.Budget {
	return &domain.Budget{
		BudgetID: uuid.NewString(),
		Status:   domain.BudgetActive,
		IsActive: true,
	}
}

// expectMutation wires the transactional read-modify-write expectations around
// a single ledger mutation.
func (suite *FundsServiceTestSuite) expectMutation(ctx context.Context, budget *domain.Budget, amount *domain.BudgetAmount) {
	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("UpdateAmountInTx", ctx, nil, mock.AnythingOfType("domain.BudgetAmount")).Return(nil).Once()
	suite.mockFundsRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Maybe()
}

// --- CreateAmount ---

func (suite *FundsServiceTestSuite) TestCreateAmount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	budget.IsActive = false
	segment := &domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: budget.BudgetID}
	req := dto.CreateAmountRequest{
		BudgetSegmentID: segment.BudgetSegmentID,
		OriginalBudget:  decimal.NewFromInt(50000),
	}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByID", ctx, segment.BudgetSegmentID).Return(segment, nil).Once()
	suite.mockFundsRepo.On("SaveAmount", ctx, mock.MatchedBy(func(a domain.BudgetAmount) bool {
		return a.BudgetID == budget.BudgetID &&
			a.BudgetSegmentID == segment.BudgetSegmentID &&
			a.OriginalBudget.Equal(decimal.NewFromInt(50000)) &&
			a.CommittedAmount.IsZero() && a.EncumberedAmount.IsZero() && a.ActualAmount.IsZero() &&
			a.CreatedBy == creatorUserID
	})).Return(nil).Once()

	amount, err := suite.service.CreateAmount(ctx, budget.BudgetID, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(amount)
	assert.True(suite.T(), amount.Available().Equal(decimal.NewFromInt(50000)))
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

func (suite *FundsServiceTestSuite) TestCreateAmount_NotDraft() {
	ctx := context.Background()
	budget := suite.activeBudget()
	req := dto.CreateAmountRequest{BudgetSegmentID: uuid.NewString(), OriginalBudget: decimal.NewFromInt(100)}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	amount, err := suite.service.CreateAmount(ctx, budget.BudgetID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(amount)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "SaveAmount", mock.Anything, mock.Anything)
}

func (suite *FundsServiceTestSuite) TestCreateAmount_NegativeOriginal() {
	ctx := context.Background()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	req := dto.CreateAmountRequest{BudgetSegmentID: uuid.NewString(), OriginalBudget: decimal.NewFromInt(-100)}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	amount, err := suite.service.CreateAmount(ctx, budget.BudgetID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(amount)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FundsServiceTestSuite) TestCreateAmount_SegmentOfOtherBudget() {
	ctx := context.Background()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	segment := &domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: uuid.NewString()}
	req := dto.CreateAmountRequest{BudgetSegmentID: segment.BudgetSegmentID, OriginalBudget: decimal.NewFromInt(100)}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByID", ctx, segment.BudgetSegmentID).Return(segment, nil).Once()

	amount, err := suite.service.CreateAmount(ctx, budget.BudgetID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(amount)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- DeleteAmount ---

func (suite *FundsServiceTestSuite) TestDeleteAmount_WithConsumption() {
	ctx := context.Background()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("FindAmountByID", ctx, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	err := suite.service.DeleteAmount(ctx, amount.BudgetAmountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "DeleteAmount", mock.Anything, mock.Anything)
}

func (suite *FundsServiceTestSuite) TestDeleteAmount_Success() {
	ctx := context.Background()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	amount := suite.ledgerRow(budget.BudgetID)
	amount.CommittedAmount = decimal.Zero
	amount.EncumberedAmount = decimal.Zero
	amount.ActualAmount = decimal.Zero

	suite.mockFundsRepo.On("FindAmountByID", ctx, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("DeleteAmount", ctx, amount.BudgetAmountID).Return(nil).Once()

	err := suite.service.DeleteAmount(ctx, amount.BudgetAmountID)

	suite.Require().NoError(err)
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

// --- UpdateAmount ---

func (suite *FundsServiceTestSuite) TestUpdateAmount_OriginalBudgetOnDraft() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	budget.IsActive = false
	amount := suite.ledgerRow(budget.BudgetID)
	amount.CommittedAmount = decimal.Zero
	amount.EncumberedAmount = decimal.Zero
	amount.ActualAmount = decimal.Zero
	suite.expectMutation(ctx, budget, amount)

	newOriginal := decimal.NewFromInt(25000)
	updated, err := suite.service.UpdateAmount(ctx, amount.BudgetAmountID, dto.UpdateAmountRequest{OriginalBudget: &newOriginal}, userID)

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.OriginalBudget.Equal(newOriginal))
	assert.True(suite.T(), updated.Available().Equal(newOriginal))
	suite.Equal(userID, updated.LastUpdatedBy)
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

func (suite *FundsServiceTestSuite) TestUpdateAmount_OriginalBudgetAfterActivation() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	newOriginal := decimal.NewFromInt(25000)
	updated, err := suite.service.UpdateAmount(ctx, amount.BudgetAmountID, dto.UpdateAmountRequest{OriginalBudget: &newOriginal}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "UpdateAmountInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FundsServiceTestSuite) TestUpdateAmount_NotesOnActive() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	notes := "reallocated after vendor change"
	updated, err := suite.service.UpdateAmount(ctx, amount.BudgetAmountID, dto.UpdateAmountRequest{Notes: &notes}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(notes, updated.Notes)
	assert.True(suite.T(), updated.OriginalBudget.Equal(decimal.NewFromInt(10000)))
}

func (suite *FundsServiceTestSuite) TestUpdateAmount_NoFields() {
	ctx := context.Background()

	updated, err := suite.service.UpdateAmount(ctx, uuid.NewString(), dto.UpdateAmountRequest{}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

// --- ConsumeCommitment ---

func (suite *FundsServiceTestSuite) TestConsumeCommitment_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	updated, err := suite.service.ConsumeCommitment(ctx, amount.BudgetAmountID, dto.ConsumeCommitmentRequest{Amount: decimal.NewFromInt(1500)}, userID)

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.CommittedAmount.Equal(decimal.NewFromInt(3500)))
	assert.True(suite.T(), updated.Available().Equal(decimal.NewFromInt(2500)))
	suite.Equal(userID, updated.LastUpdatedBy)
	suite.NotNil(updated.LastCommittedAt)
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

func (suite *FundsServiceTestSuite) TestConsumeCommitment_InsufficientFunds() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	updated, err := suite.service.ConsumeCommitment(ctx, amount.BudgetAmountID, dto.ConsumeCommitmentRequest{Amount: decimal.NewFromInt(4001)}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "UpdateAmountInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

func (suite *FundsServiceTestSuite) TestConsumeCommitment_InactiveBudget() {
	ctx := context.Background()
	budget := suite.activeBudget()
	budget.IsActive = false
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	updated, err := suite.service.ConsumeCommitment(ctx, amount.BudgetAmountID, dto.ConsumeCommitmentRequest{Amount: decimal.NewFromInt(100)}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInactiveBudget)
}

// --- ReleaseCommitment ---

func (suite *FundsServiceTestSuite) TestReleaseCommitment_Success() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	updated, err := suite.service.ReleaseCommitment(ctx, amount.BudgetAmountID, dto.ReleaseCommitmentRequest{Amount: decimal.NewFromInt(500)}, uuid.NewString())

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.CommittedAmount.Equal(decimal.NewFromInt(1500)))
	assert.True(suite.T(), updated.Available().Equal(decimal.NewFromInt(4500)))
}

func (suite *FundsServiceTestSuite) TestReleaseCommitment_OverRelease() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	updated, err := suite.service.ReleaseCommitment(ctx, amount.BudgetAmountID, dto.ReleaseCommitmentRequest{Amount: decimal.NewFromInt(2500)}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrOverRelease)
}

// --- ConsumeEncumbrance ---

func (suite *FundsServiceTestSuite) TestConsumeEncumbrance_WithCommitmentRelease() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	updated, err := suite.service.ConsumeEncumbrance(ctx, amount.BudgetAmountID, dto.ConsumeEncumbranceRequest{
		Amount:            decimal.NewFromInt(2000),
		ReleaseCommitment: true,
	}, uuid.NewString())

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.CommittedAmount.IsZero())
	assert.True(suite.T(), updated.EncumberedAmount.Equal(decimal.NewFromInt(5000)))
	// The waterfall move leaves total consumption unchanged.
	assert.True(suite.T(), updated.Available().Equal(decimal.NewFromInt(4000)))
}

func (suite *FundsServiceTestSuite) TestConsumeEncumbrance_DirectChecksAvailability() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	updated, err := suite.service.ConsumeEncumbrance(ctx, amount.BudgetAmountID, dto.ConsumeEncumbranceRequest{
		Amount:            decimal.NewFromInt(5000),
		ReleaseCommitment: false,
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

// --- ConsumeActual ---

func (suite *FundsServiceTestSuite) TestConsumeActual_WithEncumbranceRelease() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	updated, err := suite.service.ConsumeActual(ctx, amount.BudgetAmountID, dto.ConsumeActualRequest{
		Amount:             decimal.NewFromInt(3000),
		ReleaseEncumbrance: true,
	}, uuid.NewString())

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.EncumberedAmount.IsZero())
	assert.True(suite.T(), updated.ActualAmount.Equal(decimal.NewFromInt(4000)))
	assert.True(suite.T(), updated.Available().Equal(decimal.NewFromInt(4000)))
}

func (suite *FundsServiceTestSuite) TestConsumeActual_ReleaseMoreThanEncumbered() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	updated, err := suite.service.ConsumeActual(ctx, amount.BudgetAmountID, dto.ConsumeActualRequest{
		Amount:             decimal.NewFromInt(3001),
		ReleaseEncumbrance: true,
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrOverRelease)
}

// --- ReverseActual ---

func (suite *FundsServiceTestSuite) TestReverseActual_Success() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	updated, err := suite.service.ReverseActual(ctx, amount.BudgetAmountID, dto.ReverseActualRequest{Amount: decimal.NewFromInt(1000)}, uuid.NewString())

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.ActualAmount.IsZero())
	assert.True(suite.T(), updated.Available().Equal(decimal.NewFromInt(5000)))
}

// --- AdjustAmount ---

func (suite *FundsServiceTestSuite) TestAdjustAmount_Success() {
	ctx := context.Background()
	budget := suite.activeBudget()
	amount := suite.ledgerRow(budget.BudgetID)
	suite.expectMutation(ctx, budget, amount)

	updated, err := suite.service.AdjustAmount(ctx, amount.BudgetAmountID, dto.AdjustAmountRequest{
		Amount: decimal.NewFromInt(-2000),
		Reason: "Q3 budget cut",
	}, uuid.NewString())

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.TotalBudget().Equal(decimal.NewFromInt(8000)))
	assert.True(suite.T(), updated.Available().Equal(decimal.NewFromInt(2000)))
	suite.Contains(updated.Notes, "Q3 budget cut")
	suite.NotNil(updated.LastAdjustedAt)
}

func (suite *FundsServiceTestSuite) TestAdjustAmount_ZeroDelta() {
	ctx := context.Background()

	updated, err := suite.service.AdjustAmount(ctx, uuid.NewString(), dto.AdjustAmountRequest{Amount: decimal.Zero}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *FundsServiceTestSuite) TestAdjustAmount_BudgetNotActive() {
	ctx := context.Background()
	budget := suite.activeBudget()
	budget.Status = domain.BudgetDraft
	budget.IsActive = false
	amount := suite.ledgerRow(budget.BudgetID)

	suite.mockFundsRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockFundsRepo.On("FindAmountByIDForUpdate", ctx, nil, amount.BudgetAmountID).Return(amount, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, amount.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("Rollback", ctx, nil).Return(nil).Once()

	updated, err := suite.service.AdjustAmount(ctx, amount.BudgetAmountID, dto.AdjustAmountRequest{Amount: decimal.NewFromInt(100)}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func TestFundsService(t *testing.T) {
	suite.Run(t, new(FundsServiceTestSuite))
}
