package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/core/services"
)

type ExcelServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo  *MockBudgetRepository
	mockSegmentRepo *MockSegmentRepository
	mockFundsRepo   *MockFundsRepository
	service         portssvc.ExcelSvcFacade
}

func (suite *ExcelServiceTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockSegmentRepo = new(MockSegmentRepository)
	suite.mockFundsRepo = new(MockFundsRepository)
	suite.service = services.NewExcelService(suite.mockBudgetRepo, suite.mockSegmentRepo, suite.mockFundsRepo)
}

func (suite *ExcelServiceTestSuite) draftBudget() *domain.Budget {
	return &domain.Budget{
		BudgetID:            uuid.NewString(),
		BudgetCode:          "FY2026-OPERATING",
		DefaultControlLevel: domain.ControlAbsolute,
		Status:              domain.BudgetDraft,
	}
}

// uploadFile builds an in-memory xlsx upload with the standard header row
// followed by the given data rows.
func (suite *ExcelServiceTestSuite) uploadFile(rows [][]interface{}) *bytes.Reader {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Segment Code", "Original Budget", "Adjustment", "Notes"}
	suite.Require().NoError(f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		suite.Require().NoError(err)
		suite.Require().NoError(f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	suite.Require().NoError(err)
	return bytes.NewReader(buf.Bytes())
}

func (suite *ExcelServiceTestSuite) TestImportAmounts_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.draftBudget()
	segA := &domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: budget.BudgetID}
	segB := &domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: budget.BudgetID}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByCode", ctx, budget.BudgetID, "5000").Return(segA, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByCode", ctx, budget.BudgetID, "5100").Return(segB, nil).Once()
	suite.mockFundsRepo.On("UpsertAmount", ctx, mock.MatchedBy(func(a domain.BudgetAmount) bool {
		return a.BudgetSegmentID == segA.BudgetSegmentID && a.OriginalBudget.Equal(decimal.NewFromInt(10000)) && a.CreatedBy == userID
	})).Return(true, nil).Once()
	suite.mockFundsRepo.On("UpsertAmount", ctx, mock.MatchedBy(func(a domain.BudgetAmount) bool {
		return a.BudgetSegmentID == segB.BudgetSegmentID && a.AdjustmentAmount.Equal(decimal.NewFromInt(-500))
	})).Return(false, nil).Once()

	file := suite.uploadFile([][]interface{}{
		{"5000", 10000, "", "operating"},
		{"5100", 20000, -500, ""},
	})

	result, err := suite.service.ImportAmounts(ctx, budget.BudgetID, file, userID)

	suite.Require().NoError(err)
	suite.Equal(2, result.TotalRows)
	suite.Equal(2, result.SuccessCount)
	suite.Equal(2, result.ImportedCount) // mirrors success even when a row replaced an existing amount
	suite.Equal(0, result.ErrorCount)
	assert.True(suite.T(), result.TotalBudget.Equal(decimal.NewFromInt(29500)))
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

func (suite *ExcelServiceTestSuite) TestImportAmounts_BlankAmountDefaultsToZero() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.draftBudget()
	segment := &domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: budget.BudgetID}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByCode", ctx, budget.BudgetID, "5000").Return(segment, nil).Once()
	suite.mockFundsRepo.On("UpsertAmount", ctx, mock.MatchedBy(func(a domain.BudgetAmount) bool {
		return a.OriginalBudget.IsZero() && a.AdjustmentAmount.IsZero() && a.Notes == "only notes"
	})).Return(true, nil).Once()

	file := suite.uploadFile([][]interface{}{
		{"5000", "", "", "only notes"},
	})

	result, err := suite.service.ImportAmounts(ctx, budget.BudgetID, file, userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.SuccessCount)
	suite.Equal(1, result.ImportedCount)
	suite.Equal(0, result.ErrorCount)
	assert.True(suite.T(), result.TotalBudget.IsZero())
	suite.mockFundsRepo.AssertExpectations(suite.T())
}

func (suite *ExcelServiceTestSuite) TestImportAmounts_NotDraft() {
	ctx := context.Background()
	budget := suite.draftBudget()
	budget.Status = domain.BudgetActive

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	file := suite.uploadFile([][]interface{}{{"5000", 10000, "", ""}})
	result, err := suite.service.ImportAmounts(ctx, budget.BudgetID, file, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrImportValidation)
	suite.mockFundsRepo.AssertNotCalled(suite.T(), "UpsertAmount", mock.Anything, mock.Anything)
}

func (suite *ExcelServiceTestSuite) TestImportAmounts_RowLevelErrors() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.draftBudget()
	segment := &domain.BudgetSegment{BudgetSegmentID: uuid.NewString(), BudgetID: budget.BudgetID}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByCode", ctx, budget.BudgetID, "5000").Return(segment, nil).Once()
	suite.mockSegmentRepo.On("FindBudgetSegmentByCode", ctx, budget.BudgetID, "9999").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFundsRepo.On("UpsertAmount", ctx, mock.AnythingOfType("domain.BudgetAmount")).Return(true, nil).Once()

	file := suite.uploadFile([][]interface{}{
		{"5000", 10000, "", ""},          // valid
		{"", 500, "", ""},                // missing code
		{"5000", 700, "", ""},            // duplicate code
		{"5200", "ten thousand", "", ""}, // malformed amount
		{"5300", -100, "", ""},           // negative original
		{"9999", 100, "", ""},            // not enrolled in the budget
	})

	result, err := suite.service.ImportAmounts(ctx, budget.BudgetID, file, userID)

	suite.Require().NoError(err)
	suite.Equal(6, result.TotalRows)
	suite.Equal(1, result.SuccessCount)
	suite.Equal(5, result.ErrorCount)
	suite.Require().Len(result.Errors, 5)
	suite.Contains(result.Errors[0], "missing segment code")
	suite.Contains(result.Errors[1], "duplicate segment code '5000'")
	suite.Contains(result.Errors[2], "invalid original budget")
	suite.Contains(result.Errors[3], "cannot be negative")
	suite.Contains(result.Errors[4], "not part of this budget")
	assert.True(suite.T(), result.TotalBudget.Equal(decimal.NewFromInt(10000)))
}

func (suite *ExcelServiceTestSuite) TestExportBudget_RoundTripsThroughImportParser() {
	ctx := context.Background()
	budget := suite.draftBudget()
	details := []domain.AmountDetail{
		{
			Budget:       *budget,
			SegmentValue: domain.SegmentValue{Code: "5000", Alias: "Salaries", SegmentTypeName: "Account"},
			Amount: domain.BudgetAmount{
				OriginalBudget:  decimal.NewFromInt(10000),
				CommittedAmount: decimal.NewFromInt(2000),
			},
		},
	}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockFundsRepo.On("ListAmountDetails", ctx, budget.BudgetID).Return(details, nil).Once()

	data, err := suite.service.ExportBudget(ctx, budget.BudgetID)

	suite.Require().NoError(err)
	suite.Require().NotEmpty(data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	suite.Require().NoError(err)
	defer f.Close()

	code, err := f.GetCellValue("Budget Header", "A2")
	suite.Require().NoError(err)
	suite.Equal("FY2026-OPERATING", code)

	segCode, err := f.GetCellValue("Budget Amounts", "A2")
	suite.Require().NoError(err)
	suite.Equal("5000", segCode)
}

func (suite *ExcelServiceTestSuite) TestGenerateTemplate_PrefillsSegmentCodes() {
	ctx := context.Background()
	budget := suite.draftBudget()
	segments := []domain.BudgetSegmentDetail{
		{SegmentValue: domain.SegmentValue{Code: "5000"}},
		{SegmentValue: domain.SegmentValue{Code: "5100"}},
	}

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockSegmentRepo.On("ListBudgetSegments", ctx, budget.BudgetID).Return(segments, nil).Once()

	data, err := suite.service.GenerateTemplate(ctx, budget.BudgetID)

	suite.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	suite.Require().NoError(err)
	defer f.Close()

	first, err := f.GetCellValue("Amounts", "A2")
	suite.Require().NoError(err)
	suite.Equal("5000", first)
	second, err := f.GetCellValue("Amounts", "A3")
	suite.Require().NoError(err)
	suite.Equal("5100", second)
}

func TestExcelService(t *testing.T) {
	suite.Run(t, new(ExcelServiceTestSuite))
}
