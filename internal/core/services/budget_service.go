package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

const dateLayout = "2006-01-02"

// budgetService provides budget definition and lifecycle operations.
type budgetService struct {
	budgetRepo   portsrepo.BudgetRepositoryFacade
	fundsRepo    portsrepo.FundsRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, fundsRepo portsrepo.FundsRepositoryFacade, currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo:   budgetRepo,
		fundsRepo:    fundsRepo,
		currencyRepo: currencyRepo,
	}
}

// Ensure budgetService implements the portssvc.BudgetSvcFacade interface
var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// CreateBudget persists a new budget in DRAFT status.
func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	startDate, endDate, err := parseBudgetPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown currency code %s", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to verify currency %s: %w", req.CurrencyCode, err)
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:            uuid.NewString(),
		BudgetCode:          req.BudgetCode,
		BudgetName:          req.BudgetName,
		Description:         req.Description,
		StartDate:           startDate,
		EndDate:             endDate,
		CurrencyCode:        req.CurrencyCode,
		DefaultControlLevel: req.DefaultControlLevel,
		Status:              domain.BudgetDraft,
		IsActive:            false,
		Notes:               req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		logger.Error("Failed to save budget", slog.String("error", err.Error()), slog.String("budget_code", req.BudgetCode))
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID), slog.String("budget_code", budget.BudgetCode))
	return &budget, nil
}

// GetBudgetByID retrieves a specific budget by its ID.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	return budget, nil
}

// ListBudgets retrieves budgets matching the given filters.
func (s *budgetService) ListBudgets(ctx context.Context, params dto.ListBudgetsParams) ([]domain.Budget, error) {
	filter := portsrepo.BudgetListFilter{
		Status:       domain.BudgetStatus(params.Status),
		ControlLevel: domain.ControlLevel(params.ControlLevel),
		Search:       params.Search,
		Limit:        params.Limit,
		Offset:       params.Offset,
	}
	if params.Date != "" {
		date, err := time.Parse(dateLayout, params.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date filter %q", apperrors.ErrValidation, params.Date)
		}
		filter.DateWithin = &date
	}

	budgets, err := s.budgetRepo.ListBudgets(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	if budgets == nil {
		return []domain.Budget{}, nil
	}
	return budgets, nil
}

// UpdateBudget updates a budget's details. Only DRAFT budgets are editable.
func (s *budgetService) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, updaterUserID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.Status != domain.BudgetDraft {
		return nil, fmt.Errorf("%w: only DRAFT budgets can be edited", apperrors.ErrInvalidTransition)
	}

	if req.BudgetName != nil {
		budget.BudgetName = *req.BudgetName
	}
	if req.Description != nil {
		budget.Description = *req.Description
	}
	if req.Notes != nil {
		budget.Notes = *req.Notes
	}
	if req.DefaultControlLevel != nil {
		budget.DefaultControlLevel = *req.DefaultControlLevel
	}
	startStr := budget.StartDate.Format(dateLayout)
	endStr := budget.EndDate.Format(dateLayout)
	if req.StartDate != nil {
		startStr = *req.StartDate
	}
	if req.EndDate != nil {
		endStr = *req.EndDate
	}
	if req.StartDate != nil || req.EndDate != nil {
		startDate, endDate, err := parseBudgetPeriod(startStr, endStr)
		if err != nil {
			return nil, err
		}
		budget.StartDate = startDate
		budget.EndDate = endDate
	}

	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = updaterUserID

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		logger.Error("Failed to update budget", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to update budget %s: %w", budgetID, err)
	}
	return budget, nil
}

// DeleteBudget destroys a DRAFT budget that has no funded amounts.
func (s *budgetService) DeleteBudget(ctx context.Context, budgetID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	amountCount, err := s.budgetRepo.CountBudgetAmounts(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("failed to count budget amounts for %s: %w", budgetID, err)
	}
	if ok, reason := budget.CanDelete(amountCount); !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, reason)
	}

	if err := s.budgetRepo.DeleteBudget(ctx, budgetID); err != nil {
		logger.Error("Failed to delete budget", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		return fmt.Errorf("failed to delete budget %s: %w", budgetID, err)
	}
	logger.Info("Budget deleted", slog.String("budget_id", budgetID))
	return nil
}

// ActivateBudget transitions a DRAFT budget to ACTIVE.
func (s *budgetService) ActivateBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	segmentCount, err := s.budgetRepo.CountBudgetSegments(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count budget segments for %s: %w", budgetID, err)
	}
	amountCount, err := s.budgetRepo.CountBudgetAmounts(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count budget amounts for %s: %w", budgetID, err)
	}

	if err := budget.Activate(userID, time.Now().UTC(), segmentCount, amountCount); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		logger.Error("Failed to persist budget activation", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to activate budget %s: %w", budgetID, err)
	}
	logger.Info("Budget activated", slog.String("budget_id", budgetID), slog.String("activated_by", userID))
	return budget, nil
}

// DeactivateBudget switches an ACTIVE budget back to DRAFT.
func (s *budgetService) DeactivateBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.Status != domain.BudgetActive {
		return nil, fmt.Errorf("%w: only ACTIVE budgets can be deactivated", apperrors.ErrInvalidTransition)
	}

	budget.Deactivate(userID, time.Now().UTC())
	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		logger.Error("Failed to persist budget deactivation", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to deactivate budget %s: %w", budgetID, err)
	}
	logger.Info("Budget deactivated", slog.String("budget_id", budgetID))
	return budget, nil
}

// CloseBudget transitions a budget to its terminal CLOSED status.
func (s *budgetService) CloseBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.Status == domain.BudgetClosed {
		return nil, fmt.Errorf("%w: budget is already closed", apperrors.ErrInvalidTransition)
	}

	budget.Close(userID, time.Now().UTC())
	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		logger.Error("Failed to persist budget close", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to close budget %s: %w", budgetID, err)
	}
	logger.Info("Budget closed", slog.String("budget_id", budgetID))
	return budget, nil
}

// GetBudgetSummary retrieves the aggregated reporting view of a budget.
func (s *budgetService) GetBudgetSummary(ctx context.Context, budgetID string) (*domain.BudgetSummary, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	totals, err := s.fundsRepo.SummarizeBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize budget %s: %w", budgetID, err)
	}
	details, err := s.fundsRepo.ListAmountDetails(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list amounts for budget %s: %w", budgetID, err)
	}

	return &domain.BudgetSummary{
		Budget:    *budget,
		Totals:    *totals,
		Breakdown: buildSegmentTypeBreakdown(details),
	}, nil
}

// buildSegmentTypeBreakdown aggregates ledger rows by segment type, keeping
// the order in which types first appear in the listing.
func buildSegmentTypeBreakdown(details []domain.AmountDetail) []domain.SegmentTypeBreakdown {
	index := make(map[string]int)
	breakdown := []domain.SegmentTypeBreakdown{}
	for _, d := range details {
		segType := d.SegmentValue.SegmentTypeName
		i, ok := index[segType]
		if !ok {
			i = len(breakdown)
			index[segType] = i
			breakdown = append(breakdown, domain.SegmentTypeBreakdown{SegmentType: segType})
		}
		breakdown[i].TotalBudget = breakdown[i].TotalBudget.Add(d.Amount.TotalBudget())
		breakdown[i].Committed = breakdown[i].Committed.Add(d.Amount.CommittedAmount)
		breakdown[i].Encumbered = breakdown[i].Encumbered.Add(d.Amount.EncumberedAmount)
		breakdown[i].Actual = breakdown[i].Actual.Add(d.Amount.ActualAmount)
		breakdown[i].Available = breakdown[i].Available.Add(d.Amount.Available())
		breakdown[i].Count++
	}
	for i := range breakdown {
		totals := domain.BudgetTotals{
			TotalOriginal:   breakdown[i].TotalBudget,
			TotalCommitted:  breakdown[i].Committed,
			TotalEncumbered: breakdown[i].Encumbered,
			TotalActual:     breakdown[i].Actual,
		}
		breakdown[i].UtilizationPercentage = totals.UtilizationPercentage()
	}
	return breakdown
}

// parseBudgetPeriod parses and validates an inclusive date range.
func parseBudgetPeriod(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date %q", apperrors.ErrValidation, start)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date %q", apperrors.ErrValidation, end)
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date must not be before start date", apperrors.ErrValidation)
	}
	return startDate, endDate, nil
}
