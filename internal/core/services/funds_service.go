package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

// fundsService manages the budget amount ledger and its consumption funnel.
type fundsService struct {
	fundsRepo   portsrepo.FundsRepositoryFacade
	segmentRepo portsrepo.SegmentRepositoryFacade
	budgetRepo  portsrepo.BudgetRepositoryFacade
}

// NewFundsService creates a new FundsService.
func NewFundsService(fundsRepo portsrepo.FundsRepositoryFacade, segmentRepo portsrepo.SegmentRepositoryFacade, budgetRepo portsrepo.BudgetRepositoryFacade) portssvc.FundsSvcFacade {
	return &fundsService{
		fundsRepo:   fundsRepo,
		segmentRepo: segmentRepo,
		budgetRepo:  budgetRepo,
	}
}

// Ensure fundsService implements the portssvc.FundsSvcFacade interface
var _ portssvc.FundsSvcFacade = (*fundsService)(nil)

// CreateAmount funds a budget segment. One ledger row per membership.
func (s *fundsService) CreateAmount(ctx context.Context, budgetID string, req dto.CreateAmountRequest, creatorUserID string) (*domain.BudgetAmount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.Status != domain.BudgetDraft {
		return nil, fmt.Errorf("%w: amounts can only be added to a DRAFT budget", apperrors.ErrInvalidTransition)
	}
	if req.OriginalBudget.IsNegative() {
		return nil, fmt.Errorf("%w: original budget cannot be negative", apperrors.ErrValidation)
	}

	segment, err := s.segmentRepo.FindBudgetSegmentByID(ctx, req.BudgetSegmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget segment %s: %w", req.BudgetSegmentID, err)
	}
	if segment.BudgetID != budgetID {
		return nil, fmt.Errorf("%w: segment %s does not belong to budget %s", apperrors.ErrValidation, req.BudgetSegmentID, budgetID)
	}

	now := time.Now().UTC()
	amount := domain.BudgetAmount{
		BudgetAmountID:   uuid.NewString(),
		BudgetID:         budgetID,
		BudgetSegmentID:  req.BudgetSegmentID,
		OriginalBudget:   req.OriginalBudget,
		AdjustmentAmount: decimal.Zero,
		CommittedAmount:  decimal.Zero,
		EncumberedAmount: decimal.Zero,
		ActualAmount:     decimal.Zero,
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.fundsRepo.SaveAmount(ctx, amount); err != nil {
		logger.Error("Failed to save budget amount", slog.String("error", err.Error()), slog.String("budget_segment_id", req.BudgetSegmentID))
		return nil, fmt.Errorf("failed to save budget amount: %w", err)
	}

	logger.Info("Budget amount created", slog.String("budget_amount_id", amount.BudgetAmountID), slog.String("budget_id", budgetID))
	return &amount, nil
}

// GetAmountByID retrieves a ledger row by its ID.
func (s *fundsService) GetAmountByID(ctx context.Context, budgetAmountID string) (*domain.BudgetAmount, error) {
	amount, err := s.fundsRepo.FindAmountByID(ctx, budgetAmountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget amount %s: %w", budgetAmountID, err)
	}
	return amount, nil
}

// ListAmounts retrieves the ledger rows of a budget with their segment master
// entries.
func (s *fundsService) ListAmounts(ctx context.Context, budgetID string) ([]domain.AmountDetail, error) {
	if _, err := s.budgetRepo.FindBudgetByID(ctx, budgetID); err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	details, err := s.fundsRepo.ListAmountDetails(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list amounts for budget %s: %w", budgetID, err)
	}
	if details == nil {
		return []domain.AmountDetail{}, nil
	}
	return details, nil
}

// DeleteAmount removes an unconsumed ledger row from a DRAFT budget.
func (s *fundsService) DeleteAmount(ctx context.Context, budgetAmountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount, err := s.fundsRepo.FindAmountByID(ctx, budgetAmountID)
	if err != nil {
		return fmt.Errorf("failed to find budget amount %s: %w", budgetAmountID, err)
	}
	budget, err := s.budgetRepo.FindBudgetByID(ctx, amount.BudgetID)
	if err != nil {
		return fmt.Errorf("failed to find budget %s: %w", amount.BudgetID, err)
	}
	if budget.Status != domain.BudgetDraft {
		return fmt.Errorf("%w: amounts can only be deleted from a DRAFT budget", apperrors.ErrInvalidTransition)
	}
	if !amount.ConsumedTotal().IsZero() {
		return fmt.Errorf("%w: cannot delete a budget amount with recorded consumption", apperrors.ErrValidation)
	}

	if err := s.fundsRepo.DeleteAmount(ctx, budgetAmountID); err != nil {
		logger.Error("Failed to delete budget amount", slog.String("error", err.Error()), slog.String("budget_amount_id", budgetAmountID))
		return fmt.Errorf("failed to delete budget amount %s: %w", budgetAmountID, err)
	}
	logger.Info("Budget amount deleted", slog.String("budget_amount_id", budgetAmountID))
	return nil
}

// UpdateAmount updates a ledger row's details. The original budget may only
// change while the budget is still DRAFT; notes are updatable at any time.
func (s *fundsService) UpdateAmount(ctx context.Context, budgetAmountID string, req dto.UpdateAmountRequest, userID string) (*domain.BudgetAmount, error) {
	if req.OriginalBudget == nil && req.Notes == nil {
		return nil, fmt.Errorf("%w: no updatable fields provided", apperrors.ErrValidation)
	}
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if req.OriginalBudget != nil {
			if budget.Status != domain.BudgetDraft {
				return fmt.Errorf("%w: the original budget can only change while the budget is DRAFT", apperrors.ErrInvalidTransition)
			}
			if req.OriginalBudget.IsNegative() {
				return fmt.Errorf("%w: original budget cannot be negative", apperrors.ErrValidation)
			}
			a.OriginalBudget = *req.OriginalBudget
		}
		if req.Notes != nil {
			a.Notes = *req.Notes
		}
		a.LastUpdatedAt = now
		return nil
	})
}

// AdjustAmount moves a ledger row's budget ceiling by a signed delta. Only
// ACTIVE budgets may be adjusted.
func (s *fundsService) AdjustAmount(ctx context.Context, budgetAmountID string, req dto.AdjustAmountRequest, userID string) (*domain.BudgetAmount, error) {
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: adjustment amount cannot be zero", apperrors.ErrValidation)
	}
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if budget.Status != domain.BudgetActive {
			return fmt.Errorf("%w: only ACTIVE budgets can be adjusted", apperrors.ErrInvalidTransition)
		}
		a.AdjustBudget(req.Amount, req.Reason, now)
		return nil
	})
}

// ConsumeCommitment records a Stage 1 commitment (PR approval).
func (s *fundsService) ConsumeCommitment(ctx context.Context, budgetAmountID string, req dto.ConsumeCommitmentRequest, userID string) (*domain.BudgetAmount, error) {
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		return a.ConsumeCommitment(req.Amount, budget.IsActive, now)
	})
}

// ReleaseCommitment frees committed budget (PR cancellation).
func (s *fundsService) ReleaseCommitment(ctx context.Context, budgetAmountID string, req dto.ReleaseCommitmentRequest, userID string) (*domain.BudgetAmount, error) {
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if err := validatePositive(req.Amount); err != nil {
			return err
		}
		return a.ReleaseCommitment(req.Amount, now)
	})
}

// ConsumeEncumbrance records a Stage 2 encumbrance (PO approval).
func (s *fundsService) ConsumeEncumbrance(ctx context.Context, budgetAmountID string, req dto.ConsumeEncumbranceRequest, userID string) (*domain.BudgetAmount, error) {
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if err := validatePositive(req.Amount); err != nil {
			return err
		}
		return a.ConsumeEncumbrance(req.Amount, req.ReleaseCommitment, budget.IsActive, now)
	})
}

// ReleaseEncumbrance frees encumbered budget (PO cancellation).
func (s *fundsService) ReleaseEncumbrance(ctx context.Context, budgetAmountID string, req dto.ReleaseEncumbranceRequest, userID string) (*domain.BudgetAmount, error) {
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if err := validatePositive(req.Amount); err != nil {
			return err
		}
		return a.ReleaseEncumbrance(req.Amount, now)
	})
}

// ConsumeActual records Stage 3 actual spending (invoice posting).
func (s *fundsService) ConsumeActual(ctx context.Context, budgetAmountID string, req dto.ConsumeActualRequest, userID string) (*domain.BudgetAmount, error) {
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if err := validatePositive(req.Amount); err != nil {
			return err
		}
		return a.ConsumeActual(req.Amount, req.ReleaseEncumbrance, budget.IsActive, now)
	})
}

// ReverseActual backs out actual spending (credit memo or correction).
func (s *fundsService) ReverseActual(ctx context.Context, budgetAmountID string, req dto.ReverseActualRequest, userID string) (*domain.BudgetAmount, error) {
	return s.mutateAmount(ctx, budgetAmountID, userID, func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error {
		if err := validatePositive(req.Amount); err != nil {
			return err
		}
		return a.ReverseActual(req.Amount, now)
	})
}

// mutateAmount runs a ledger mutation as an atomic read-modify-write: the row
// is locked FOR UPDATE inside a transaction, mutated through the domain
// operation and written back before commit. Concurrent mutations of the same
// row serialize on the lock.
func (s *fundsService) mutateAmount(ctx context.Context, budgetAmountID string, userID string, op func(a *domain.BudgetAmount, budget *domain.Budget, now time.Time) error) (*domain.BudgetAmount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.fundsRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = s.fundsRepo.Rollback(ctx, tx) }()

	amount, err := s.fundsRepo.FindAmountByIDForUpdate(ctx, tx, budgetAmountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock budget amount %s: %w", budgetAmountID, err)
	}
	budget, err := s.budgetRepo.FindBudgetByID(ctx, amount.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", amount.BudgetID, err)
	}

	now := time.Now().UTC()
	if err := op(amount, budget, now); err != nil {
		return nil, err
	}
	amount.LastUpdatedBy = userID

	if err := s.fundsRepo.UpdateAmountInTx(ctx, tx, *amount); err != nil {
		logger.Error("Failed to write back budget amount", slog.String("error", err.Error()), slog.String("budget_amount_id", budgetAmountID))
		return nil, fmt.Errorf("failed to update budget amount %s: %w", budgetAmountID, err)
	}
	if err := s.fundsRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit budget amount update: %w", err)
	}

	return amount, nil
}

func validatePositive(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	return nil
}
