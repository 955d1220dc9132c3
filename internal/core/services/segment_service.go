package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
)

// segmentService manages budget segment memberships and the segment master
// read model.
type segmentService struct {
	segmentRepo portsrepo.SegmentRepositoryFacade
	budgetRepo  portsrepo.BudgetRepositoryFacade
	fundsRepo   portsrepo.FundsRepositoryFacade
}

// NewSegmentService creates a new SegmentService.
func NewSegmentService(segmentRepo portsrepo.SegmentRepositoryFacade, budgetRepo portsrepo.BudgetRepositoryFacade, fundsRepo portsrepo.FundsRepositoryFacade) portssvc.SegmentSvcFacade {
	return &segmentService{
		segmentRepo: segmentRepo,
		budgetRepo:  budgetRepo,
		fundsRepo:   fundsRepo,
	}
}

// Ensure segmentService implements the portssvc.SegmentSvcFacade interface
var _ portssvc.SegmentSvcFacade = (*segmentService)(nil)

// AddSegments enrolls segment values into a DRAFT budget.
func (s *segmentService) AddSegments(ctx context.Context, budgetID string, req dto.AddSegmentsRequest, creatorUserID string) ([]domain.BudgetSegmentDetail, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.Status != domain.BudgetDraft {
		return nil, fmt.Errorf("%w: segments can only be added to a DRAFT budget", apperrors.ErrInvalidTransition)
	}

	valuesMap, err := s.segmentRepo.FindSegmentValuesByIDs(ctx, req.SegmentValueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up segment values: %w", err)
	}
	missing := []string{}
	for _, id := range req.SegmentValueIDs {
		if _, found := valuesMap[id]; !found {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown segment values: %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}

	now := time.Now().UTC()
	details := make([]domain.BudgetSegmentDetail, 0, len(req.SegmentValueIDs))
	for _, segmentValueID := range req.SegmentValueIDs {
		segment := domain.BudgetSegment{
			BudgetSegmentID: uuid.NewString(),
			BudgetID:        budgetID,
			SegmentValueID:  segmentValueID,
			ControlLevel:    req.ControlLevel,
			IsActive:        true,
			Notes:           req.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := s.segmentRepo.SaveBudgetSegment(ctx, segment); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return nil, fmt.Errorf("%w: segment value %s is already enrolled in this budget", apperrors.ErrDuplicate, valuesMap[segmentValueID].Code)
			}
			logger.Error("Failed to save budget segment", slog.String("error", err.Error()), slog.String("budget_id", budgetID), slog.String("segment_value_id", segmentValueID))
			return nil, fmt.Errorf("failed to save budget segment: %w", err)
		}
		details = append(details, domain.BudgetSegmentDetail{
			BudgetSegment: segment,
			SegmentValue:  valuesMap[segmentValueID],
		})
	}

	logger.Info("Segments added to budget", slog.String("budget_id", budgetID), slog.Int("count", len(details)))
	return details, nil
}

// ListSegments retrieves the memberships of a budget with their segment
// master entries.
func (s *segmentService) ListSegments(ctx context.Context, budgetID string) ([]domain.BudgetSegmentDetail, error) {
	if _, err := s.budgetRepo.FindBudgetByID(ctx, budgetID); err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	details, err := s.segmentRepo.ListBudgetSegments(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments for budget %s: %w", budgetID, err)
	}
	if details == nil {
		return []domain.BudgetSegmentDetail{}, nil
	}
	return details, nil
}

// UpdateSegment updates a membership's override, active flag and notes.
func (s *segmentService) UpdateSegment(ctx context.Context, budgetSegmentID string, req dto.UpdateSegmentRequest, updaterUserID string) (*domain.BudgetSegment, error) {
	segment, err := s.segmentRepo.FindBudgetSegmentByID(ctx, budgetSegmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget segment %s: %w", budgetSegmentID, err)
	}

	if req.ControlLevel != nil {
		segment.ControlLevel = req.ControlLevel
	}
	if req.IsActive != nil {
		segment.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		segment.Notes = *req.Notes
	}
	segment.LastUpdatedAt = time.Now().UTC()
	segment.LastUpdatedBy = updaterUserID

	if err := s.segmentRepo.UpdateBudgetSegment(ctx, *segment); err != nil {
		return nil, fmt.Errorf("failed to update budget segment %s: %w", budgetSegmentID, err)
	}
	return segment, nil
}

// RemoveSegment removes a membership from a DRAFT budget. A funded membership
// must have its ledger row deleted first.
func (s *segmentService) RemoveSegment(ctx context.Context, budgetSegmentID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	segment, err := s.segmentRepo.FindBudgetSegmentByID(ctx, budgetSegmentID)
	if err != nil {
		return fmt.Errorf("failed to find budget segment %s: %w", budgetSegmentID, err)
	}
	budget, err := s.budgetRepo.FindBudgetByID(ctx, segment.BudgetID)
	if err != nil {
		return fmt.Errorf("failed to find budget %s: %w", segment.BudgetID, err)
	}
	if budget.Status != domain.BudgetDraft {
		return fmt.Errorf("%w: segments can only be removed from a DRAFT budget", apperrors.ErrInvalidTransition)
	}

	if _, err := s.fundsRepo.FindAmountByBudgetSegment(ctx, budgetSegmentID); err == nil {
		return fmt.Errorf("%w: segment has a budget amount, delete it first", apperrors.ErrValidation)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check funding for segment %s: %w", budgetSegmentID, err)
	}

	if err := s.segmentRepo.DeleteBudgetSegment(ctx, budgetSegmentID); err != nil {
		logger.Error("Failed to delete budget segment", slog.String("error", err.Error()), slog.String("budget_segment_id", budgetSegmentID))
		return fmt.Errorf("failed to delete budget segment %s: %w", budgetSegmentID, err)
	}
	logger.Info("Segment removed from budget", slog.String("budget_id", segment.BudgetID), slog.String("budget_segment_id", budgetSegmentID))
	return nil
}

// ListSegmentValues retrieves the segment master.
func (s *segmentService) ListSegmentValues(ctx context.Context, params dto.ListSegmentValuesParams) ([]domain.SegmentValue, error) {
	values, err := s.segmentRepo.ListSegmentValues(ctx, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list segment values: %w", err)
	}
	if values == nil {
		return []domain.SegmentValue{}, nil
	}
	return values, nil
}
