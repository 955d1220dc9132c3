package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	portssvc "github.com/procureflow/budget_control_app/internal/core/ports/services"
	"github.com/procureflow/budget_control_app/internal/dto"
	"github.com/procureflow/budget_control_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// checkService validates candidate transactions against active budgets. The
// check is read-only; consumption is recorded separately through the ledger.
type checkService struct {
	budgetRepo  portsrepo.BudgetRepositoryFacade
	segmentRepo portsrepo.SegmentRepositoryFacade
}

// NewCheckService creates a new CheckService.
func NewCheckService(budgetRepo portsrepo.BudgetRepositoryFacade, segmentRepo portsrepo.SegmentRepositoryFacade) portssvc.CheckSvcFacade {
	return &checkService{
		budgetRepo:  budgetRepo,
		segmentRepo: segmentRepo,
	}
}

// Ensure checkService implements the portssvc.CheckSvcFacade interface
var _ portssvc.CheckSvcFacade = (*checkService)(nil)

// CheckTransaction evaluates the candidate transaction against every ACTIVE
// budget whose period covers its date. Each budget is checked independently;
// the overall decision folds the per-budget results with the strictest level
// winning and a single block failing the whole check.
func (s *checkService) CheckTransaction(ctx context.Context, req dto.BudgetCheckRequest) (*dto.BudgetCheckResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	date, err := time.Parse(dateLayout, req.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid transaction date %q", apperrors.ErrValidation, req.TransactionDate)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}

	budgets, err := s.budgetRepo.ListActiveBudgetsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active budgets for %s: %w", req.TransactionDate, err)
	}
	if len(budgets) == 0 {
		resp := dto.ToBudgetCheckResponse(domain.CheckResult{
			Allowed:      true,
			ControlLevel: domain.ControlNone,
			Violations:   []domain.CheckViolation{},
			Message:      "no active budget found for this date",
		}, 0)
		return &resp, nil
	}

	merged := domain.CheckResult{
		Allowed:      true,
		ControlLevel: domain.ControlNone,
		Violations:   []domain.CheckViolation{},
	}
	for i := range budgets {
		budget := &budgets[i]
		targets, err := s.segmentRepo.FindApplicableSegments(ctx, budget.BudgetID, req.SegmentValueIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve segments for budget %s: %w", budget.BudgetID, err)
		}

		result := domain.CheckBudget(budget, targets, req.Amount, date)
		merged.Violations = append(merged.Violations, result.Violations...)
		if result.ControlLevel.Priority() > merged.ControlLevel.Priority() {
			merged.ControlLevel = result.ControlLevel
		}
		// A block from any budget fails the whole check; its message wins.
		// Otherwise the first violating result provides the message.
		if !result.Allowed {
			if merged.Allowed {
				merged.Allowed = false
				merged.Message = result.Message
			}
		} else if merged.Allowed && merged.Message == "" && len(result.Violations) > 0 {
			merged.Message = result.Message
		}
	}
	if merged.Message == "" {
		merged.Message = "budget check passed"
	}

	logger.Info("Budget check evaluated",
		slog.Bool("allowed", merged.Allowed),
		slog.String("control_level", string(merged.ControlLevel)),
		slog.Int("budgets_evaluated", len(budgets)),
		slog.Int("violations", len(merged.Violations)))

	resp := dto.ToBudgetCheckResponse(merged, len(budgets))
	return &resp, nil
}
