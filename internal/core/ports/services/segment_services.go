package services

import (
	"context"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/procureflow/budget_control_app/internal/dto"
)

// SegmentReaderSvc defines read operations for budget segment memberships
type SegmentReaderSvc interface {
	// ListSegments retrieves the memberships of a budget with their segment
	// master entries.
	ListSegments(ctx context.Context, budgetID string) ([]domain.BudgetSegmentDetail, error)

	// ListSegmentValues retrieves the segment master.
	ListSegmentValues(ctx context.Context, params dto.ListSegmentValuesParams) ([]domain.SegmentValue, error)
}

// SegmentWriterSvc defines write operations for budget segment memberships
type SegmentWriterSvc interface {
	// AddSegments enrolls segment values into a DRAFT budget.
	AddSegments(ctx context.Context, budgetID string, req dto.AddSegmentsRequest, creatorUserID string) ([]domain.BudgetSegmentDetail, error)

	// UpdateSegment updates a membership's override, active flag and notes.
	UpdateSegment(ctx context.Context, budgetSegmentID string, req dto.UpdateSegmentRequest, updaterUserID string) (*domain.BudgetSegment, error)

	// RemoveSegment removes a membership from a DRAFT budget.
	RemoveSegment(ctx context.Context, budgetSegmentID string) error
}

// SegmentSvcFacade combines all segment-related service interfaces
type SegmentSvcFacade interface {
	SegmentReaderSvc
	SegmentWriterSvc
}
