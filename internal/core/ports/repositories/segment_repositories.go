package repositories

import (
	"context"

	"github.com/procureflow/budget_control_app/internal/core/domain"
)

// SegmentValueReader defines read operations against the segment master.
type SegmentValueReader interface {
	// FindSegmentValueByID retrieves a segment value by its identifier.
	FindSegmentValueByID(ctx context.Context, segmentValueID string) (*domain.SegmentValue, error)

	// FindSegmentValuesByIDs retrieves multiple segment values by their IDs.
	FindSegmentValuesByIDs(ctx context.Context, segmentValueIDs []string) (map[string]domain.SegmentValue, error)

	// ListSegmentValues retrieves the segment master, ordered by type then code.
	ListSegmentValues(ctx context.Context, limit int, offset int) ([]domain.SegmentValue, error)
}

// BudgetSegmentReader defines read operations for budget segment memberships
type BudgetSegmentReader interface {
	// FindBudgetSegmentByID retrieves a specific membership.
	FindBudgetSegmentByID(ctx context.Context, budgetSegmentID string) (*domain.BudgetSegment, error)

	// FindBudgetSegmentByCode retrieves the membership of a budget whose
	// segment value has the given code. Used by the bulk amount import.
	FindBudgetSegmentByCode(ctx context.Context, budgetID string, segmentCode string) (*domain.BudgetSegment, error)

	// ListBudgetSegments retrieves all memberships of a budget joined with
	// their segment master entries.
	ListBudgetSegments(ctx context.Context, budgetID string) ([]domain.BudgetSegmentDetail, error)

	// FindApplicableSegments retrieves the active, funded memberships of a
	// budget for the given segment values, joined with their ledger rows.
	// Memberships without a ledger row are not returned.
	FindApplicableSegments(ctx context.Context, budgetID string, segmentValueIDs []string) ([]domain.CheckTarget, error)
}

// BudgetSegmentWriter defines write operations for budget segment memberships
type BudgetSegmentWriter interface {
	// SaveBudgetSegment persists a new membership.
	SaveBudgetSegment(ctx context.Context, segment domain.BudgetSegment) error

	// UpdateBudgetSegment updates a membership's override, flag and notes.
	UpdateBudgetSegment(ctx context.Context, segment domain.BudgetSegment) error

	// DeleteBudgetSegment removes a membership.
	DeleteBudgetSegment(ctx context.Context, budgetSegmentID string) error
}

// SegmentRepositoryFacade combines all segment-related repository interfaces
type SegmentRepositoryFacade interface {
	SegmentValueReader
	BudgetSegmentReader
	BudgetSegmentWriter
}
