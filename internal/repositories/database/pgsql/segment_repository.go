package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	"github.com/procureflow/budget_control_app/internal/models"
)

type PgxSegmentRepository struct {
	pool *pgxpool.Pool
}

// newPgxSegmentRepository creates a new repository for segment data.
func newPgxSegmentRepository(pool *pgxpool.Pool) portsrepo.SegmentRepositoryFacade {
	return &PgxSegmentRepository{pool: pool}
}

// Ensure PgxSegmentRepository implements portsrepo.SegmentRepositoryFacade
var _ portsrepo.SegmentRepositoryFacade = (*PgxSegmentRepository)(nil)

// Helper to convert a models.BudgetSegment from DB to domain.BudgetSegment
func toDomainBudgetSegment(m models.BudgetSegment) domain.BudgetSegment {
	var level *domain.ControlLevel
	if m.ControlLevel != nil {
		l := domain.ControlLevel(*m.ControlLevel)
		level = &l
	}
	return domain.BudgetSegment{
		BudgetSegmentID: m.BudgetSegmentID,
		BudgetID:        m.BudgetID,
		SegmentValueID:  m.SegmentValueID,
		ControlLevel:    level,
		IsActive:        m.IsActive,
		Notes:           m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// scanBudgetSegment scans one membership row: budget_segment_id, budget_id,
// segment_value_id, control_level, is_active, notes, audit columns.
func scanBudgetSegment(row pgx.Row) (*domain.BudgetSegment, error) {
	var m models.BudgetSegment
	var controlLevel sql.NullString
	err := row.Scan(
		&m.BudgetSegmentID,
		&m.BudgetID,
		&m.SegmentValueID,
		&controlLevel,
		&m.IsActive,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if controlLevel.Valid {
		m.ControlLevel = &controlLevel.String
	}
	segment := toDomainBudgetSegment(m)
	return &segment, nil
}

// FindSegmentValueByID retrieves a segment value with its type name.
func (r *PgxSegmentRepository) FindSegmentValueByID(ctx context.Context, segmentValueID string) (*domain.SegmentValue, error) {
	query := `
		SELECT sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias
		FROM segment_values sv
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		WHERE sv.segment_value_id = $1;
	`
	var v domain.SegmentValue
	err := r.pool.QueryRow(ctx, query, segmentValueID).Scan(
		&v.SegmentValueID,
		&v.SegmentTypeID,
		&v.SegmentTypeName,
		&v.Code,
		&v.Alias,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find segment value %s: %w", segmentValueID, err)
	}
	return &v, nil
}

// FindSegmentValuesByIDs retrieves multiple segment values by their IDs.
// Missing IDs are simply absent from the returned map.
func (r *PgxSegmentRepository) FindSegmentValuesByIDs(ctx context.Context, segmentValueIDs []string) (map[string]domain.SegmentValue, error) {
	if len(segmentValueIDs) == 0 {
		return map[string]domain.SegmentValue{}, nil
	}

	query := `
		SELECT sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias
		FROM segment_values sv
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		WHERE sv.segment_value_id = ANY($1);
	`
	rows, err := r.pool.Query(ctx, query, segmentValueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment values by IDs: %w", err)
	}
	defer rows.Close()

	valuesMap := make(map[string]domain.SegmentValue)
	for rows.Next() {
		var v domain.SegmentValue
		if err := rows.Scan(&v.SegmentValueID, &v.SegmentTypeID, &v.SegmentTypeName, &v.Code, &v.Alias); err != nil {
			return nil, fmt.Errorf("failed to scan segment value row: %w", err)
		}
		valuesMap[v.SegmentValueID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment value rows: %w", err)
	}
	return valuesMap, nil
}

// ListSegmentValues retrieves the segment master, ordered by type then code.
func (r *PgxSegmentRepository) ListSegmentValues(ctx context.Context, limit int, offset int) ([]domain.SegmentValue, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias
		FROM segment_values sv
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		ORDER BY st.display_order, sv.code
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment values: %w", err)
	}
	defer rows.Close()

	values := []domain.SegmentValue{}
	for rows.Next() {
		var v domain.SegmentValue
		if err := rows.Scan(&v.SegmentValueID, &v.SegmentTypeID, &v.SegmentTypeName, &v.Code, &v.Alias); err != nil {
			return nil, fmt.Errorf("failed to scan segment value row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment value rows: %w", err)
	}
	return values, nil
}

// SaveBudgetSegment inserts a new membership.
func (r *PgxSegmentRepository) SaveBudgetSegment(ctx context.Context, segment domain.BudgetSegment) error {
	query := `
		INSERT INTO budget_segment_value (budget_segment_id, budget_id, segment_value_id, control_level, is_active, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	var controlLevel sql.NullString
	if segment.ControlLevel != nil {
		controlLevel = sql.NullString{String: string(*segment.ControlLevel), Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		segment.BudgetSegmentID,
		segment.BudgetID,
		segment.SegmentValueID,
		controlLevel,
		segment.IsActive,
		segment.Notes,
		segment.CreatedAt,
		segment.CreatedBy,
		segment.LastUpdatedAt,
		segment.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: segment value %s already enrolled in budget %s", apperrors.ErrDuplicate, segment.SegmentValueID, segment.BudgetID)
		}
		return fmt.Errorf("failed to save budget segment %s: %w", segment.BudgetSegmentID, err)
	}
	return nil
}

// FindBudgetSegmentByID retrieves a specific membership.
func (r *PgxSegmentRepository) FindBudgetSegmentByID(ctx context.Context, budgetSegmentID string) (*domain.BudgetSegment, error) {
	query := `
		SELECT budget_segment_id, budget_id, segment_value_id, control_level, is_active, notes, created_at, created_by, last_updated_at, last_updated_by
		FROM budget_segment_value
		WHERE budget_segment_id = $1;
	`
	segment, err := scanBudgetSegment(r.pool.QueryRow(ctx, query, budgetSegmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget segment %s: %w", budgetSegmentID, err)
	}
	return segment, nil
}

// FindBudgetSegmentByCode retrieves the membership of a budget whose segment
// value has the given code.
func (r *PgxSegmentRepository) FindBudgetSegmentByCode(ctx context.Context, budgetID string, segmentCode string) (*domain.BudgetSegment, error) {
	query := `
		SELECT bsv.budget_segment_id, bsv.budget_id, bsv.segment_value_id, bsv.control_level, bsv.is_active, bsv.notes, bsv.created_at, bsv.created_by, bsv.last_updated_at, bsv.last_updated_by
		FROM budget_segment_value bsv
		JOIN segment_values sv ON sv.segment_value_id = bsv.segment_value_id
		WHERE bsv.budget_id = $1 AND sv.code = $2;
	`
	segment, err := scanBudgetSegment(r.pool.QueryRow(ctx, query, budgetID, segmentCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget segment by code %s: %w", segmentCode, err)
	}
	return segment, nil
}

// ListBudgetSegments retrieves all memberships of a budget joined with their
// segment master entries.
func (r *PgxSegmentRepository) ListBudgetSegments(ctx context.Context, budgetID string) ([]domain.BudgetSegmentDetail, error) {
	query := `
		SELECT bsv.budget_segment_id, bsv.budget_id, bsv.segment_value_id, bsv.control_level, bsv.is_active, bsv.notes, bsv.created_at, bsv.created_by, bsv.last_updated_at, bsv.last_updated_by,
		       sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias
		FROM budget_segment_value bsv
		JOIN segment_values sv ON sv.segment_value_id = bsv.segment_value_id
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		WHERE bsv.budget_id = $1
		ORDER BY st.display_order, sv.code;
	`
	rows, err := r.pool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	details := []domain.BudgetSegmentDetail{}
	for rows.Next() {
		var m models.BudgetSegment
		var controlLevel sql.NullString
		var v domain.SegmentValue
		err := rows.Scan(
			&m.BudgetSegmentID,
			&m.BudgetID,
			&m.SegmentValueID,
			&controlLevel,
			&m.IsActive,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&v.SegmentValueID,
			&v.SegmentTypeID,
			&v.SegmentTypeName,
			&v.Code,
			&v.Alias,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget segment row: %w", err)
		}
		if controlLevel.Valid {
			m.ControlLevel = &controlLevel.String
		}
		details = append(details, domain.BudgetSegmentDetail{
			BudgetSegment: toDomainBudgetSegment(m),
			SegmentValue:  v,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget segment rows: %w", err)
	}
	return details, nil
}

// FindApplicableSegments retrieves the active, funded memberships of a budget
// for the given segment values, joined with their ledger rows. The inner join
// on budget_amount drops unfunded memberships.
func (r *PgxSegmentRepository) FindApplicableSegments(ctx context.Context, budgetID string, segmentValueIDs []string) ([]domain.CheckTarget, error) {
	if len(segmentValueIDs) == 0 {
		return []domain.CheckTarget{}, nil
	}

	query := `
		SELECT bsv.budget_segment_id, bsv.budget_id, bsv.segment_value_id, bsv.control_level, bsv.is_active, bsv.notes, bsv.created_at, bsv.created_by, bsv.last_updated_at, bsv.last_updated_by,
		       sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias,
		       ba.budget_amount_id, ba.budget_id, ba.budget_segment_id, ba.original_budget, ba.adjustment_amount, ba.committed_amount, ba.encumbered_amount, ba.actual_amount
		FROM budget_segment_value bsv
		JOIN segment_values sv ON sv.segment_value_id = bsv.segment_value_id
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		JOIN budget_amount ba ON ba.budget_segment_id = bsv.budget_segment_id
		WHERE bsv.budget_id = $1 AND bsv.segment_value_id = ANY($2) AND bsv.is_active = TRUE;
	`
	rows, err := r.pool.Query(ctx, query, budgetID, segmentValueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query applicable segments for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	targets := []domain.CheckTarget{}
	for rows.Next() {
		var m models.BudgetSegment
		var controlLevel sql.NullString
		var v domain.SegmentValue
		var a domain.BudgetAmount
		err := rows.Scan(
			&m.BudgetSegmentID,
			&m.BudgetID,
			&m.SegmentValueID,
			&controlLevel,
			&m.IsActive,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&v.SegmentValueID,
			&v.SegmentTypeID,
			&v.SegmentTypeName,
			&v.Code,
			&v.Alias,
			&a.BudgetAmountID,
			&a.BudgetID,
			&a.BudgetSegmentID,
			&a.OriginalBudget,
			&a.AdjustmentAmount,
			&a.CommittedAmount,
			&a.EncumberedAmount,
			&a.ActualAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan applicable segment row: %w", err)
		}
		if controlLevel.Valid {
			m.ControlLevel = &controlLevel.String
		}
		targets = append(targets, domain.CheckTarget{
			Segment:      toDomainBudgetSegment(m),
			SegmentValue: v,
			Amount:       a,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applicable segment rows: %w", err)
	}
	return targets, nil
}

// UpdateBudgetSegment updates a membership's override, flag and notes.
func (r *PgxSegmentRepository) UpdateBudgetSegment(ctx context.Context, segment domain.BudgetSegment) error {
	query := `
		UPDATE budget_segment_value
		SET control_level = $2, is_active = $3, notes = $4, last_updated_at = $5, last_updated_by = $6
		WHERE budget_segment_id = $1;
	`
	var controlLevel sql.NullString
	if segment.ControlLevel != nil {
		controlLevel = sql.NullString{String: string(*segment.ControlLevel), Valid: true}
	}

	cmdTag, err := r.pool.Exec(ctx, query,
		segment.BudgetSegmentID,
		controlLevel,
		segment.IsActive,
		segment.Notes,
		segment.LastUpdatedAt,
		segment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update budget segment %s: %w", segment.BudgetSegmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBudgetSegment removes a membership.
func (r *PgxSegmentRepository) DeleteBudgetSegment(ctx context.Context, budgetSegmentID string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM budget_segment_value WHERE budget_segment_id = $1;`, budgetSegmentID)
	if err != nil {
		return fmt.Errorf("failed to delete budget segment %s: %w", budgetSegmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
