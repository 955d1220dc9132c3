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

const amountColumns = `budget_amount_id, budget_id, budget_segment_id, original_budget, adjustment_amount, committed_amount, encumbered_amount, actual_amount, notes, created_at, created_by, last_updated_at, last_updated_by, last_committed_at, last_encumbered_at, last_actual_at, last_adjusted_at`

type PgxFundsRepository struct {
	BaseRepository
}

// newPgxFundsRepository creates a new repository for the budget amount ledger.
func newPgxFundsRepository(pool *pgxpool.Pool) portsrepo.FundsRepositoryFacade {
	return &PgxFundsRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxFundsRepository implements portsrepo.FundsRepositoryFacade
var _ portsrepo.FundsRepositoryFacade = (*PgxFundsRepository)(nil)

// Helper to convert models.BudgetAmount from DB to domain.BudgetAmount
func toDomainAmount(m models.BudgetAmount) domain.BudgetAmount {
	return domain.BudgetAmount{
		BudgetAmountID:   m.BudgetAmountID,
		BudgetID:         m.BudgetID,
		BudgetSegmentID:  m.BudgetSegmentID,
		OriginalBudget:   m.OriginalBudget,
		AdjustmentAmount: m.AdjustmentAmount,
		CommittedAmount:  m.CommittedAmount,
		EncumberedAmount: m.EncumberedAmount,
		ActualAmount:     m.ActualAmount,
		Notes:            m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		LastCommittedAt:  m.LastCommittedAt,
		LastEncumberedAt: m.LastEncumberedAt,
		LastActualAt:     m.LastActualAt,
		LastAdjustedAt:   m.LastAdjustedAt,
	}
}

// scanAmount scans one ledger row in amountColumns order.
func scanAmount(row pgx.Row) (*domain.BudgetAmount, error) {
	var m models.BudgetAmount
	err := row.Scan(
		&m.BudgetAmountID,
		&m.BudgetID,
		&m.BudgetSegmentID,
		&m.OriginalBudget,
		&m.AdjustmentAmount,
		&m.CommittedAmount,
		&m.EncumberedAmount,
		&m.ActualAmount,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.LastCommittedAt,
		&m.LastEncumberedAt,
		&m.LastActualAt,
		&m.LastAdjustedAt,
	)
	if err != nil {
		return nil, err
	}
	amount := toDomainAmount(m)
	return &amount, nil
}

// SaveAmount inserts a new ledger row.
func (r *PgxFundsRepository) SaveAmount(ctx context.Context, amount domain.BudgetAmount) error {
	query := `
		INSERT INTO budget_amount (` + amountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		amount.BudgetAmountID,
		amount.BudgetID,
		amount.BudgetSegmentID,
		amount.OriginalBudget,
		amount.AdjustmentAmount,
		amount.CommittedAmount,
		amount.EncumberedAmount,
		amount.ActualAmount,
		amount.Notes,
		amount.CreatedAt,
		amount.CreatedBy,
		amount.LastUpdatedAt,
		amount.LastUpdatedBy,
		amount.LastCommittedAt,
		amount.LastEncumberedAt,
		amount.LastActualAt,
		amount.LastAdjustedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: segment %s already has a budget amount", apperrors.ErrDuplicate, amount.BudgetSegmentID)
		}
		return fmt.Errorf("failed to save budget amount %s: %w", amount.BudgetAmountID, err)
	}
	return nil
}

// UpsertAmount inserts a ledger row, or replaces the original budget,
// adjustment and notes of the existing row for the same membership. The
// consumption counters of an existing row are preserved.
func (r *PgxFundsRepository) UpsertAmount(ctx context.Context, amount domain.BudgetAmount) (bool, error) {
	query := `
		INSERT INTO budget_amount (` + amountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (budget_segment_id) DO UPDATE
		SET original_budget = EXCLUDED.original_budget,
		    adjustment_amount = EXCLUDED.adjustment_amount,
		    notes = EXCLUDED.notes,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		RETURNING (xmax = 0);
	`
	var inserted bool
	err := r.Pool.QueryRow(ctx, query,
		amount.BudgetAmountID,
		amount.BudgetID,
		amount.BudgetSegmentID,
		amount.OriginalBudget,
		amount.AdjustmentAmount,
		amount.CommittedAmount,
		amount.EncumberedAmount,
		amount.ActualAmount,
		amount.Notes,
		amount.CreatedAt,
		amount.CreatedBy,
		amount.LastUpdatedAt,
		amount.LastUpdatedBy,
		amount.LastCommittedAt,
		amount.LastEncumberedAt,
		amount.LastActualAt,
		amount.LastAdjustedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert budget amount for segment %s: %w", amount.BudgetSegmentID, err)
	}
	return inserted, nil
}

// FindAmountByID retrieves a ledger row by its ID.
func (r *PgxFundsRepository) FindAmountByID(ctx context.Context, budgetAmountID string) (*domain.BudgetAmount, error) {
	query := `SELECT ` + amountColumns + ` FROM budget_amount WHERE budget_amount_id = $1;`

	amount, err := scanAmount(r.Pool.QueryRow(ctx, query, budgetAmountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget amount %s: %w", budgetAmountID, err)
	}
	return amount, nil
}

// FindAmountByBudgetSegment retrieves the ledger row funding a membership.
func (r *PgxFundsRepository) FindAmountByBudgetSegment(ctx context.Context, budgetSegmentID string) (*domain.BudgetAmount, error) {
	query := `SELECT ` + amountColumns + ` FROM budget_amount WHERE budget_segment_id = $1;`

	amount, err := scanAmount(r.Pool.QueryRow(ctx, query, budgetSegmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget amount for segment %s: %w", budgetSegmentID, err)
	}
	return amount, nil
}

// FindAmountByIDForUpdate selects a ledger row and locks it for update within
// the given transaction.
func (r *PgxFundsRepository) FindAmountByIDForUpdate(ctx context.Context, tx pgx.Tx, budgetAmountID string) (*domain.BudgetAmount, error) {
	query := `SELECT ` + amountColumns + ` FROM budget_amount WHERE budget_amount_id = $1 FOR UPDATE;`

	amount, err := scanAmount(tx.QueryRow(ctx, query, budgetAmountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock budget amount %s: %w", budgetAmountID, err)
	}
	return amount, nil
}

// UpdateAmountInTx writes back a mutated ledger row within the given
// transaction. The row must have been locked by FindAmountByIDForUpdate.
func (r *PgxFundsRepository) UpdateAmountInTx(ctx context.Context, tx pgx.Tx, amount domain.BudgetAmount) error {
	query := `
		UPDATE budget_amount
		SET original_budget = $2, adjustment_amount = $3, committed_amount = $4, encumbered_amount = $5, actual_amount = $6,
		    notes = $7, last_updated_at = $8, last_updated_by = $9,
		    last_committed_at = $10, last_encumbered_at = $11, last_actual_at = $12, last_adjusted_at = $13
		WHERE budget_amount_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		amount.BudgetAmountID,
		amount.OriginalBudget,
		amount.AdjustmentAmount,
		amount.CommittedAmount,
		amount.EncumberedAmount,
		amount.ActualAmount,
		amount.Notes,
		amount.LastUpdatedAt,
		amount.LastUpdatedBy,
		amount.LastCommittedAt,
		amount.LastEncumberedAt,
		amount.LastActualAt,
		amount.LastAdjustedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget amount %s: %w", amount.BudgetAmountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAmount removes a ledger row.
func (r *PgxFundsRepository) DeleteAmount(ctx context.Context, budgetAmountID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM budget_amount WHERE budget_amount_id = $1;`, budgetAmountID)
	if err != nil {
		return fmt.Errorf("failed to delete budget amount %s: %w", budgetAmountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SummarizeBudget aggregates the ledger counters across a budget.
func (r *PgxFundsRepository) SummarizeBudget(ctx context.Context, budgetID string) (*domain.BudgetTotals, error) {
	query := `
		SELECT COALESCE(SUM(original_budget), 0),
		       COALESCE(SUM(adjustment_amount), 0),
		       COALESCE(SUM(committed_amount), 0),
		       COALESCE(SUM(encumbered_amount), 0),
		       COALESCE(SUM(actual_amount), 0)
		FROM budget_amount
		WHERE budget_id = $1;
	`
	var totals domain.BudgetTotals
	err := r.Pool.QueryRow(ctx, query, budgetID).Scan(
		&totals.TotalOriginal,
		&totals.TotalAdjustments,
		&totals.TotalCommitted,
		&totals.TotalEncumbered,
		&totals.TotalActual,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize budget %s: %w", budgetID, err)
	}
	return &totals, nil
}

// ListAmountDetails retrieves all ledger rows of a budget joined with their
// membership and segment master entry. The budget header is fetched once and
// shared across the details.
func (r *PgxFundsRepository) ListAmountDetails(ctx context.Context, budgetID string) ([]domain.AmountDetail, error) {
	budgetQuery := `SELECT ` + budgetColumns + ` FROM budget_header WHERE budget_id = $1;`
	budget, err := scanBudget(r.Pool.QueryRow(ctx, budgetQuery, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}

	query := `
		SELECT ba.budget_amount_id, ba.budget_id, ba.budget_segment_id, ba.original_budget, ba.adjustment_amount, ba.committed_amount, ba.encumbered_amount, ba.actual_amount, ba.notes, ba.created_at, ba.created_by, ba.last_updated_at, ba.last_updated_by, ba.last_committed_at, ba.last_encumbered_at, ba.last_actual_at, ba.last_adjusted_at,
		       bsv.budget_segment_id, bsv.budget_id, bsv.segment_value_id, bsv.control_level, bsv.is_active, bsv.notes, bsv.created_at, bsv.created_by, bsv.last_updated_at, bsv.last_updated_by,
		       sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias
		FROM budget_amount ba
		JOIN budget_segment_value bsv ON bsv.budget_segment_id = ba.budget_segment_id
		JOIN segment_values sv ON sv.segment_value_id = bsv.segment_value_id
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		WHERE ba.budget_id = $1
		ORDER BY st.display_order, sv.code;
	`
	rows, err := r.Pool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	details := []domain.AmountDetail{}
	for rows.Next() {
		detail, err := scanAmountDetailRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan amount detail row: %w", err)
		}
		detail.Budget = *budget
		details = append(details, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amount detail rows: %w", err)
	}
	return details, nil
}

// ListActiveAmountDetails retrieves the ledger rows of every ACTIVE budget,
// each joined with its membership, segment master entry and budget header.
func (r *PgxFundsRepository) ListActiveAmountDetails(ctx context.Context) ([]domain.AmountDetail, error) {
	query := `
		SELECT ba.budget_amount_id, ba.budget_id, ba.budget_segment_id, ba.original_budget, ba.adjustment_amount, ba.committed_amount, ba.encumbered_amount, ba.actual_amount, ba.notes, ba.created_at, ba.created_by, ba.last_updated_at, ba.last_updated_by, ba.last_committed_at, ba.last_encumbered_at, ba.last_actual_at, ba.last_adjusted_at,
		       bsv.budget_segment_id, bsv.budget_id, bsv.segment_value_id, bsv.control_level, bsv.is_active, bsv.notes, bsv.created_at, bsv.created_by, bsv.last_updated_at, bsv.last_updated_by,
		       sv.segment_value_id, sv.segment_type_id, st.name, sv.code, sv.alias,
		       b.budget_id, b.budget_code, b.budget_name, b.description, b.start_date, b.end_date, b.currency_code, b.default_control_level, b.status, b.is_active, b.notes, b.created_at, b.created_by, b.last_updated_at, b.last_updated_by, b.activated_by, b.activated_at
		FROM budget_amount ba
		JOIN budget_header b ON b.budget_id = ba.budget_id
		JOIN budget_segment_value bsv ON bsv.budget_segment_id = ba.budget_segment_id
		JOIN segment_values sv ON sv.segment_value_id = bsv.segment_value_id
		JOIN segment_types st ON st.segment_type_id = sv.segment_type_id
		WHERE b.status = 'ACTIVE' AND b.is_active = TRUE
		ORDER BY b.budget_code, st.display_order, sv.code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active budget amounts: %w", err)
	}
	defer rows.Close()

	details := []domain.AmountDetail{}
	for rows.Next() {
		var ma models.BudgetAmount
		var ms models.BudgetSegment
		var controlLevel sql.NullString
		var v domain.SegmentValue
		var mb models.Budget
		var activatedBy sql.NullString
		err := rows.Scan(
			&ma.BudgetAmountID, &ma.BudgetID, &ma.BudgetSegmentID, &ma.OriginalBudget, &ma.AdjustmentAmount, &ma.CommittedAmount, &ma.EncumberedAmount, &ma.ActualAmount, &ma.Notes, &ma.CreatedAt, &ma.CreatedBy, &ma.LastUpdatedAt, &ma.LastUpdatedBy, &ma.LastCommittedAt, &ma.LastEncumberedAt, &ma.LastActualAt, &ma.LastAdjustedAt,
			&ms.BudgetSegmentID, &ms.BudgetID, &ms.SegmentValueID, &controlLevel, &ms.IsActive, &ms.Notes, &ms.CreatedAt, &ms.CreatedBy, &ms.LastUpdatedAt, &ms.LastUpdatedBy,
			&v.SegmentValueID, &v.SegmentTypeID, &v.SegmentTypeName, &v.Code, &v.Alias,
			&mb.BudgetID, &mb.BudgetCode, &mb.BudgetName, &mb.Description, &mb.StartDate, &mb.EndDate, &mb.CurrencyCode, &mb.DefaultControlLevel, &mb.Status, &mb.IsActive, &mb.Notes, &mb.CreatedAt, &mb.CreatedBy, &mb.LastUpdatedAt, &mb.LastUpdatedBy, &activatedBy, &mb.ActivatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active amount detail row: %w", err)
		}
		if controlLevel.Valid {
			ms.ControlLevel = &controlLevel.String
		}
		if activatedBy.Valid {
			mb.ActivatedBy = activatedBy.String
		}
		details = append(details, domain.AmountDetail{
			Budget:       toDomainBudget(mb),
			Segment:      toDomainBudgetSegment(ms),
			SegmentValue: v,
			Amount:       toDomainAmount(ma),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active amount detail rows: %w", err)
	}
	return details, nil
}

// scanAmountDetailRow scans an amount detail row without budget columns.
func scanAmountDetailRow(rows pgx.Rows) (*domain.AmountDetail, error) {
	var ma models.BudgetAmount
	var ms models.BudgetSegment
	var controlLevel sql.NullString
	var v domain.SegmentValue
	err := rows.Scan(
		&ma.BudgetAmountID, &ma.BudgetID, &ma.BudgetSegmentID, &ma.OriginalBudget, &ma.AdjustmentAmount, &ma.CommittedAmount, &ma.EncumberedAmount, &ma.ActualAmount, &ma.Notes, &ma.CreatedAt, &ma.CreatedBy, &ma.LastUpdatedAt, &ma.LastUpdatedBy, &ma.LastCommittedAt, &ma.LastEncumberedAt, &ma.LastActualAt, &ma.LastAdjustedAt,
		&ms.BudgetSegmentID, &ms.BudgetID, &ms.SegmentValueID, &controlLevel, &ms.IsActive, &ms.Notes, &ms.CreatedAt, &ms.CreatedBy, &ms.LastUpdatedAt, &ms.LastUpdatedBy,
		&v.SegmentValueID, &v.SegmentTypeID, &v.SegmentTypeName, &v.Code, &v.Alias,
	)
	if err != nil {
		return nil, err
	}
	if controlLevel.Valid {
		ms.ControlLevel = &controlLevel.String
	}
	return &domain.AmountDetail{
		Segment:      toDomainBudgetSegment(ms),
		SegmentValue: v,
		Amount:       toDomainAmount(ma),
	}, nil
}
