package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/procureflow/budget_control_app/internal/apperrors"
	"github.com/procureflow/budget_control_app/internal/core/domain"
	portsrepo "github.com/procureflow/budget_control_app/internal/core/ports/repositories"
	"github.com/procureflow/budget_control_app/internal/models"
)

const budgetColumns = `budget_id, budget_code, budget_name, description, start_date, end_date, currency_code, default_control_level, status, is_active, notes, created_at, created_by, last_updated_at, last_updated_by, activated_by, activated_at`

type PgxBudgetRepository struct {
	pool *pgxpool.Pool
}

// newPgxBudgetRepository creates a new repository for budget definitions.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{pool: pool}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepositoryFacade
var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

// Helper to convert domain.Budget to models.Budget for DB storage
func toModelBudget(d domain.Budget) models.Budget {
	return models.Budget{
		BudgetID:            d.BudgetID,
		BudgetCode:          d.BudgetCode,
		BudgetName:          d.BudgetName,
		Description:         d.Description,
		StartDate:           d.StartDate,
		EndDate:             d.EndDate,
		CurrencyCode:        d.CurrencyCode,
		DefaultControlLevel: string(d.DefaultControlLevel),
		Status:              string(d.Status),
		IsActive:            d.IsActive,
		Notes:               d.Notes,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
		ActivatedBy: d.ActivatedBy,
		ActivatedAt: d.ActivatedAt,
	}
}

// Helper to convert models.Budget from DB to domain.Budget
func toDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:            m.BudgetID,
		BudgetCode:          m.BudgetCode,
		BudgetName:          m.BudgetName,
		Description:         m.Description,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		CurrencyCode:        m.CurrencyCode,
		DefaultControlLevel: domain.ControlLevel(m.DefaultControlLevel),
		Status:              domain.BudgetStatus(m.Status),
		IsActive:            m.IsActive,
		Notes:               m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		ActivatedBy: m.ActivatedBy,
		ActivatedAt: m.ActivatedAt,
	}
}

// scanBudget scans one budget row in budgetColumns order.
func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var m models.Budget
	var activatedBy sql.NullString
	err := row.Scan(
		&m.BudgetID,
		&m.BudgetCode,
		&m.BudgetName,
		&m.Description,
		&m.StartDate,
		&m.EndDate,
		&m.CurrencyCode,
		&m.DefaultControlLevel,
		&m.Status,
		&m.IsActive,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&activatedBy,
		&m.ActivatedAt,
	)
	if err != nil {
		return nil, err
	}
	if activatedBy.Valid {
		m.ActivatedBy = activatedBy.String
	}
	budget := toDomainBudget(m)
	return &budget, nil
}

// SaveBudget inserts a new budget.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := toModelBudget(budget)

	query := `
		INSERT INTO budget_header (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	var activatedBy sql.NullString
	if m.ActivatedBy != "" {
		activatedBy = sql.NullString{String: m.ActivatedBy, Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		m.BudgetID,
		m.BudgetCode,
		m.BudgetName,
		m.Description,
		m.StartDate,
		m.EndDate,
		m.CurrencyCode,
		m.DefaultControlLevel,
		m.Status,
		m.IsActive,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		activatedBy,
		m.ActivatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: budget code %s already exists", apperrors.ErrDuplicate, m.BudgetCode)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}
	return nil
}

// FindBudgetByID retrieves a budget by its ID.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_header WHERE budget_id = $1;`

	budget, err := scanBudget(r.pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %s: %w", budgetID, err)
	}
	return budget, nil
}

// FindBudgetByCode retrieves a budget by its unique budget code.
func (r *PgxBudgetRepository) FindBudgetByCode(ctx context.Context, budgetCode string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_header WHERE budget_code = $1;`

	budget, err := scanBudget(r.pool.QueryRow(ctx, query, budgetCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by code %s: %w", budgetCode, err)
	}
	return budget, nil
}

// ListBudgets retrieves budgets matching the filter, newest first.
func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, filter portsrepo.BudgetListFilter) ([]domain.Budget, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	conditions := []string{}
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ControlLevel != "" {
		args = append(args, string(filter.ControlLevel))
		conditions = append(conditions, fmt.Sprintf("default_control_level = $%d", len(args)))
	}
	if filter.DateWithin != nil {
		args = append(args, *filter.DateWithin)
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d AND end_date >= $%d", len(args), len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(budget_code ILIKE $%d OR budget_name ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + budgetColumns + ` FROM budget_header`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d;", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return budgets, nil
}

// ListActiveBudgetsForDate retrieves all ACTIVE budgets whose period covers
// the given date.
func (r *PgxBudgetRepository) ListActiveBudgetsForDate(ctx context.Context, date time.Time) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budget_header
		WHERE status = 'ACTIVE' AND is_active = TRUE AND start_date <= $1 AND end_date >= $1
		ORDER BY budget_code;
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query active budgets for date: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active budget row: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active budget rows: %w", err)
	}
	return budgets, nil
}

// CountBudgetSegments returns the number of segment memberships on a budget.
func (r *PgxBudgetRepository) CountBudgetSegments(ctx context.Context, budgetID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM budget_segment_value WHERE budget_id = $1;`, budgetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count segments for budget %s: %w", budgetID, err)
	}
	return count, nil
}

// CountBudgetAmounts returns the number of funded ledger rows on a budget.
func (r *PgxBudgetRepository) CountBudgetAmounts(ctx context.Context, budgetID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM budget_amount WHERE budget_id = $1;`, budgetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count amounts for budget %s: %w", budgetID, err)
	}
	return count, nil
}

// UpdateBudget updates an existing budget including its lifecycle fields.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := toModelBudget(budget)

	query := `
		UPDATE budget_header
		SET budget_name = $2, description = $3, start_date = $4, end_date = $5,
		    default_control_level = $6, status = $7, is_active = $8, notes = $9,
		    last_updated_at = $10, last_updated_by = $11, activated_by = $12, activated_at = $13
		WHERE budget_id = $1;
	`
	var activatedBy sql.NullString
	if m.ActivatedBy != "" {
		activatedBy = sql.NullString{String: m.ActivatedBy, Valid: true}
	}

	cmdTag, err := r.pool.Exec(ctx, query,
		m.BudgetID,
		m.BudgetName,
		m.Description,
		m.StartDate,
		m.EndDate,
		m.DefaultControlLevel,
		m.Status,
		m.IsActive,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		activatedBy,
		m.ActivatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update budget %s: %w", m.BudgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBudget destroys a budget. Memberships cascade at the DB level.
func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM budget_header WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
