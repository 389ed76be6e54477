package income

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/db"
)

// Income is the household income recorded for one month.
type Income struct {
	ID        uuid.UUID    `json:"id"`
	Month     billing.Date `json:"month"`
	Amount    int64        `json:"amount"`
	Source    *string      `json:"source"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IncomeRepository defines income persistence.
type IncomeRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Income, error)
	Upsert(ctx context.Context, userID uuid.UUID, month time.Time, amount int64, source *string) (*Income, bool, error)
	Update(ctx context.Context, userID, id uuid.UUID, amount *int64, source common.Nullable[string]) (*Income, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Repository is the Postgres implementation of IncomeRepository.
type Repository struct {
	db db.DBTX
}

var _ IncomeRepository = (*Repository)(nil)

// NewRepository creates an income repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

func scanIncome(row pgx.Row, extra ...any) (*Income, error) {
	var (
		in    Income
		month time.Time
	)
	dest := append([]any{&in.ID, &month, &in.Amount, &in.Source, &in.CreatedAt, &in.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	in.Month = billing.NewDate(month)
	return &in, nil
}

// List returns all income rows, newest month first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Income, error) {
	query := `
		SELECT id, month, amount, source, created_at, updated_at
		FROM income
		WHERE user_id = $1
		ORDER BY month DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income: %w", err)
	}
	defer rows.Close()

	out := make([]Income, 0)
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// Upsert writes the month's income in a single statement. An omitted source
// keeps the stored one. The bool reports whether a new row was inserted.
func (r *Repository) Upsert(ctx context.Context, userID uuid.UUID, month time.Time, amount int64, source *string) (*Income, bool, error) {
	query := `
		INSERT INTO income (user_id, month, amount, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, month) DO UPDATE SET
			amount = EXCLUDED.amount,
			source = COALESCE(EXCLUDED.source, income.source),
			updated_at = now()
		RETURNING id, month, amount, source, created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	in, err := scanIncome(r.db.QueryRow(ctx, query, userID, month, amount, source), &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert income: %w", common.FromPgError(err, "income"))
	}
	return in, inserted, nil
}

// Update changes amount and/or source of an income row.
func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, amount *int64, source common.Nullable[string]) (*Income, error) {
	query := `
		UPDATE income SET
			amount = COALESCE($3, amount),
			source = CASE WHEN $4::boolean THEN $5::varchar ELSE source END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, month, amount, source, created_at, updated_at
	`

	in, err := scanIncome(r.db.QueryRow(ctx, query, id, userID, amount, source.Set, source.Value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update income: %w", common.FromPgError(err, "income"))
	}
	return in, nil
}

// Delete removes an income row.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM income WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}
