package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/db"
)

// Category groups expenses and optionally carries a monthly budget.
type Category struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	MonthlyBudget *int64    `json:"monthlyBudget"`
	IsDefault     bool      `json:"isDefault"`
	ExpenseCount  int       `json:"expenseCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UpdateFields is a partial update. Budget.Set with a nil Value clears it.
type UpdateFields struct {
	Name   *string
	Budget common.Nullable[int64]
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Category, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	Create(ctx context.Context, userID uuid.UUID, name string, budget *int64) (*Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, fields UpdateFields) (*Category, error)
	CountExpenses(ctx context.Context, userID, id uuid.UUID) (int, error)
	Delete(ctx context.Context, userID, id uuid.UUID, reassignTo *uuid.UUID) (int64, error)
}

// Repository is the Postgres implementation of CategoryRepository.
type Repository struct {
	db db.DBTX
}

var _ CategoryRepository = (*Repository)(nil)

// NewRepository creates a category repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// List returns the user's categories with their expense counts, by name.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	query := `
		SELECT c.id, c.name, c.monthly_budget, c.is_default, c.created_at, c.updated_at,
			COUNT(e.id)::int AS expense_count
		FROM categories c
		LEFT JOIN expenses e ON e.category_id = c.id AND e.user_id = c.user_id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.name ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.MonthlyBudget, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt, &c.ExpenseCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Get returns one category owned by the user.
func (r *Repository) Get(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	query := `
		SELECT id, name, monthly_budget, is_default, created_at, updated_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`

	var c Category
	err := r.db.QueryRow(ctx, query, id, userID).
		Scan(&c.ID, &c.Name, &c.MonthlyBudget, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// Create inserts a category.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, name string, budget *int64) (*Category, error) {
	query := `
		INSERT INTO categories (user_id, name, monthly_budget)
		VALUES ($1, $2, $3)
		RETURNING id, name, monthly_budget, is_default, created_at, updated_at
	`

	var c Category
	err := r.db.QueryRow(ctx, query, userID, name, budget).
		Scan(&c.ID, &c.Name, &c.MonthlyBudget, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", common.FromPgError(err, "category with this name"))
	}
	return &c, nil
}

// Update applies the provided fields.
func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, fields UpdateFields) (*Category, error) {
	query := `
		UPDATE categories SET
			name = COALESCE($3, name),
			monthly_budget = CASE WHEN $4::boolean THEN $5::bigint ELSE monthly_budget END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, name, monthly_budget, is_default, created_at, updated_at
	`

	var c Category
	err := r.db.QueryRow(ctx, query, id, userID, fields.Name, fields.Budget.Set, fields.Budget.Value).
		Scan(&c.ID, &c.Name, &c.MonthlyBudget, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update category: %w", common.FromPgError(err, "category with this name"))
	}
	return &c, nil
}

// CountExpenses returns how many expenses reference the category.
func (r *Repository) CountExpenses(ctx context.Context, userID, id uuid.UUID) (int, error) {
	query := `SELECT COUNT(*)::int FROM expenses WHERE category_id = $1 AND user_id = $2`

	var n int
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count category expenses: %w", err)
	}
	return n, nil
}

// Delete removes the category. When reassignTo is set, its expenses are moved
// first within the same transaction. It returns the number of moved expenses.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID, reassignTo *uuid.UUID) (int64, error) {
	var moved int64
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if reassignTo != nil {
			tag, err := tx.Exec(ctx, `
				UPDATE expenses SET category_id = $1, updated_at = now()
				WHERE category_id = $2 AND user_id = $3
			`, *reassignTo, id, userID)
			if err != nil {
				return fmt.Errorf("failed to reassign expenses: %w", err)
			}
			moved = tag.RowsAffected()
		}

		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", common.FromPgError(err, "category"))
		}
		if tag.RowsAffected() == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	return moved, err
}
