package paymentmethod

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/db"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// PaymentMethod is a way of paying. Only credit cards carry a cashback rate.
type PaymentMethod struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Type               money.PaymentType   `json:"type"`
	Rate               decimal.NullDecimal `json:"-"`
	CashbackPercentage *string             `json:"cashbackPercentage"`
	IsDefault          bool                `json:"isDefault"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// Method returns the calculator view of the payment method.
func (p *PaymentMethod) Method() money.Method {
	return money.Method{Type: p.Type, Rate: p.Rate}
}

func (p *PaymentMethod) fill() {
	p.CashbackPercentage = nil
	if p.Rate.Valid {
		s := p.Rate.Decimal.StringFixed(2)
		p.CashbackPercentage = &s
	}
}

// NewMethod holds the values for an insert.
type NewMethod struct {
	Name      string
	Type      money.PaymentType
	Rate      decimal.NullDecimal
	IsDefault bool
}

// UpdateFields is a partial update. A nil field is left unchanged.
type UpdateFields struct {
	Name      *string
	IsDefault *bool
	Rate      *decimal.Decimal
}

// PaymentMethodRepository defines payment method persistence.
type PaymentMethodRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*PaymentMethod, error)
	Create(ctx context.Context, userID uuid.UUID, m NewMethod) (*PaymentMethod, error)
	Update(ctx context.Context, userID, id uuid.UUID, fields UpdateFields) (*PaymentMethod, error)
	CountExpenses(ctx context.Context, userID, id uuid.UUID) (int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Repository is the Postgres implementation of PaymentMethodRepository.
type Repository struct {
	db db.DBTX
}

var _ PaymentMethodRepository = (*Repository)(nil)

// NewRepository creates a payment method repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

const columns = `id, name, type, cashback_percentage, is_default, created_at, updated_at`

func scan(row pgx.Row) (*PaymentMethod, error) {
	var p PaymentMethod
	var typ string
	if err := row.Scan(&p.ID, &p.Name, &typ, &p.Rate, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = money.PaymentType(typ)
	p.fill()
	return &p, nil
}

// List returns the user's methods, default first, then by name.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	query := `SELECT ` + columns + `
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY is_default DESC, name ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	methods := make([]PaymentMethod, 0)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, *p)
	}
	return methods, rows.Err()
}

// Get returns one method owned by the user.
func (r *Repository) Get(ctx context.Context, userID, id uuid.UUID) (*PaymentMethod, error) {
	query := `SELECT ` + columns + ` FROM payment_methods WHERE id = $1 AND user_id = $2`

	p, err := scan(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return p, nil
}

// Create inserts a method. A new default clears the flag on the others in
// the same transaction.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, m NewMethod) (*PaymentMethod, error) {
	var created *PaymentMethod
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if m.IsDefault {
			if err := clearDefault(ctx, tx, userID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO payment_methods (user_id, name, type, cashback_percentage, is_default)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + columns

		p, err := scan(tx.QueryRow(ctx, query, userID, m.Name, string(m.Type), m.Rate, m.IsDefault))
		if err != nil {
			return fmt.Errorf("failed to create payment method: %w", common.FromPgError(err, "payment method with this name"))
		}
		created = p
		return nil
	})
	return created, err
}

// Update applies the provided fields.
func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, fields UpdateFields) (*PaymentMethod, error) {
	var updated *PaymentMethod
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if fields.IsDefault != nil && *fields.IsDefault {
			if err := clearDefault(ctx, tx, userID); err != nil {
				return err
			}
		}

		query := `
			UPDATE payment_methods SET
				name = COALESCE($3, name),
				is_default = COALESCE($4, is_default),
				cashback_percentage = COALESCE($5, cashback_percentage),
				updated_at = now()
			WHERE id = $1 AND user_id = $2
			RETURNING ` + columns

		var rate decimal.NullDecimal
		if fields.Rate != nil {
			rate = decimal.NewNullDecimal(*fields.Rate)
		}

		p, err := scan(tx.QueryRow(ctx, query, id, userID, fields.Name, fields.IsDefault, rate))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return sql.ErrNoRows
			}
			return fmt.Errorf("failed to update payment method: %w", common.FromPgError(err, "payment method with this name"))
		}
		updated = p
		return nil
	})
	return updated, err
}

func clearDefault(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE payment_methods SET is_default = false, updated_at = now()
		WHERE user_id = $1 AND is_default
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear default payment method: %w", err)
	}
	return nil
}

// CountExpenses returns how many expenses reference the method.
func (r *Repository) CountExpenses(ctx context.Context, userID, id uuid.UUID) (int, error) {
	query := `SELECT COUNT(*)::int FROM expenses WHERE payment_method_id = $1 AND user_id = $2`

	var n int
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count payment method expenses: %w", err)
	}
	return n, nil
}

// Delete removes the method.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete payment method: %w", common.FromPgError(err, "payment method"))
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}
