package imports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/db"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// Category is the lookup view of a category.
type Category struct {
	ID   uuid.UUID
	Name string
}

// PaymentMethod is the lookup view of a payment method.
type PaymentMethod struct {
	ID   uuid.UUID
	Name string
	Type money.PaymentType
	Rate decimal.NullDecimal
}

// Expense is a validated row ready for insertion.
type Expense struct {
	Date            time.Time
	Merchant        string
	CategoryID      uuid.UUID
	PaymentMethodID uuid.UUID
	Split           money.Split
}

// ImportRepository loads name lookups and bulk-inserts expenses.
type ImportRepository interface {
	Categories(ctx context.Context, userID uuid.UUID) ([]Category, error)
	PaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)
	InsertExpenses(ctx context.Context, userID uuid.UUID, expenses []Expense) (int64, error)
}

var _ ImportRepository = (*Repository)(nil)

type Repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Categories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) PaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, type, cashback_percentage
		FROM payment_methods
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}
	defer rows.Close()

	var out []PaymentMethod
	for rows.Next() {
		var p PaymentMethod
		var typ string
		if err := rows.Scan(&p.ID, &p.Name, &typ, &p.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		p.Type = money.PaymentType(typ)
		out = append(out, p)
	}
	return out, rows.Err()
}

var expenseCopyColumns = []string{
	"user_id", "date", "merchant", "amount",
	"category_id", "payment_method_id", "cashback_amount", "amount_net",
}

// InsertExpenses writes all rows with a single COPY. Either every row lands
// or none does.
func (r *Repository) InsertExpenses(ctx context.Context, userID uuid.UUID, expenses []Expense) (int64, error) {
	if len(expenses) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(expenses))
	for i, e := range expenses {
		rows[i] = []any{
			userID, e.Date, e.Merchant, e.Split.Amount,
			e.CategoryID, e.PaymentMethodID, e.Split.Cashback, e.Split.Net,
		}
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"expenses"}, expenseCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to import expenses: %w", common.FromPgError(err, "expense"))
	}
	return n, nil
}
