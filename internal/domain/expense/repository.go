package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/db"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

var (
	// ErrUnknownCategory is returned when a referenced category does not
	// exist or belongs to another user.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownPaymentMethod is the payment method counterpart of ErrUnknownCategory.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// Expense is a stored expense. Cashback and net are always server computed.
type Expense struct {
	ID              uuid.UUID         `json:"id"`
	Date            billing.Date      `json:"date"`
	Merchant        string            `json:"merchant"`
	Amount          int64             `json:"amount"`
	CategoryID      uuid.UUID         `json:"categoryId"`
	PaymentMethodID uuid.UUID         `json:"paymentMethodId"`
	CashbackAmount  int64             `json:"cashbackAmount"`
	AmountNet       int64             `json:"amountNet"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	Category        *CategoryRef      `json:"category,omitempty"`
	PaymentMethod   *PaymentMethodRef `json:"paymentMethod,omitempty"`
}

// Split returns the stored money split of the expense.
func (e *Expense) Split() money.Split {
	return money.Split{Amount: e.Amount, Cashback: e.CashbackAmount, Net: e.AmountNet}
}

// CategoryRef is the category summary embedded in expense responses.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PaymentMethodRef is the payment method summary embedded in expense responses.
type PaymentMethodRef struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Type               money.PaymentType   `json:"type"`
	Rate               decimal.NullDecimal `json:"-"`
	CashbackPercentage *string             `json:"cashbackPercentage"`
}

// Method returns the calculator view of the payment method.
func (p *PaymentMethodRef) Method() money.Method {
	return money.Method{Type: p.Type, Rate: p.Rate}
}

func (p *PaymentMethodRef) fill() {
	p.CashbackPercentage = nil
	if p.Rate.Valid {
		s := p.Rate.Decimal.StringFixed(2)
		p.CashbackPercentage = &s
	}
}

// SplitFunc computes the stored split for an amount paid with a method.
type SplitFunc func(amount int64, method money.Method) (money.Split, error)

// NewExpense holds the client supplied values of an insert.
type NewExpense struct {
	Date            time.Time
	Merchant        string
	Amount          int64
	CategoryID      uuid.UUID
	PaymentMethodID uuid.UUID
}

// Patch is a partial update. A nil field keeps the stored value.
type Patch struct {
	Date            *time.Time
	Merchant        *string
	Amount          *int64
	CategoryID      *uuid.UUID
	PaymentMethodID *uuid.UUID
}

// ListFilter selects and orders a page of expenses.
type ListFilter struct {
	CategoryID      *uuid.UUID
	PaymentMethodID *uuid.UUID
	StartDate       *time.Time
	EndDate         *time.Time
	SortBy          string
	SortOrder       string
	Limit           int
	Offset          int
}

// ExpenseRepository defines expense persistence.
type ExpenseRepository interface {
	List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]Expense, int, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Expense, error)
	Create(ctx context.Context, userID uuid.UUID, in NewExpense, split SplitFunc) (*Expense, error)
	Update(ctx context.Context, userID, id uuid.UUID, p Patch, split SplitFunc) (*Expense, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// Repository is the Postgres implementation of ExpenseRepository.
type Repository struct {
	db db.DBTX
}

var _ ExpenseRepository = (*Repository)(nil)

// NewRepository creates an expense repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `id, date, merchant, amount, category_id, payment_method_id,
	cashback_amount, amount_net, created_at, updated_at`

func scanExpense(row pgx.Row, extra ...any) (*Expense, error) {
	var (
		e    Expense
		date time.Time
	)
	dest := append([]any{
		&e.ID, &date, &e.Merchant, &e.Amount, &e.CategoryID, &e.PaymentMethodID,
		&e.CashbackAmount, &e.AmountNet, &e.CreatedAt, &e.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.Date = billing.NewDate(date)
	return &e, nil
}

func lookupCategory(ctx context.Context, q db.DBTX, userID, id uuid.UUID) (*CategoryRef, error) {
	ref := CategoryRef{ID: id}
	err := q.QueryRow(ctx, `SELECT name FROM categories WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &ref, nil
}

func lookupPaymentMethod(ctx context.Context, q db.DBTX, userID, id uuid.UUID) (*PaymentMethodRef, error) {
	ref := PaymentMethodRef{ID: id}
	err := q.QueryRow(ctx,
		`SELECT name, type, cashback_percentage FROM payment_methods WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&ref.Name, &ref.Type, &ref.Rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownPaymentMethod
		}
		return nil, fmt.Errorf("failed to load payment method: %w", err)
	}
	ref.fill()
	return &ref, nil
}

var sortColumns = map[string]string{
	"date":     "e.date",
	"merchant": "e.merchant",
	"category": "c.name",
	"payment":  "pm.name",
	"amount":   "e.amount",
}

func orderBy(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = sortColumns["date"]
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	if sortBy == "category" || sortBy == "payment" {
		dir += " NULLS LAST"
	}
	return fmt.Sprintf("%s %s, e.created_at DESC", col, dir)
}

func whereClause(userID uuid.UUID, f ListFilter) (string, []any) {
	conds := []string{"e.user_id = $1"}
	args := []any{userID}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.CategoryID != nil {
		add("e.category_id = $%d", *f.CategoryID)
	}
	if f.PaymentMethodID != nil {
		add("e.payment_method_id = $%d", *f.PaymentMethodID)
	}
	if f.StartDate != nil {
		add("e.date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("e.date <= $%d", *f.EndDate)
	}
	return strings.Join(conds, " AND "), args
}

// List returns one page of expenses joined with their category and payment
// method, plus the total number of matching rows.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]Expense, int, error) {
	where, args := whereClause(userID, f)

	var total int
	countQuery := `SELECT count(*)::int FROM expenses e WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.date, e.merchant, e.amount, e.category_id, e.payment_method_id,
			e.cashback_amount, e.amount_net, e.created_at, e.updated_at,
			c.name, pm.name, pm.type, pm.cashback_percentage
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		LEFT JOIN payment_methods pm ON pm.id = e.payment_method_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy(f.SortBy, f.SortOrder), len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]Expense, 0)
	for rows.Next() {
		e, err := scanJoined(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	return out, total, nil
}

func scanJoined(row pgx.Row) (*Expense, error) {
	var (
		catName, pmName *string
		pmType          *money.PaymentType
		rate            decimal.NullDecimal
	)
	e, err := scanExpense(row, &catName, &pmName, &pmType, &rate)
	if err != nil {
		return nil, err
	}
	if catName != nil {
		e.Category = &CategoryRef{ID: e.CategoryID, Name: *catName}
	}
	if pmName != nil && pmType != nil {
		e.PaymentMethod = &PaymentMethodRef{ID: e.PaymentMethodID, Name: *pmName, Type: *pmType, Rate: rate}
		e.PaymentMethod.fill()
	}
	return e, nil
}

// Get returns one expense with its category and payment method.
func (r *Repository) Get(ctx context.Context, userID, id uuid.UUID) (*Expense, error) {
	query := `
		SELECT e.id, e.date, e.merchant, e.amount, e.category_id, e.payment_method_id,
			e.cashback_amount, e.amount_net, e.created_at, e.updated_at,
			c.name, pm.name, pm.type, pm.cashback_percentage
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		LEFT JOIN payment_methods pm ON pm.id = e.payment_method_id
		WHERE e.id = $1 AND e.user_id = $2
	`

	e, err := scanJoined(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// Create verifies the referenced category and payment method belong to the
// user, computes the split and inserts the row.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, in NewExpense, split SplitFunc) (*Expense, error) {
	cat, err := lookupCategory(ctx, r.db, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	pm, err := lookupPaymentMethod(ctx, r.db, userID, in.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	s, err := split(in.Amount, pm.Method())
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO expenses (user_id, date, merchant, amount, category_id, payment_method_id,
			cashback_amount, amount_net)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + expenseColumns

	e, err := scanExpense(r.db.QueryRow(ctx, query,
		userID, in.Date, in.Merchant, s.Amount, in.CategoryID, in.PaymentMethodID, s.Cashback, s.Net,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", common.FromPgError(err, "expense"))
	}
	e.Category, e.PaymentMethod = cat, pm
	return e, nil
}

// Update applies p to the expense inside one transaction. The row is locked,
// the payment method it ends up with is reloaded and the split recomputed on
// every call, so a rate change between writes is always picked up.
func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, p Patch, split SplitFunc) (*Expense, error) {
	var out *Expense
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := scanExpense(tx.QueryRow(ctx,
			`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return sql.ErrNoRows
			}
			return fmt.Errorf("failed to lock expense: %w", err)
		}

		categoryID := cur.CategoryID
		if p.CategoryID != nil {
			categoryID = *p.CategoryID
		}
		cat, err := lookupCategory(ctx, tx, userID, categoryID)
		if err != nil {
			return err
		}

		methodID := cur.PaymentMethodID
		if p.PaymentMethodID != nil {
			methodID = *p.PaymentMethodID
		}
		pm, err := lookupPaymentMethod(ctx, tx, userID, methodID)
		if err != nil {
			return err
		}

		amount := cur.Amount
		if p.Amount != nil {
			amount = *p.Amount
		}
		s, err := split(amount, pm.Method())
		if err != nil {
			return err
		}

		date := cur.Date.Time
		if p.Date != nil {
			date = *p.Date
		}
		merchant := cur.Merchant
		if p.Merchant != nil {
			merchant = *p.Merchant
		}

		query := `
			UPDATE expenses SET
				date = $3,
				merchant = $4,
				amount = $5,
				category_id = $6,
				payment_method_id = $7,
				cashback_amount = $8,
				amount_net = $9,
				updated_at = now()
			WHERE id = $1 AND user_id = $2
			RETURNING ` + expenseColumns

		out, err = scanExpense(tx.QueryRow(ctx, query,
			id, userID, date, merchant, s.Amount, categoryID, methodID, s.Cashback, s.Net,
		))
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", common.FromPgError(err, "expense"))
		}
		out.Category, out.PaymentMethod = cat, pm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one expense.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkDelete removes the user's expenses among ids in one statement and
// returns how many were deleted. Ids owned by others are silently skipped.
func (r *Repository) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = ANY($1) AND user_id = $2`, ids, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete expenses: %w", err)
	}
	return tag.RowsAffected(), nil
}
