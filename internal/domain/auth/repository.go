package auth

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
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// DefaultCategories are created for every new account.
var DefaultCategories = []string{
	"Food", "Baby", "Groceries", "Utilities", "Household", "Transport",
	"Others", "Subscription", "Insurance", "Monthly Rent", "Instalment",
}

// DefaultMethod is a payment method created for every new account.
type DefaultMethod struct {
	Name      string
	Type      money.PaymentType
	Rate      *string
	IsDefault bool
}

var creditCardRate = "1.20"

// DefaultPaymentMethods are created for every new account. The credit card
// is the account's default method.
var DefaultPaymentMethods = []DefaultMethod{
	{Name: "Cash", Type: money.Cash},
	{Name: "Bank Transfer", Type: money.BankTransfer},
	{Name: "Debit Card", Type: money.DebitCard},
	{Name: "Credit Card", Type: money.CreditCard, Rate: &creditCardRate, IsDefault: true},
}

// User is a stored account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthRepository persists accounts.
type AuthRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

var _ AuthRepository = (*Repository)(nil)

type Repository struct {
	db db.DBTX
}

func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts the account and seeds its default categories and
// payment methods in one transaction.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	var user User
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			RETURNING id, email, password_hash, created_at`,
			email, passwordHash,
		).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", common.FromPgError(err, "user"))
		}
		return seedDefaults(ctx, tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func seedDefaults(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO categories (user_id, name, is_default)
		SELECT $1, name, true FROM unnest($2::text[]) AS name`,
		userID, DefaultCategories,
	); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	names := make([]string, len(DefaultPaymentMethods))
	types := make([]string, len(DefaultPaymentMethods))
	rates := make([]*string, len(DefaultPaymentMethods))
	defaults := make([]bool, len(DefaultPaymentMethods))
	for i, m := range DefaultPaymentMethods {
		names[i], types[i], rates[i], defaults[i] = m.Name, string(m.Type), m.Rate, m.IsDefault
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO payment_methods (user_id, name, type, cashback_percentage, is_default)
		SELECT $1, m.name, m.type::payment_type, m.rate::numeric, m.is_default
		FROM unnest($2::text[], $3::text[], $4::text[], $5::bool[]) AS m(name, type, rate, is_default)`,
		userID, names, types, rates, defaults,
	); err != nil {
		return fmt.Errorf("failed to seed payment methods: %w", err)
	}
	return nil
}

// GetUserByEmail returns sql.ErrNoRows when no account matches.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
