package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/pkg/db"
)

// MonthTotals are the expense totals of one trend month.
type MonthTotals struct {
	Spent            int64
	Cashback         int64
	TransactionCount int
}

// DashboardRepository defines the read queries behind the dashboard.
type DashboardRepository interface {
	CategoryRollup(ctx context.Context, userID uuid.UUID, w billing.Window) ([]CategoryTotal, error)
	TopMerchants(ctx context.Context, userID uuid.UUID, w billing.Window, limit int) ([]MerchantTotal, error)
	IncomeForMonth(ctx context.Context, userID uuid.UUID, month time.Time) (int64, error)
	MonthTotals(ctx context.Context, userID uuid.UUID, w billing.Window) (MonthTotals, error)
}

// Repository is the Postgres implementation of DashboardRepository.
type Repository struct {
	db db.DBTX
}

var _ DashboardRepository = (*Repository)(nil)

// NewRepository creates a dashboard repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// CategoryRollup returns one row for every category the user owns, with zero
// totals for categories that have no expenses in the window.
func (r *Repository) CategoryRollup(ctx context.Context, userID uuid.UUID, w billing.Window) ([]CategoryTotal, error) {
	query := `
		SELECT c.id, c.name, c.monthly_budget,
			COALESCE(SUM(e.amount_net), 0)::bigint AS spent,
			COALESCE(SUM(e.cashback_amount), 0)::bigint AS cashback,
			COUNT(e.id)::int AS transaction_count
		FROM categories c
		LEFT JOIN expenses e
			ON e.category_id = c.id
			AND e.user_id = c.user_id
			AND e.date >= $2
			AND e.date <= $3
		WHERE c.user_id = $1
		GROUP BY c.id, c.name, c.monthly_budget
		ORDER BY c.name ASC
	`

	rows, err := r.db.Query(ctx, query, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query category rollup: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var c CategoryTotal
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Budget, &c.Spent, &c.Cashback, &c.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan category rollup: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query category rollup: %w", err)
	}
	return out, nil
}

// TopMerchants returns the merchants with the highest net spend in the window.
func (r *Repository) TopMerchants(ctx context.Context, userID uuid.UUID, w billing.Window, limit int) ([]MerchantTotal, error) {
	query := `
		SELECT merchant,
			SUM(amount_net)::bigint AS total_spent,
			SUM(cashback_amount)::bigint AS cashback_earned,
			COUNT(*)::int AS transaction_count
		FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		GROUP BY merchant
		ORDER BY SUM(amount_net) DESC, merchant ASC
		LIMIT $4
	`

	rows, err := r.db.Query(ctx, query, userID, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top merchants: %w", err)
	}
	defer rows.Close()

	out := make([]MerchantTotal, 0, limit)
	for rows.Next() {
		var m MerchantTotal
		if err := rows.Scan(&m.Merchant, &m.TotalSpent, &m.CashbackEarned, &m.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan top merchant: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query top merchants: %w", err)
	}
	return out, nil
}

// IncomeForMonth returns the income recorded for month, or 0.
func (r *Repository) IncomeForMonth(ctx context.Context, userID uuid.UUID, month time.Time) (int64, error) {
	query := `
		SELECT COALESCE(
			(SELECT amount FROM income WHERE user_id = $1 AND month = $2),
			0
		)::bigint
	`

	var amount int64
	if err := r.db.QueryRow(ctx, query, userID, billing.MonthStart(month)).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to query income: %w", err)
	}
	return amount, nil
}

// MonthTotals sums all expenses in the window.
func (r *Repository) MonthTotals(ctx context.Context, userID uuid.UUID, w billing.Window) (MonthTotals, error) {
	query := `
		SELECT COALESCE(SUM(amount_net), 0)::bigint,
			COALESCE(SUM(cashback_amount), 0)::bigint,
			COUNT(*)::int
		FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3
	`

	var t MonthTotals
	if err := r.db.QueryRow(ctx, query, userID, w.Start, w.End).Scan(&t.Spent, &t.Cashback, &t.TransactionCount); err != nil {
		return MonthTotals{}, fmt.Errorf("failed to query month totals: %w", err)
	}
	return t, nil
}
