package dashboard

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// Status classifies a category's spend against its budget.
type Status string

const (
	OnTrack    Status = "on_track"
	Warning    Status = "warning"
	OverBudget Status = "over_budget"
)

// Budget thresholds, in whole percent of the budget spent.
const (
	WarningPercent    = 80
	OverBudgetPercent = 100
)

// Classify maps a spent-of-budget percentage to a status.
func Classify(pct float64) Status {
	switch {
	case pct >= OverBudgetPercent:
		return OverBudget
	case pct >= WarningPercent:
		return Warning
	}
	return OnTrack
}

// CategoryTotal is one row of the category rollup.
type CategoryTotal struct {
	CategoryID       uuid.UUID
	Name             string
	Budget           *int64
	Spent            int64
	Cashback         int64
	TransactionCount int
}

// MerchantTotal is a merchant's spend within the window.
type MerchantTotal struct {
	Merchant         string `json:"merchant"`
	TotalSpent       int64  `json:"totalSpent"`
	CashbackEarned   int64  `json:"cashbackEarned"`
	TransactionCount int    `json:"transactionCount"`
}

// CategoryShare is a category's part of the window's total spend.
type CategoryShare struct {
	Category   string  `json:"category"`
	Spent      int64   `json:"spent"`
	Cashback   int64   `json:"cashback"`
	Percentage float64 `json:"percentage"`
}

// BudgetLine is a budgeted category's progress.
type BudgetLine struct {
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Budget       int64     `json:"budget"`
	Spent        int64     `json:"spent"`
	Remaining    int64     `json:"remaining"`
	Percentage   float64   `json:"percentage"`
	Status       Status    `json:"status"`
}

// Summary is the dashboard view of one window.
type Summary struct {
	Period            string          `json:"period"`
	StartDate         billing.Date    `json:"startDate"`
	EndDate           billing.Date    `json:"endDate"`
	TotalSpent        int64           `json:"totalSpent"`
	TotalCashback     int64           `json:"totalCashback"`
	TotalExpenses     int             `json:"totalExpenses"`
	TotalBudget       int64           `json:"totalBudget"`
	BudgetProgress    float64         `json:"budgetProgress"`
	Income            int64           `json:"income"`
	NetSavings        int64           `json:"netSavings"`
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	BudgetStatus      []BudgetLine    `json:"budgetStatus"`
	TopMerchants      []MerchantTotal `json:"topMerchants"`
}

// Aggregate derives totals, the spend breakdown and budget status from the
// category rollup. Totals are sums over rows, so they always agree with the
// per-category figures.
func Aggregate(rows []CategoryTotal) Summary {
	var s Summary
	for _, r := range rows {
		s.TotalSpent += r.Spent
		s.TotalCashback += r.Cashback
		s.TotalExpenses += r.TransactionCount
		if r.Budget != nil {
			s.TotalBudget += *r.Budget
		}
	}
	s.BudgetProgress = money.Percent(s.TotalSpent, s.TotalBudget, 1)

	s.CategoryBreakdown = make([]CategoryShare, 0, len(rows))
	s.BudgetStatus = make([]BudgetLine, 0, len(rows))
	for _, r := range rows {
		if r.Spent > 0 {
			s.CategoryBreakdown = append(s.CategoryBreakdown, CategoryShare{
				Category:   r.Name,
				Spent:      r.Spent,
				Cashback:   r.Cashback,
				Percentage: money.Percent(r.Spent, s.TotalSpent, 1),
			})
		}
		if r.Budget != nil && *r.Budget > 0 {
			pct := money.Percent(r.Spent, *r.Budget, 0)
			s.BudgetStatus = append(s.BudgetStatus, BudgetLine{
				CategoryID:   r.CategoryID,
				CategoryName: r.Name,
				Budget:       *r.Budget,
				Spent:        r.Spent,
				Remaining:    *r.Budget - r.Spent,
				Percentage:   pct,
				Status:       Classify(pct),
			})
		}
	}

	slices.SortStableFunc(s.CategoryBreakdown, func(a, b CategoryShare) int {
		if c := cmp.Compare(b.Spent, a.Spent); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	slices.SortStableFunc(s.BudgetStatus, func(a, b BudgetLine) int {
		if c := cmp.Compare(b.Percentage, a.Percentage); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryName, b.CategoryName)
	})

	return s
}
