package dashboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/family-ledger/pkg/money"
)

func budget(v int64) *int64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		pct  float64
		want Status
	}{
		{0, OnTrack},
		{79, OnTrack},
		{80, Warning},
		{99, Warning},
		{100, OverBudget},
		{250, OverBudget},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.pct), "pct %v", tt.pct)
	}
}

func TestAggregate_BudgetStatusBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		spent  int64
		pct    float64
		status Status
	}{
		{"well under", 10000, 10, OnTrack},
		{"just under warning", 79000, 79, OnTrack},
		{"rounds up into warning", 79500, 80, Warning},
		{"at warning", 80000, 80, Warning},
		{"high warning", 99400, 99, Warning},
		{"rounds up to over", 99500, 100, OverBudget},
		{"at budget", 100000, 100, OverBudget},
		{"over budget", 150000, 150, OverBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Aggregate([]CategoryTotal{{CategoryID: uuid.New(), Name: "Food", Budget: budget(100000), Spent: tt.spent}})
			require.Len(t, s.BudgetStatus, 1)
			line := s.BudgetStatus[0]
			assert.Equal(t, tt.pct, line.Percentage)
			assert.Equal(t, tt.status, line.Status)
			assert.Equal(t, 100000-tt.spent, line.Remaining)
		})
	}
}

func TestAggregate_TotalsAndBreakdown(t *testing.T) {
	rows := []CategoryTotal{
		{Name: "Baby", Budget: nil, Spent: 0},
		{Name: "Food", Budget: budget(300000), Spent: 150000, Cashback: 1500, TransactionCount: 10},
		{Name: "Groceries", Budget: budget(200000), Spent: 50000, Cashback: 500, TransactionCount: 3},
		{Name: "Transport", Budget: budget(0), Spent: 100000, TransactionCount: 20},
	}

	s := Aggregate(rows)

	assert.Equal(t, int64(300000), s.TotalSpent)
	assert.Equal(t, int64(2000), s.TotalCashback)
	assert.Equal(t, 33, s.TotalExpenses)
	assert.Equal(t, int64(500000), s.TotalBudget)
	assert.Equal(t, 60.0, s.BudgetProgress)

	require.Len(t, s.CategoryBreakdown, 3)
	assert.Equal(t, "Food", s.CategoryBreakdown[0].Category)
	assert.Equal(t, 50.0, s.CategoryBreakdown[0].Percentage)
	assert.Equal(t, "Transport", s.CategoryBreakdown[1].Category)
	assert.Equal(t, 33.3, s.CategoryBreakdown[1].Percentage)
	assert.Equal(t, "Groceries", s.CategoryBreakdown[2].Category)
	assert.Equal(t, 16.7, s.CategoryBreakdown[2].Percentage)

	require.Len(t, s.BudgetStatus, 2, "zero and missing budgets are not tracked")
	assert.Equal(t, "Food", s.BudgetStatus[0].CategoryName)
	assert.Equal(t, 50.0, s.BudgetStatus[0].Percentage)
	assert.Equal(t, "Groceries", s.BudgetStatus[1].CategoryName)
	assert.Equal(t, 25.0, s.BudgetStatus[1].Percentage)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.TotalSpent)
	assert.Zero(t, s.BudgetProgress)
	assert.NotNil(t, s.CategoryBreakdown)
	assert.NotNil(t, s.BudgetStatus)
	assert.Empty(t, s.CategoryBreakdown)
}

func TestAggregate_TiesSortByName(t *testing.T) {
	s := Aggregate([]CategoryTotal{
		{Name: "Utilities", Budget: budget(1000), Spent: 500},
		{Name: "Household", Budget: budget(2000), Spent: 1000},
	})

	require.Len(t, s.BudgetStatus, 2)
	assert.Equal(t, "Household", s.BudgetStatus[0].CategoryName)
	assert.Equal(t, "Utilities", s.BudgetStatus[1].CategoryName)
	assert.Equal(t, "Household", s.CategoryBreakdown[0].Category)
}

func TestAggregate_SumsAreConsistent(t *testing.T) {
	gen := money.NewTestDataGeneratorWithSeed(42)

	for i := 0; i < 100; i++ {
		rows := make([]CategoryTotal, gen.Amount(1, 12))
		for j := range rows {
			rows[j] = CategoryTotal{
				Name:             gen.Merchant(),
				Spent:            gen.Amount(0, 2_000_000),
				Cashback:         gen.Amount(0, 20_000),
				TransactionCount: int(gen.Amount(0, 50)),
			}
			if gen.Amount(0, 1) == 1 {
				rows[j].Budget = budget(gen.Amount(0, 3_000_000))
			}
		}

		s := Aggregate(rows)

		var spent, cashback int64
		var count int
		for _, r := range rows {
			spent += r.Spent
			cashback += r.Cashback
			count += r.TransactionCount
		}
		require.Equal(t, spent, s.TotalSpent)
		require.Equal(t, cashback, s.TotalCashback)
		require.Equal(t, count, s.TotalExpenses)

		var breakdown int64
		for k, b := range s.CategoryBreakdown {
			breakdown += b.Spent
			if k > 0 {
				require.GreaterOrEqual(t, s.CategoryBreakdown[k-1].Spent, b.Spent)
			}
		}
		require.Equal(t, s.TotalSpent, breakdown)

		for k := 1; k < len(s.BudgetStatus); k++ {
			require.GreaterOrEqual(t, s.BudgetStatus[k-1].Percentage, s.BudgetStatus[k].Percentage)
		}
	}
}
