package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creditCard(rate string) Method {
	return Method{Type: CreditCard, Rate: decimal.NewNullDecimal(decimal.RequireFromString(rate))}
}

func TestCashback(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		method   Method
		cashback int64
	}{
		{"credit card 1.2%", 10000, creditCard("1.2"), 120},
		{"credit card 1.5% rounds half up", 1000, creditCard("1.5"), 15},
		{"credit card 1.25% on 1000 rounds 12.5 up", 1000, creditCard("1.25"), 13},
		{"credit card fraction rounds down", 999, creditCard("1.2"), 12},
		{"credit card zero rate", 5000, creditCard("0"), 0},
		{"credit card without rate", 5000, Method{Type: CreditCard}, 0},
		{"cash", 10000, Method{Type: Cash}, 0},
		{"debit card ignores stray rate", 10000, Method{Type: DebitCard, Rate: decimal.NewNullDecimal(decimal.NewFromInt(5))}, 0},
		{"bank transfer", 10000, Method{Type: BankTransfer}, 0},
		{"zero amount", 0, creditCard("10"), 0},
		{"ten percent exact", 1000, creditCard("10"), 100},
		{"ten percent rounding held at ceiling", 15, creditCard("10"), 1},
		{"ten percent 2.5 held at 2", 25, creditCard("10"), 2},
		{"ten percent 100.5 held at 100", 1005, creditCard("10"), 100},
		{"just below ten percent rounds down", 15, creditCard("9.99"), 1},
		{"9.9% on 1005 rounds 99.495 down", 1005, creditCard("9.9"), 99},
		{"9.99% on 9 held at ceiling", 9, creditCard("9.99"), 0},
		{"ten percent small amount", 5, creditCard("10"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Cashback(tt.amount, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, s.Amount)
			assert.Equal(t, tt.cashback, s.Cashback)
			assert.Equal(t, tt.amount-tt.cashback, s.Net)
		})
	}
}

func TestCashback_NegativeAmount(t *testing.T) {
	_, err := Cashback(-100, Method{Type: Cash})
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestSplit_Validate(t *testing.T) {
	tests := []struct {
		name  string
		split Split
		ok    bool
	}{
		{"valid", Split{Amount: 1000, Cashback: 12, Net: 988}, true},
		{"zero", Split{}, true},
		{"sum mismatch", Split{Amount: 1000, Cashback: 12, Net: 990}, false},
		{"over ceiling", Split{Amount: 1000, Cashback: 101, Net: 899}, false},
		{"negative net", Split{Amount: 10, Cashback: 20, Net: -10}, false},
		{"negative cashback", Split{Amount: 10, Cashback: -1, Net: 11}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.split.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvariant)
			}
		})
	}
}

func TestCashback_InvariantsHoldForRandomInputs(t *testing.T) {
	gen := NewTestDataGeneratorWithSeed(42)

	for i := 0; i < 2000; i++ {
		amount := gen.Amount(0, MaxAmount)
		method := gen.Method()

		s, err := Cashback(amount, method)
		require.NoError(t, err, "amount=%d method=%+v", amount, method)

		assert.Equal(t, s.Amount, s.Net+s.Cashback)
		assert.GreaterOrEqual(t, s.Net, int64(0))
		assert.LessOrEqual(t, s.Cashback*10, s.Amount)
		if method.Type != CreditCard {
			assert.Zero(t, s.Cashback)
		}
	}
}

func TestCashback_RoundsUnlessCeilingInterferes(t *testing.T) {
	gen := NewTestDataGeneratorWithSeed(7)

	for i := 0; i < 2000; i++ {
		amount := gen.Amount(0, MaxAmount)
		method := Method{Type: CreditCard, Rate: decimal.NewNullDecimal(gen.Rate())}

		s, err := Cashback(amount, method)
		require.NoError(t, err)

		rounded := decimal.NewFromInt(amount).Mul(method.Rate.Decimal).Div(decimal.NewFromInt(100)).Round(0).IntPart()
		if rounded*10 <= amount {
			assert.Equal(t, rounded, s.Cashback, "amount=%d rate=%s", amount, method.Rate.Decimal)
		} else {
			assert.Equal(t, amount/10, s.Cashback, "amount=%d rate=%s", amount, method.Rate.Decimal)
		}
	}
}
