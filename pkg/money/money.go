// Package money provides the ledger's monetary arithmetic. Amounts are whole
// won (KRW has no minor unit) held as int64; fractional work such as cashback
// rates and percentages goes through shopspring/decimal and is rounded once.
package money

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// KRW is the only currency the ledger stores.
const KRW = "KRW"

var hundred = decimal.NewFromInt(100)

// ErrCurrencyMismatch is returned when combining values of different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is a monetary value with currency, backed by go-money.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units of the given currency.
func New(amount int64, currencyCode string) *Money {
	return &Money{m: money.New(amount, currencyCode)}
}

// Won creates a KRW value.
func Won(amount int64) *Money {
	return New(amount, KRW)
}

// NewFromDecimal converts a decimal major-unit value, rounding half away from
// zero to the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(KRW)
	}

	minor := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(minor, currency.Code)
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Add returns m + other.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	if !m.m.SameCurrency(other.m) {
		return nil, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Subtract returns m - other.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if other == nil || other.m == nil {
		return m, nil
	}
	if m == nil || m.m == nil {
		return &Money{m: other.m.Negative()}, nil
	}
	if !m.m.SameCurrency(other.m) {
		return nil, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// ToDecimal returns the value in major units.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// PercentageDecimal returns percent% of m, rounded to the minor unit.
func (m *Money) PercentageDecimal(percent decimal.Decimal) *Money {
	if m == nil || m.m == nil {
		return Won(0)
	}
	return NewFromDecimal(m.ToDecimal().Mul(percent).Div(hundred), m.Currency())
}

// Display formats the value with its currency symbol and separators.
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

func (m *Money) String() string {
	return m.Display()
}

// MarshalJSON encodes the value as a bare integer of minor units.
func (m *Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Amount())
}
