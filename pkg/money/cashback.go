package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvariant marks a split that would break the stored-expense invariants.
var ErrInvariant = errors.New("ledger invariant violated")

// MaxAmount is the largest single expense amount accepted.
const MaxAmount int64 = 100_000_000

// PaymentType is the kind of a payment method. Only credit cards earn cashback.
type PaymentType string

const (
	Cash         PaymentType = "Cash"
	CreditCard   PaymentType = "Credit Card"
	DebitCard    PaymentType = "Debit Card"
	BankTransfer PaymentType = "Bank Transfer"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case Cash, CreditCard, DebitCard, BankTransfer:
		return true
	}
	return false
}

// Method is the part of a payment method the calculator needs.
type Method struct {
	Type PaymentType
	Rate decimal.NullDecimal
}

// Split is an expense amount divided into cashback and net spend.
type Split struct {
	Amount   int64
	Cashback int64
	Net      int64
}

// Cashback computes the split for a gross amount paid with the given method.
//
// Credit cards with a rate earn round(amount * rate / 100), rounded half-up.
// The result never exceeds the 10% ceiling: when rounding would push it over
// (amount 15 at 10% rounds 1.5 up to 2) it is held at floor(amount / 10).
// Every other method earns nothing.
func Cashback(amount int64, method Method) (Split, error) {
	var cashback int64
	if method.Type == CreditCard && method.Rate.Valid {
		cashback = decimal.NewFromInt(amount).
			Mul(method.Rate.Decimal).
			Div(hundred).
			Round(0).
			IntPart()
		if ceiling := amount / 10; amount >= 0 && cashback > ceiling {
			cashback = ceiling
		}
	}

	s := Split{Amount: amount, Cashback: cashback, Net: amount - cashback}
	if err := s.Validate(); err != nil {
		return Split{}, err
	}
	return s, nil
}

// Validate checks the invariants every persisted expense must satisfy.
func (s Split) Validate() error {
	switch {
	case s.Amount < 0:
		return fmt.Errorf("%w: amount %d is negative", ErrInvariant, s.Amount)
	case s.Cashback < 0:
		return fmt.Errorf("%w: cashback %d is negative", ErrInvariant, s.Cashback)
	case s.Net < 0:
		return fmt.Errorf("%w: net %d is negative", ErrInvariant, s.Net)
	case s.Net+s.Cashback != s.Amount:
		return fmt.Errorf("%w: net %d + cashback %d != amount %d", ErrInvariant, s.Net, s.Cashback, s.Amount)
	case s.Cashback*10 > s.Amount:
		return fmt.Errorf("%w: cashback %d exceeds 10%% of %d", ErrInvariant, s.Cashback, s.Amount)
	}
	return nil
}
