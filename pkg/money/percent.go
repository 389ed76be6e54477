package money

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// MaxCashbackRate is the highest cashback percentage a payment method may carry.
var MaxCashbackRate = decimal.NewFromInt(10)

// ErrInvalidRate is returned by ParseRate for malformed or out-of-range rates.
var ErrInvalidRate = errors.New("cashback percentage must be a number between 0 and 10 with at most 2 decimals")

var rateFormat = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Percent returns part/whole*100 rounded half-up to the given number of
// decimal places. A zero whole yields 0.
func Percent(part, whole int64, places int32) float64 {
	if whole == 0 {
		return 0
	}

	pct := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(places)
	f, _ := pct.Float64()
	return f
}

// ParseRate parses a cashback percentage such as "1.20".
func ParseRate(s string) (decimal.Decimal, error) {
	if !rateFormat.MatchString(s) {
		return decimal.Zero, ErrInvalidRate
	}

	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidRate, err)
	}
	if rate.GreaterThan(MaxCashbackRate) {
		return decimal.Zero, ErrInvalidRate
	}
	return rate, nil
}
