// Package parser reads expense spreadsheets in the fixed
// Date | Merchant | Amount | Category | Payment layout from Excel or CSV files.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// ErrEmptyFile is returned when a file has no data rows.
var ErrEmptyFile = errors.New("file is empty")

// ErrAmountOutOfRange is returned for amounts below zero or above money.MaxAmount.
var ErrAmountOutOfRange = errors.New("amount out of range")

var maxAmount = decimal.NewFromInt(money.MaxAmount)

// Columns lists the expected headers in their display form. Header matching
// ignores case and surrounding whitespace.
var Columns = []string{"Date", "Merchant", "Amount", "Category", "Payment"}

// MissingColumnsError names the expected headers a file lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

// Row is one data row with raw, trimmed cell values. Number is the 1-based
// row in the file, header included.
type Row struct {
	Number   int
	Date     string
	Merchant string
	Amount   string
	Category string
	Payment  string
}

func (r Row) blank() bool {
	return r.Date == "" && r.Merchant == "" && r.Amount == "" && r.Category == "" && r.Payment == ""
}

// Missing returns the first required column the row leaves empty, or "".
func (r Row) Missing() string {
	for i, v := range []string{r.Date, r.Merchant, r.Amount, r.Category, r.Payment} {
		if v == "" {
			return Columns[i]
		}
	}
	return ""
}

func foldHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// columnIndex maps each expected column to its position in headers.
func columnIndex(headers []string) (map[string]int, error) {
	idx := make(map[string]int, len(Columns))
	for i, h := range headers {
		key := foldHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}

	var missing []string
	for _, c := range Columns {
		if _, ok := idx[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate accepts YYYY-MM-DD, YYYY/MM/DD, MM/DD/YYYY or an Excel serial
// day number and returns the date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date: %s", s)
}

// ParseAmount parses a whole-won amount, rounding fractions half-up.
// Thousands separators and a leading won sign are tolerated. The rounded
// value must lie in [0, money.MaxAmount]; the range is checked on the decimal
// so values beyond int64 are rejected rather than wrapped.
func ParseAmount(s string) (int64, error) {
	clean := strings.NewReplacer(",", "", "₩", "", " ", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}
	d = d.Round(0)
	if d.IsNegative() || d.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, s)
	}
	return d.IntPart(), nil
}

// cleanMerchant trims and collapses repeated spaces.
func cleanMerchant(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
