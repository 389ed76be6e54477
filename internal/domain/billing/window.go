// Package billing resolves the date window a dashboard summary covers, either
// from explicit dates or from a target month and the user's card billing cycle.
package billing

import (
	"fmt"
	"time"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Cycle is a user's billing cycle. EndDay 0 means "last day of the month".
type Cycle struct {
	StartDay int `json:"billingCycleStartDay"`
	EndDay   int `json:"billingCycleEndDay"`
}

// DefaultCycle is the calendar month.
var DefaultCycle = Cycle{StartDay: 1, EndDay: 0}

// Validate checks the day ranges.
func (c Cycle) Validate() error {
	verr := &common.ValidationError{}
	if c.StartDay < 1 || c.StartDay > 31 {
		verr.Add("billingCycleStartDay", "must be between 1 and 31")
	}
	if c.EndDay < 0 || c.EndDay > 31 {
		verr.Add("billingCycleEndDay", "must be between 0 and 31")
	}
	return verr.OrNil()
}

// Window is an inclusive date range at day granularity.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether the date of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Request selects a window. Start and End, when both set, take precedence
// over Month. A zero Month falls back to the month containing Now.
type Request struct {
	Start *time.Time
	End   *time.Time
	Month time.Time
	Cycle Cycle
	Now   time.Time
}

// Resolve picks the window for a summary request.
func Resolve(r Request) (Window, error) {
	switch {
	case r.Start != nil && r.End != nil:
		return Explicit(*r.Start, *r.End)
	case r.Start != nil:
		return Window{}, common.Invalid("endDate", "is required when startDate is set")
	case r.End != nil:
		return Window{}, common.Invalid("startDate", "is required when endDate is set")
	}

	month := r.Month
	if month.IsZero() {
		month = r.Now
	}
	return ForMonth(month.Year(), month.Month(), r.Cycle)
}

// Explicit returns the window [start, end] used verbatim.
func Explicit(start, end time.Time) (Window, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return Window{}, common.Invalid("startDate", "must not be after endDate")
	}
	return Window{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%s to %s", start.Format(DateLayout), end.Format(DateLayout)),
	}, nil
}

// ForMonth returns the billing period that ends in the target month.
//
// Day numbers that do not exist in a month are clamped to its last day. When
// the start day falls after the effective end day the period begins in the
// previous calendar month.
func ForMonth(year int, month time.Month, c Cycle) (Window, error) {
	if err := c.Validate(); err != nil {
		return Window{}, err
	}

	last := DaysIn(year, month)
	endDay := last
	if c.EndDay != 0 {
		endDay = min(c.EndDay, last)
	}

	end := time.Date(year, month, endDay, 0, 0, 0, 0, time.UTC)
	label := fmt.Sprintf("%04d-%02d", year, int(month))

	if c.StartDay > endDay {
		prevYear, prevMonth := year, month-1
		if month == time.January {
			prevYear, prevMonth = year-1, time.December
		}
		startDay := min(c.StartDay, DaysIn(prevYear, prevMonth))
		start := time.Date(prevYear, prevMonth, startDay, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: end, Label: label}, nil
	}

	start := time.Date(year, month, min(c.StartDay, last), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: end, Label: label}, nil
}

// CalendarMonth returns the 1st..last day window of the month containing t.
func CalendarMonth(t time.Time) Window {
	w, _ := ForMonth(t.Year(), t.Month(), DefaultCycle)
	return w
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, common.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month into its first day.
func ParseMonth(field, s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, common.Invalid(field, "must be a month in YYYY-MM format")
	}
	return t, nil
}
