// Package dashboard computes the spending summary of a billing window and the
// six-month trend series.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
)

const (
	// TopMerchantLimit is how many merchants a summary lists.
	TopMerchantLimit = 5

	// TrendMonths is the length of the trend series.
	TrendMonths = 6
)

// CycleProvider returns the user's billing cycle.
type CycleProvider interface {
	Cycle(ctx context.Context, userID uuid.UUID) (billing.Cycle, error)
}

// SummaryQuery holds the raw summary query parameters. StartDate and EndDate
// together override Month.
type SummaryQuery struct {
	Month     string `form:"month" json:"month" validate:"omitempty,yearmonth"`
	StartDate string `form:"startDate" json:"startDate" validate:"omitempty,isodate"`
	EndDate   string `form:"endDate" json:"endDate" validate:"omitempty,isodate"`
}

func (q SummaryQuery) explicit() bool {
	return q.StartDate != "" || q.EndDate != ""
}

// TrendPoint is one month of the trend series.
type TrendPoint struct {
	Month            string `json:"month"`
	TotalSpent       int64  `json:"totalSpent"`
	TotalCashback    int64  `json:"totalCashback"`
	TransactionCount int    `json:"transactionCount"`
	Income           int64  `json:"income"`
}

// Service builds dashboard views.
type Service struct {
	repo     DashboardRepository
	settings CycleProvider
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService creates a dashboard service.
func NewService(repo DashboardRepository, settings CycleProvider, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		logger:   logger,
		tracer:   otel.Tracer("family-ledger/dashboard"),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for the default month and trends.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Window resolves the window a summary query covers. The user's billing
// cycle is only loaded when no explicit dates are given.
func (s *Service) Window(ctx context.Context, userID uuid.UUID, q SummaryQuery) (billing.Window, error) {
	if err := common.Validate(q); err != nil {
		return billing.Window{}, err
	}

	req := billing.Request{Now: s.now()}
	if q.explicit() {
		if q.StartDate != "" {
			d, err := billing.ParseDate("startDate", q.StartDate)
			if err != nil {
				return billing.Window{}, err
			}
			req.Start = &d
		}
		if q.EndDate != "" {
			d, err := billing.ParseDate("endDate", q.EndDate)
			if err != nil {
				return billing.Window{}, err
			}
			req.End = &d
		}
		return billing.Resolve(req)
	}

	if q.Month != "" {
		m, err := billing.ParseMonth("month", q.Month)
		if err != nil {
			return billing.Window{}, err
		}
		req.Month = m
	}

	cycle, err := s.settings.Cycle(ctx, userID)
	if err != nil {
		return billing.Window{}, err
	}
	req.Cycle = cycle
	return billing.Resolve(req)
}

// Summary returns the dashboard summary for the resolved window. Any failing
// query fails the whole summary.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, q SummaryQuery) (out *Summary, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Summary",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() { finish(span, err) }()

	w, err := s.Window(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("window.label", w.Label))

	var (
		rollup    []CategoryTotal
		merchants []MerchantTotal
		income    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rollup, err = s.repo.CategoryRollup(gctx, userID, w)
		return err
	})
	g.Go(func() error {
		var err error
		merchants, err = s.repo.TopMerchants(gctx, userID, w, TopMerchantLimit)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = s.repo.IncomeForMonth(gctx, userID, billing.MonthStart(w.Start))
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard summary failed",
			slog.String("user_id", userID.String()),
			slog.String("window", w.Label),
			slog.Any("error", err),
		)
		return nil, err
	}

	sum := Aggregate(rollup)
	sum.Period = w.Label
	sum.StartDate = billing.NewDate(w.Start)
	sum.EndDate = billing.NewDate(w.End)
	sum.Income = income
	sum.NetSavings = income - sum.TotalSpent
	sum.TopMerchants = merchants
	if sum.TopMerchants == nil {
		sum.TopMerchants = []MerchantTotal{}
	}

	s.logger.Debug("dashboard summary built",
		slog.String("user_id", userID.String()),
		slog.String("window", w.Label),
		slog.Int("categories", len(rollup)),
		slog.Int64("total_spent", sum.TotalSpent),
	)
	return &sum, nil
}

// TrendMonthsEnding returns the first days of the TrendMonths calendar
// months ending with the month of now, oldest first.
func TrendMonthsEnding(now time.Time) []time.Time {
	current := billing.MonthStart(now)
	out := make([]time.Time, TrendMonths)
	for i := range out {
		out[i] = current.AddDate(0, i-(TrendMonths-1), 0)
	}
	return out
}

// Trends returns spend, cashback, count and income for the last six calendar
// months, oldest first. Months are fetched concurrently; each result lands in
// its own slot so the order never depends on completion order.
func (s *Service) Trends(ctx context.Context, userID uuid.UUID) (out []TrendPoint, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Trends",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() { finish(span, err) }()

	months := TrendMonthsEnding(s.now())
	points := make([]TrendPoint, len(months))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range months {
		g.Go(func() error {
			w := billing.CalendarMonth(m)
			totals, err := s.repo.MonthTotals(gctx, userID, w)
			if err != nil {
				return err
			}
			income, err := s.repo.IncomeForMonth(gctx, userID, m)
			if err != nil {
				return err
			}
			points[i] = TrendPoint{
				Month:            w.Label,
				TotalSpent:       totals.Spent,
				TotalCashback:    totals.Cashback,
				TransactionCount: totals.TransactionCount,
				Income:           income,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard trends failed",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	return points, nil
}
