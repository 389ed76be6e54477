// Package imports bulk-loads expenses from spreadsheets. Every row is checked
// against the user's own categories and payment methods, cashback is computed
// server side, and all valid rows are inserted in one batch.
package imports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/internal/domain/imports/parser"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// Format selects the parser for an upload.
type Format string

const (
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// MaxReportedErrors caps the row errors echoed back to the client.
const MaxReportedErrors = 50

const maxMerchantLength = 255

// RowError explains why a row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes an import.
type Result struct {
	Success   bool       `json:"success"`
	Imported  int64      `json:"imported"`
	Skipped   int        `json:"skipped"`
	TotalRows int        `json:"totalRows"`
	Errors    []RowError `json:"errors"`
}

type Service struct {
	repo   ImportRepository
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(repo ImportRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("family-ledger/imports"),
	}
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// lookups indexes the user's reference data by lower-cased name.
type lookups struct {
	categories    map[string]Category
	methods       map[string]PaymentMethod
	categoryNames []string
	methodNames   []string
}

func newLookups(cats []Category, methods []PaymentMethod) *lookups {
	lk := &lookups{
		categories: make(map[string]Category, len(cats)),
		methods:    make(map[string]PaymentMethod, len(methods)),
	}
	for _, c := range cats {
		lk.categories[strings.ToLower(c.Name)] = c
		lk.categoryNames = append(lk.categoryNames, c.Name)
	}
	for _, m := range methods {
		lk.methods[strings.ToLower(m.Name)] = m
		lk.methodNames = append(lk.methodNames, m.Name)
	}
	slices.Sort(lk.categoryNames)
	slices.Sort(lk.methodNames)
	return lk
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*lookups, error) {
	var cats []Category
	var methods []PaymentMethod

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.repo.Categories(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		methods, err = s.repo.PaymentMethods(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newLookups(cats, methods), nil
}

func parse(format Format, r io.Reader) ([]parser.Row, error) {
	var rows []parser.Row
	var err error
	switch format {
	case FormatExcel:
		rows, err = parser.ParseExcel(r)
	case FormatCSV:
		rows, err = parser.ParseCSV(r)
	default:
		return nil, common.Invalid("format", "unsupported import format")
	}

	var missing *parser.MissingColumnsError
	switch {
	case err == nil:
		return rows, nil
	case errors.Is(err, parser.ErrEmptyFile):
		return nil, common.Invalid("file", "file is empty")
	case errors.As(err, &missing):
		return nil, common.Invalid("file", missing.Error())
	default:
		return nil, common.Invalid("file", "could not read file")
	}
}

// Import parses the upload, validates every row and inserts the valid ones.
// A malformed file fails as a whole; bad rows are skipped and reported.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, format Format, r io.Reader) (res *Result, err error) {
	ctx, span := s.tracer.Start(ctx, "imports.Import", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("import.format", string(format)),
	))
	defer func() { finish(span, err) }()

	rows, err := parse(format, r)
	if err != nil {
		return nil, err
	}

	lk, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	valid := make([]Expense, 0, len(rows))
	var rowErrs []RowError
	for _, row := range rows {
		e, reason, err := s.resolve(row, lk)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			rowErrs = append(rowErrs, RowError{Row: row.Number, Reason: reason})
			continue
		}
		valid = append(valid, e)
	}

	imported, err := s.repo.InsertExpenses(ctx, userID, valid)
	if err != nil {
		s.logger.Error("import insert failed",
			slog.String("user_id", userID.String()),
			slog.Int("rows", len(valid)),
			slog.Any("error", err),
		)
		return nil, err
	}

	res = &Result{
		Success:   true,
		Imported:  imported,
		Skipped:   len(rowErrs),
		TotalRows: len(rows),
		Errors:    rowErrs[:min(len(rowErrs), MaxReportedErrors)],
	}
	if res.Errors == nil {
		res.Errors = []RowError{}
	}

	span.SetAttributes(attribute.Int64("import.imported", imported), attribute.Int("import.skipped", res.Skipped))
	s.logger.Info("expenses imported",
		slog.String("user_id", userID.String()),
		slog.String("format", string(format)),
		slog.Int64("imported", imported),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

// resolve turns a raw row into an insertable expense, or returns the reason
// the row is skipped. The error return is reserved for invariant failures.
func (s *Service) resolve(row parser.Row, lk *lookups) (Expense, string, error) {
	if col := row.Missing(); col != "" {
		return Expense{}, "Missing required field: " + col, nil
	}

	date, err := parser.ParseDate(row.Date)
	if err != nil {
		return Expense{}, "Invalid date format: " + row.Date, nil
	}

	cat, ok := lk.categories[strings.ToLower(row.Category)]
	if !ok {
		return Expense{}, notFound("Category", row.Category, lk.categoryNames), nil
	}

	method, ok := lk.methods[strings.ToLower(row.Payment)]
	if !ok {
		return Expense{}, notFound("Payment method", row.Payment, lk.methodNames), nil
	}

	amount, err := parser.ParseAmount(row.Amount)
	if err != nil {
		return Expense{}, "Invalid amount: " + row.Amount, nil
	}

	if utf8.RuneCountInString(row.Merchant) > maxMerchantLength {
		return Expense{}, fmt.Sprintf("Merchant too long: max %d characters", maxMerchantLength), nil
	}

	split, err := money.Cashback(amount, money.Method{Type: method.Type, Rate: method.Rate})
	if err != nil {
		s.logger.Error("cashback split rejected",
			slog.Bool("alert", true),
			slog.Int("row", row.Number),
			slog.Int64("amount", amount),
			slog.Any("error", err),
		)
		return Expense{}, "", err
	}

	return Expense{
		Date:            date,
		Merchant:        row.Merchant,
		CategoryID:      cat.ID,
		PaymentMethodID: method.ID,
		Split:           split,
	}, "", nil
}

func notFound(kind, name string, candidates []string) string {
	reason := fmt.Sprintf("%s not found: %s", kind, name)
	if hint := suggest(name, candidates); hint != "" {
		reason += fmt.Sprintf(" (did you mean %q?)", hint)
	}
	return reason
}

// suggest returns the closest known name: a subsequence match first, else
// the nearest name within a small edit distance.
func suggest(name string, candidates []string) string {
	if ranks := fuzzy.RankFindNormalizedFold(name, candidates); len(ranks) > 0 {
		slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int { return a.Distance - b.Distance })
		return ranks[0].Target
	}

	needle := strings.ToLower(name)
	limit := max(2, utf8.RuneCountInString(needle)/3)
	best, bestDist := "", limit+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(needle, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
