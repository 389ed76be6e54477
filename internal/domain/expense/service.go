// Package expense records expenses. Cashback and net amounts are computed by
// the server from the payment method on every write; clients never supply them.
package expense

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// DefaultLimit is the page size when none is requested.
const DefaultLimit = 50

// CreateInput is the body of a new expense.
type CreateInput struct {
	Date            string `json:"date" validate:"required,isodate"`
	Merchant        string `json:"merchant" validate:"required,notblank,max=255"`
	Amount          *int64 `json:"amount" validate:"required,gte=0,lte=100000000"`
	CategoryID      string `json:"categoryId" validate:"required,uuid"`
	PaymentMethodID string `json:"paymentMethodId" validate:"required,uuid"`
}

// UpdateInput is a partial update of an expense.
type UpdateInput struct {
	Date            *string `json:"date" validate:"omitempty,isodate"`
	Merchant        *string `json:"merchant" validate:"omitempty,notblank,max=255"`
	Amount          *int64  `json:"amount" validate:"omitempty,gte=0,lte=100000000"`
	CategoryID      *string `json:"categoryId" validate:"omitempty,uuid"`
	PaymentMethodID *string `json:"paymentMethodId" validate:"omitempty,uuid"`
}

// ListQuery holds the raw list query parameters.
type ListQuery struct {
	CategoryID      string `form:"categoryId" json:"categoryId" validate:"omitempty,uuid"`
	PaymentMethodID string `form:"paymentMethodId" json:"paymentMethodId" validate:"omitempty,uuid"`
	StartDate       string `form:"startDate" json:"startDate" validate:"omitempty,isodate"`
	EndDate         string `form:"endDate" json:"endDate" validate:"omitempty,isodate"`
	SortBy          string `form:"sortBy" json:"sortBy" validate:"omitempty,oneof=date merchant category payment amount"`
	SortOrder       string `form:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page            *int   `form:"page" json:"page" validate:"omitempty,gte=1"`
	Limit           *int   `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of expenses.
type Page struct {
	Expenses   []Expense  `json:"expenses"`
	Pagination Pagination `json:"pagination"`
}

// BulkDeleteInput lists the expenses to remove.
type BulkDeleteInput struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

// Service handles expense business logic.
type Service struct {
	repo   ExpenseRepository
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService creates an expense service.
func NewService(repo ExpenseRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("family-ledger/expense"),
	}
}

func (s *Service) start(ctx context.Context, name string, userID uuid.UUID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("user.id", userID.String())))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// split is the single place an expense's cashback is computed.
func (s *Service) split(amount int64, method money.Method) (money.Split, error) {
	sp, err := money.Cashback(amount, method)
	if err != nil {
		s.logger.Error("cashback split rejected",
			slog.Bool("alert", true),
			slog.Int64("amount", amount),
			slog.String("payment_type", string(method.Type)),
			slog.Any("error", err),
		)
		return money.Split{}, err
	}
	return sp, nil
}

// Create validates the input and stores a new expense.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (e *Expense, err error) {
	ctx, span := s.start(ctx, "expense.Create", userID)
	defer func() { finish(span, err) }()

	if err := common.Validate(in); err != nil {
		return nil, err
	}
	date, err := billing.ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	e, err = s.repo.Create(ctx, userID, NewExpense{
		Date:            date,
		Merchant:        strings.TrimSpace(in.Merchant),
		Amount:          *in.Amount,
		CategoryID:      uuid.MustParse(in.CategoryID),
		PaymentMethodID: uuid.MustParse(in.PaymentMethodID),
	}, s.split)
	if err != nil {
		return nil, referenceError(err)
	}

	s.logger.Info("expense created",
		slog.String("user_id", userID.String()),
		slog.String("expense_id", e.ID.String()),
		slog.String("amount", money.Won(e.Amount).Display()),
		slog.Int64("cashback", e.CashbackAmount),
	)
	return e, nil
}

// Update applies a partial update and recomputes cashback from the payment
// method the expense ends up with.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (e *Expense, err error) {
	ctx, span := s.start(ctx, "expense.Update", userID)
	defer func() { finish(span, err) }()

	p, err := in.patch()
	if err != nil {
		return nil, err
	}

	e, err = s.repo.Update(ctx, userID, id, p, s.split)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("expense")
	}
	if err != nil {
		return nil, referenceError(err)
	}

	s.logger.Info("expense updated",
		slog.String("user_id", userID.String()),
		slog.String("expense_id", id.String()),
		slog.Int64("amount", e.Amount),
		slog.Int64("cashback", e.CashbackAmount),
	)
	return e, nil
}

func (in UpdateInput) patch() (Patch, error) {
	if err := common.Validate(in); err != nil {
		return Patch{}, err
	}

	var p Patch
	if in.Date != nil {
		d, err := billing.ParseDate("date", *in.Date)
		if err != nil {
			return Patch{}, err
		}
		p.Date = &d
	}
	if in.Merchant != nil {
		m := strings.TrimSpace(*in.Merchant)
		p.Merchant = &m
	}
	p.Amount = in.Amount
	if in.CategoryID != nil {
		id := uuid.MustParse(*in.CategoryID)
		p.CategoryID = &id
	}
	if in.PaymentMethodID != nil {
		id := uuid.MustParse(*in.PaymentMethodID)
		p.PaymentMethodID = &id
	}
	return p, nil
}

// referenceError turns unknown references into field validation errors.
func referenceError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownCategory):
		return common.Invalid("categoryId", "invalid category")
	case errors.Is(err, ErrUnknownPaymentMethod):
		return common.Invalid("paymentMethodId", "invalid payment method")
	}
	return err
}

// Get returns one expense.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Expense, error) {
	e, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("expense")
	}
	return e, err
}

// Filter validates q and converts it to a repository filter.
func (q ListQuery) Filter() (ListFilter, Pagination, error) {
	if err := common.Validate(q); err != nil {
		return ListFilter{}, Pagination{}, err
	}

	page, limit := 1, DefaultLimit
	if q.Page != nil {
		page = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}

	f := ListFilter{
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if f.SortBy == "" {
		f.SortBy = "date"
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	if q.CategoryID != "" {
		id := uuid.MustParse(q.CategoryID)
		f.CategoryID = &id
	}
	if q.PaymentMethodID != "" {
		id := uuid.MustParse(q.PaymentMethodID)
		f.PaymentMethodID = &id
	}
	if q.StartDate != "" {
		d, err := billing.ParseDate("startDate", q.StartDate)
		if err != nil {
			return ListFilter{}, Pagination{}, err
		}
		f.StartDate = &d
	}
	if q.EndDate != "" {
		d, err := billing.ParseDate("endDate", q.EndDate)
		if err != nil {
			return ListFilter{}, Pagination{}, err
		}
		f.EndDate = &d
	}

	return f, Pagination{Page: page, Limit: limit}, nil
}

// List returns one page of the user's expenses.
func (s *Service) List(ctx context.Context, userID uuid.UUID, q ListQuery) (p *Page, err error) {
	ctx, span := s.start(ctx, "expense.List", userID)
	defer func() { finish(span, err) }()

	f, pg, err := q.Filter()
	if err != nil {
		return nil, err
	}

	rows, total, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	pg.Total = total
	pg.TotalPages = (total + pg.Limit - 1) / pg.Limit
	return &Page{Expenses: rows, Pagination: pg}, nil
}

// Delete removes one expense.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NotFound("expense")
	}
	if err == nil {
		s.logger.Info("expense deleted",
			slog.String("user_id", userID.String()),
			slog.String("expense_id", id.String()),
		)
	}
	return err
}

// BulkDelete removes up to 100 expenses and reports how many of
// them the user actually owned.
func (s *Service) BulkDelete(ctx context.Context, userID uuid.UUID, in BulkDeleteInput) (n int64, err error) {
	ctx, span := s.start(ctx, "expense.BulkDelete", userID)
	defer func() { finish(span, err) }()

	if err := common.Validate(in); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(in.IDs))
	for _, raw := range in.IDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	n, err = s.repo.BulkDelete(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	s.logger.Info("expenses bulk deleted",
		slog.String("user_id", userID.String()),
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", n),
	)
	return n, nil
}
