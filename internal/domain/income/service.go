// Package income records monthly household income.
package income

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
)

// UpsertInput sets the income of a month.
type UpsertInput struct {
	Month  string  `json:"month" validate:"required,yearmonth"`
	Amount *int64  `json:"amount" validate:"required,gte=0"`
	Source *string `json:"source" validate:"omitempty,max=255"`
}

// UpdateInput is a partial update of an income row.
type UpdateInput struct {
	Amount *int64                  `json:"amount"`
	Source common.Nullable[string] `json:"source"`
}

// Validate checks the provided fields.
func (in UpdateInput) Validate() error {
	verr := &common.ValidationError{}
	if in.Amount != nil && *in.Amount < 0 {
		verr.Add("amount", "must be >= 0")
	}
	if in.Source.Value != nil && len(*in.Source.Value) > 255 {
		verr.Add("source", "must be at most 255 characters")
	}
	return verr.OrNil()
}

// Service handles income business logic.
type Service struct {
	repo   IncomeRepository
	logger *slog.Logger
}

// NewService creates an income service.
func NewService(repo IncomeRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns the user's income, newest month first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Income, error) {
	return s.repo.List(ctx, userID)
}

// Upsert creates or replaces the income for a month. The bool is true when a
// new row was created.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, in UpsertInput) (*Income, bool, error) {
	if err := common.Validate(in); err != nil {
		return nil, false, err
	}

	month, err := billing.ParseMonth("month", in.Month)
	if err != nil {
		return nil, false, err
	}

	row, created, err := s.repo.Upsert(ctx, userID, month, *in.Amount, in.Source)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("income recorded",
		slog.String("user_id", userID.String()),
		slog.String("month", in.Month),
		slog.Bool("created", created),
	)
	return row, created, nil
}

// Update changes an existing income row.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*Income, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.Update(ctx, userID, id, in.Amount, in.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("income entry")
	}
	return row, err
}

// Delete removes an income row.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NotFound("income entry")
	}
	return err
}
