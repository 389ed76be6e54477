// Package paymentmethod manages the ways a user pays and the cashback rate
// attached to credit cards.
package paymentmethod

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// CreateInput is the payload for a new payment method.
type CreateInput struct {
	Name               string  `json:"name" validate:"required,notblank,max=100"`
	Type               string  `json:"type" validate:"required,oneof='Cash' 'Credit Card' 'Debit Card' 'Bank Transfer'"`
	CashbackPercentage *string `json:"cashbackPercentage"`
	IsDefault          bool    `json:"isDefault"`
}

// UpdateInput is a partial update. The type cannot change.
type UpdateInput struct {
	Name               *string `json:"name"`
	CashbackPercentage *string `json:"cashbackPercentage"`
	IsDefault          *bool   `json:"isDefault"`
}

// Service handles payment method business logic.
type Service struct {
	repo   PaymentMethodRepository
	logger *slog.Logger
}

// NewService creates a payment method service.
func NewService(repo PaymentMethodRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns the user's methods, default first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	return s.repo.List(ctx, userID)
}

// Get returns a method owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*PaymentMethod, error) {
	p, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("payment method")
	}
	return p, err
}

// Create adds a method. Credit cards require a cashback percentage and every
// other type must not carry one.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*PaymentMethod, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return nil, err
	}

	m := NewMethod{Name: in.Name, Type: money.PaymentType(in.Type), IsDefault: in.IsDefault}
	switch {
	case m.Type == money.CreditCard && in.CashbackPercentage == nil:
		return nil, common.Invalid("cashbackPercentage", "is required for credit cards")
	case m.Type != money.CreditCard && in.CashbackPercentage != nil:
		return nil, common.Invalid("cashbackPercentage", "only credit cards can have a cashback percentage")
	case in.CashbackPercentage != nil:
		rate, err := money.ParseRate(*in.CashbackPercentage)
		if err != nil {
			return nil, common.Invalid("cashbackPercentage", err.Error())
		}
		m.Rate = decimal.NewNullDecimal(rate)
	}

	p, err := s.repo.Create(ctx, userID, m)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment method created",
		slog.String("user_id", userID.String()),
		slog.String("payment_method_id", p.ID.String()),
		slog.String("type", string(p.Type)),
	)
	return p, nil
}

// Update changes name, default flag and, for credit cards, the rate. A rate
// sent for any other type is ignored. Existing expenses keep the cashback
// computed when they were written.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*PaymentMethod, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := UpdateFields{IsDefault: in.IsDefault}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 100 {
			return nil, common.Invalid("name", "must be between 1 and 100 characters")
		}
		fields.Name = &name
	}

	if in.CashbackPercentage != nil {
		rate, err := money.ParseRate(*in.CashbackPercentage)
		if err != nil {
			return nil, common.Invalid("cashbackPercentage", err.Error())
		}
		if existing.Type == money.CreditCard {
			fields.Rate = &rate
		} else {
			s.logger.Debug("ignoring cashback percentage for non credit card",
				slog.String("payment_method_id", id.String()),
				slog.String("type", string(existing.Type)),
			)
		}
	}

	p, err := s.repo.Update(ctx, userID, id, fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("payment method")
	}
	return p, err
}

// Delete removes a method that no expense references.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	count, err := s.repo.CountExpenses(ctx, userID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflict("Cannot delete payment method with existing expenses", count)
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NotFound("payment method")
		}
		return err
	}
	return nil
}
