// Package category manages expense categories and their monthly budgets.
package category

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
)

// CreateInput is the payload for a new category.
type CreateInput struct {
	Name          string `json:"name" validate:"required,notblank,max=100"`
	MonthlyBudget *int64 `json:"monthlyBudget" validate:"omitempty,gte=0"`
}

// UpdateInput is a partial update. An explicit null monthlyBudget removes it.
type UpdateInput struct {
	Name          *string                `json:"name"`
	MonthlyBudget common.Nullable[int64] `json:"monthlyBudget"`
}

// Validate checks the provided fields.
func (in UpdateInput) Validate() error {
	verr := &common.ValidationError{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			verr.Add("name", "must not be blank")
		case len(name) > 100:
			verr.Add("name", "must be at most 100 characters")
		}
	}
	if in.MonthlyBudget.Value != nil && *in.MonthlyBudget.Value < 0 {
		verr.Add("monthlyBudget", "must be >= 0")
	}
	return verr.OrNil()
}

// DeleteResult reports what a delete did.
type DeleteResult struct {
	ReassignedExpenses int64 `json:"reassignedExpenses"`
}

// Service handles category business logic.
type Service struct {
	repo   CategoryRepository
	logger *slog.Logger
}

// NewService creates a category service.
func NewService(repo CategoryRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns all categories of the user ordered by name.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	return s.repo.List(ctx, userID)
}

// Get returns a category owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("category")
	}
	return c, err
}

// Create adds a category.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, userID, in.Name, in.MonthlyBudget)
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		slog.String("user_id", userID.String()),
		slog.String("category_id", c.ID.String()),
	)
	return c, nil
}

// Update changes name and/or budget.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}

	c, err := s.repo.Update(ctx, userID, id, UpdateFields{Name: in.Name, Budget: in.MonthlyBudget})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("category")
	}
	return c, err
}

// Delete removes a category. A category that still has expenses can only be
// deleted by moving them to reassignTo, another category of the same user.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID, reassignTo *uuid.UUID) (*DeleteResult, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	count, err := s.repo.CountExpenses(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var target *uuid.UUID
	if count > 0 {
		if reassignTo == nil {
			return nil, common.Conflict("Cannot delete category with existing expenses. Provide reassignTo.", count)
		}
		if *reassignTo == id {
			return nil, common.Invalid("reassignTo", "must be a different category")
		}
		if _, err := s.Get(ctx, userID, *reassignTo); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.Invalid("reassignTo", "reassignment category not found")
			}
			return nil, err
		}
		target = reassignTo
	}

	moved, err := s.repo.Delete(ctx, userID, id, target)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("category")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("category deleted",
		slog.String("user_id", userID.String()),
		slog.String("category_id", id.String()),
		slog.Int64("reassigned", moved),
	)
	return &DeleteResult{ReassignedExpenses: moved}, nil
}
