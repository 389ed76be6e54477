// Package settings manages the per-user billing cycle used to resolve
// dashboard periods.
package settings

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
)

// UpdateInput is a partial settings update.
type UpdateInput struct {
	StartDay *int `json:"billingCycleStartDay"`
	EndDay   *int `json:"billingCycleEndDay"`
}

// Service handles settings business logic.
type Service struct {
	repo   SettingsRepository
	logger *slog.Logger
}

// NewService creates a settings service.
func NewService(repo SettingsRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the user's settings.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Settings, error) {
	return s.repo.Get(ctx, userID)
}

// Cycle returns only the billing cycle.
func (s *Service) Cycle(ctx context.Context, userID uuid.UUID) (billing.Cycle, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return billing.Cycle{}, err
	}
	return settings.Cycle, nil
}

// Update merges the provided fields over the current settings.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (*Settings, error) {
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cycle := current.Cycle
	if in.StartDay != nil {
		cycle.StartDay = *in.StartDay
	}
	if in.EndDay != nil {
		cycle.EndDay = *in.EndDay
	}
	if err := cycle.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Upsert(ctx, userID, cycle)
	if err != nil {
		return nil, err
	}

	s.logger.Info("billing cycle updated",
		slog.String("user_id", userID.String()),
		slog.Int("start_day", cycle.StartDay),
		slog.Int("end_day", cycle.EndDay),
	)
	return updated, nil
}
