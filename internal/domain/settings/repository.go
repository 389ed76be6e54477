package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/db"
)

// Settings is a user's billing-cycle configuration.
type Settings struct {
	billing.Cycle
	UpdatedAt time.Time `json:"updatedAt"`
}

// SettingsRepository defines settings persistence.
type SettingsRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Settings, error)
	Upsert(ctx context.Context, userID uuid.UUID, cycle billing.Cycle) (*Settings, error)
}

// Repository is the Postgres implementation of SettingsRepository.
type Repository struct {
	db db.DBTX
}

var _ SettingsRepository = (*Repository)(nil)

// NewRepository creates a settings repository.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// Get returns the user's settings, creating the default row on first access.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*Settings, error) {
	query := `
		WITH inserted AS (
			INSERT INTO user_settings (user_id, billing_cycle_start_day, billing_cycle_end_day)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING billing_cycle_start_day, billing_cycle_end_day, updated_at
		)
		SELECT billing_cycle_start_day, billing_cycle_end_day, updated_at FROM inserted
		UNION ALL
		SELECT billing_cycle_start_day, billing_cycle_end_day, updated_at
		FROM user_settings
		WHERE user_id = $1
		LIMIT 1
	`

	var s Settings
	err := r.db.QueryRow(ctx, query, userID, billing.DefaultCycle.StartDay, billing.DefaultCycle.EndDay).
		Scan(&s.StartDay, &s.EndDay, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Upsert stores the cycle, creating the row if needed.
func (r *Repository) Upsert(ctx context.Context, userID uuid.UUID, cycle billing.Cycle) (*Settings, error) {
	query := `
		INSERT INTO user_settings (user_id, billing_cycle_start_day, billing_cycle_end_day)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			billing_cycle_start_day = EXCLUDED.billing_cycle_start_day,
			billing_cycle_end_day = EXCLUDED.billing_cycle_end_day,
			updated_at = now()
		RETURNING billing_cycle_start_day, billing_cycle_end_day, updated_at
	`

	var s Settings
	err := r.db.QueryRow(ctx, query, userID, cycle.StartDay, cycle.EndDay).
		Scan(&s.StartDay, &s.EndDay, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert settings: %w", common.FromPgError(err, "settings"))
	}
	return &s, nil
}
