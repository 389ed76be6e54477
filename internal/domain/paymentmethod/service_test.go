package paymentmethod

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/pkg/money"
)

// MockPaymentMethodRepository records calls and serves a single method.
type MockPaymentMethodRepository struct {
	existing *PaymentMethod
	count    int
	created  *NewMethod
	updated  *UpdateFields
	deleted  bool
}

func (m *MockPaymentMethodRepository) List(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	return nil, nil
}

func (m *MockPaymentMethodRepository) Get(ctx context.Context, userID, id uuid.UUID) (*PaymentMethod, error) {
	if m.existing == nil || m.existing.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.existing, nil
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, userID uuid.UUID, nm NewMethod) (*PaymentMethod, error) {
	m.created = &nm
	p := &PaymentMethod{ID: uuid.New(), Name: nm.Name, Type: nm.Type, Rate: nm.Rate, IsDefault: nm.IsDefault}
	p.fill()
	return p, nil
}

func (m *MockPaymentMethodRepository) Update(ctx context.Context, userID, id uuid.UUID, fields UpdateFields) (*PaymentMethod, error) {
	m.updated = &fields
	return m.existing, nil
}

func (m *MockPaymentMethodRepository) CountExpenses(ctx context.Context, userID, id uuid.UUID) (int, error) {
	return m.count, nil
}

func (m *MockPaymentMethodRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.deleted = true
	return nil
}

func newTestService(repo PaymentMethodRepository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	tests := []struct {
		name     string
		input    CreateInput
		wantRate string
		wantErr  string
	}{
		{"credit card with rate", CreateInput{Name: "Shinhan", Type: "Credit Card", CashbackPercentage: strPtr("1.20")}, "1.20", ""},
		{"credit card max rate", CreateInput{Name: "Max", Type: "Credit Card", CashbackPercentage: strPtr("10")}, "10.00", ""},
		{"cash without rate", CreateInput{Name: "Cash", Type: "Cash"}, "", ""},
		{"credit card missing rate", CreateInput{Name: "Card", Type: "Credit Card"}, "", "cashbackPercentage"},
		{"debit card with rate", CreateInput{Name: "Debit", Type: "Debit Card", CashbackPercentage: strPtr("1")}, "", "cashbackPercentage"},
		{"rate above ten", CreateInput{Name: "Card", Type: "Credit Card", CashbackPercentage: strPtr("10.5")}, "", "cashbackPercentage"},
		{"rate with three decimals", CreateInput{Name: "Card", Type: "Credit Card", CashbackPercentage: strPtr("1.125")}, "", "cashbackPercentage"},
		{"unknown type", CreateInput{Name: "Crypto", Type: "Crypto"}, "", "type"},
		{"blank name", CreateInput{Name: " ", Type: "Cash"}, "", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockPaymentMethodRepository{}
			p, err := newTestService(repo).Create(context.Background(), uuid.New(), tt.input)
			if tt.wantErr != "" {
				var verr *common.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, verr.Fields[0].Field)
				assert.Nil(t, repo.created)
				return
			}
			require.NoError(t, err)
			if tt.wantRate == "" {
				assert.Nil(t, p.CashbackPercentage)
				assert.False(t, p.Rate.Valid)
			} else {
				require.NotNil(t, p.CashbackPercentage)
				assert.Equal(t, tt.wantRate, *p.CashbackPercentage)
			}
		})
	}
}

func TestService_UpdateRateOnlyForCreditCards(t *testing.T) {
	id := uuid.New()

	t.Run("credit card rate is applied", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{existing: &PaymentMethod{ID: id, Type: money.CreditCard}}
		_, err := newTestService(repo).Update(context.Background(), uuid.New(), id, UpdateInput{CashbackPercentage: strPtr("2.5")})
		require.NoError(t, err)
		require.NotNil(t, repo.updated.Rate)
		assert.True(t, decimal.RequireFromString("2.5").Equal(*repo.updated.Rate))
	})

	t.Run("debit card rate is ignored", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{existing: &PaymentMethod{ID: id, Type: money.DebitCard}}
		_, err := newTestService(repo).Update(context.Background(), uuid.New(), id, UpdateInput{CashbackPercentage: strPtr("2.5")})
		require.NoError(t, err)
		assert.Nil(t, repo.updated.Rate)
	})

	t.Run("invalid rate is rejected", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{existing: &PaymentMethod{ID: id, Type: money.CreditCard}}
		_, err := newTestService(repo).Update(context.Background(), uuid.New(), id, UpdateInput{CashbackPercentage: strPtr("11")})
		assert.True(t, common.IsValidation(err))
		assert.Nil(t, repo.updated)
	})

	t.Run("missing method", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{}
		_, err := newTestService(repo).Update(context.Background(), uuid.New(), id, UpdateInput{})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("blocked by expenses", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{existing: &PaymentMethod{ID: id, Type: money.Cash}, count: 3}
		err := newTestService(repo).Delete(context.Background(), uuid.New(), id)
		var conflict *common.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 3, conflict.ExpenseCount)
		assert.False(t, repo.deleted)
	})

	t.Run("unused method is deleted", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{existing: &PaymentMethod{ID: id, Type: money.Cash}}
		require.NoError(t, newTestService(repo).Delete(context.Background(), uuid.New(), id))
		assert.True(t, repo.deleted)
	})

	t.Run("not owned", func(t *testing.T) {
		repo := &MockPaymentMethodRepository{}
		err := newTestService(repo).Delete(context.Background(), uuid.New(), id)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
