package income

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_UpsertSingleStatement(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO income.*ON CONFLICT \(user_id, month\) DO UPDATE.*COALESCE\(EXCLUDED.source, income.source\).*xmax = 0`).
		WithArgs(userID, month, int64(3_500_000), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "month", "amount", "source", "created_at", "updated_at", "inserted"}).
			AddRow(uuid.New(), month, int64(3_500_000), (*string)(nil), now, now, false))

	row, inserted, err := NewRepository(mock).Upsert(context.Background(), userID, month, 3_500_000, nil)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "2024-05-01", row.Month.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	now := time.Now()
	source := "Salary"

	mock.ExpectQuery(`(?s)FROM income.*ORDER BY month DESC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "month", "amount", "source", "created_at", "updated_at"}).
			AddRow(uuid.New(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), int64(100), &source, now, now).
			AddRow(uuid.New(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), int64(90), (*string)(nil), now, now))

	rows, err := NewRepository(mock).List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-06-01", rows[0].Month.String())
	assert.Nil(t, rows[1].Source)
}
