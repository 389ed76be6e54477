package category

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	now := time.Now()
	budget := int64(500000)

	mock.ExpectQuery(`(?s)SELECT c.id, c.name.*LEFT JOIN expenses e.*ORDER BY c.name ASC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "monthly_budget", "is_default", "created_at", "updated_at", "expense_count"}).
			AddRow(uuid.New(), "Baby", (*int64)(nil), true, now, now, 0).
			AddRow(uuid.New(), "Food", &budget, true, now, now, 12))

	categories, err := NewRepository(mock).List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Nil(t, categories[0].MonthlyBudget)
	assert.Equal(t, 12, categories[1].ExpenseCount)
	assert.Equal(t, int64(500000), *categories[1].MonthlyBudget)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteWithReassignment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, id, target := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE expenses SET category_id = \$1`).
		WithArgs(target, id, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))
	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	moved, err := NewRepository(mock).Delete(context.Background(), userID, id, &target)
	require.NoError(t, err)
	assert.Equal(t, int64(4), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteMissingRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, id := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM categories`).
		WithArgs(id, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	_, err = NewRepository(mock).Delete(context.Background(), userID, id, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, id := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT id, name, monthly_budget`).
		WithArgs(id, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "monthly_budget", "is_default", "created_at", "updated_at"}))

	_, err = NewRepository(mock).Get(context.Background(), userID, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
