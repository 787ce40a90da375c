package postgres

import (
	"context"
	"testing"
	"time"

	"travel-wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredExpense(userID uuid.UUID) *domain.Expense {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Expense{
		ID:           uuid.New(),
		UserID:       userID,
		TripID:       uuid.New(),
		Amount:       decimal.RequireFromString("7.30"),
		CurrencyCode: "USD",
		Description:  "street food",
		Source:       domain.ExpenseSourcePlanner,
		Date:         now,
		CreatedAt:    now,
	}
}

func expenseTestColumns() []string {
	return []string{"id", "user_id", "trip_id", "amount", "currency_code", "description", "source", "date", "created_at"}
}

func expenseRow(e *domain.Expense) *pgxmock.Rows {
	return pgxmock.NewRows(expenseTestColumns()).AddRow(
		e.ID, e.UserID, e.TripID, e.Amount, e.CurrencyCode,
		e.Description, e.Source, e.Date, e.CreatedAt,
	)
}

func TestExpenseRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExpenseRepo(mock)
	e := newStoredExpense(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO expenses").
		WithArgs(e.ID, e.UserID, e.TripID, e.Amount, e.CurrencyCode,
			e.Description, e.Source, e.Date, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExpenseRepo(mock)
	e := newStoredExpense(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM expenses WHERE id").
		WithArgs(e.ID, e.UserID).
		WillReturnRows(expenseRow(e))

	result, err := repo.GetByID(context.Background(), e.UserID, e.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, e.ID, result.ID)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("7.30")))
	assert.Equal(t, domain.ExpenseSourcePlanner, result.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepo_ListByTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExpenseRepo(mock)
	e := newStoredExpense(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM expenses WHERE user_id .+ trip_id .+ ORDER BY date DESC").
		WithArgs(e.UserID, e.TripID).
		WillReturnRows(expenseRow(e))

	expenses, err := repo.ListByTrip(context.Background(), e.UserID, e.TripID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, e.ID, expenses[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepo_ListByDate_BoundsToCalendarDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExpenseRepo(mock)
	e := newStoredExpense(uuid.New())
	date := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	dayStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM expenses WHERE user_id .+ date").
		WithArgs(e.UserID, dayStart, dayStart.AddDate(0, 0, 1)).
		WillReturnRows(expenseRow(e))

	expenses, err := repo.ListByDate(context.Background(), e.UserID, date)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
