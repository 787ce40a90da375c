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

func newStoredTrip(userID uuid.UUID) *domain.Trip {
	return &domain.Trip{
		ID:                uuid.New(),
		UserID:            userID,
		Name:              "Osaka",
		CountryCode:       "JP",
		CurrencyCode:      "JPY",
		ExchangeRateToKRW: decimal.NewFromInt(9),
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
}

func tripTestColumns() []string {
	return []string{"id", "user_id", "name", "country_code", "currency_code", "exchange_rate_to_krw", "start_date", "end_date", "created_at", "updated_at"}
}

func tripRow(tr *domain.Trip) *pgxmock.Rows {
	return pgxmock.NewRows(tripTestColumns()).AddRow(
		tr.ID, tr.UserID, tr.Name, tr.CountryCode, tr.CurrencyCode,
		tr.ExchangeRateToKRW, tr.StartDate, tr.EndDate, tr.CreatedAt, tr.UpdatedAt,
	)
}

func TestTripRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTripRepo(mock)
	tr := newStoredTrip(uuid.New())

	mock.ExpectExec("INSERT INTO trips").
		WithArgs(tr.ID, tr.UserID, tr.Name, tr.CountryCode, tr.CurrencyCode,
			tr.ExchangeRateToKRW, tr.StartDate, tr.EndDate, tr.CreatedAt, tr.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), tr)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTripRepo(mock)
	tr := newStoredTrip(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM trips WHERE id").
		WithArgs(tr.ID, tr.UserID).
		WillReturnRows(tripRow(tr))

	result, err := repo.GetByID(context.Background(), tr.UserID, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tr.ID, result.ID)
	assert.True(t, result.ExchangeRateToKRW.Equal(decimal.NewFromInt(9)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepo_GetByID_WrongOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTripRepo(mock)
	tripID := uuid.New()
	otherUser := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM trips WHERE id").
		WithArgs(tripID, otherUser).
		WillReturnRows(pgxmock.NewRows(tripTestColumns()))

	result, err := repo.GetByID(context.Background(), otherUser, tripID)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTripRepo(mock)
	tr := newStoredTrip(uuid.New())
	tr.Name = "Osaka 2026"

	mock.ExpectExec("UPDATE trips").
		WithArgs(tr.Name, tr.CountryCode, tr.StartDate, tr.EndDate, tr.ID, tr.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.Update(context.Background(), tr)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepo_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTripRepo(mock)
	userID, tripID := uuid.New(), uuid.New()

	mock.ExpectExec("DELETE FROM trips").
		WithArgs(tripID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), userID, tripID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trip not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
