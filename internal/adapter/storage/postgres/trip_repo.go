package postgres

import (
	"context"
	"errors"
	"fmt"

	"travel-wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TripRepo implements ports.TripRepository.
type TripRepo struct {
	pool Pool
}

// NewTripRepo creates a new TripRepo.
func NewTripRepo(pool Pool) *TripRepo {
	return &TripRepo{pool: pool}
}

const tripColumns = `id, user_id, name, country_code, currency_code, exchange_rate_to_krw, start_date, end_date, created_at, updated_at`

// Create inserts a new trip into the database.
func (r *TripRepo) Create(ctx context.Context, t *domain.Trip) error {
	query := `INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Name, t.CountryCode, t.CurrencyCode,
		t.ExchangeRateToKRW, t.StartDate, t.EndDate,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// GetByID fetches a trip owned by the user.
func (r *TripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND user_id = $2`

	t := &domain.Trip{}
	err := r.pool.QueryRow(ctx, query, tripID, userID).Scan(
		&t.ID, &t.UserID, &t.Name, &t.CountryCode, &t.CurrencyCode,
		&t.ExchangeRateToKRW, &t.StartDate, &t.EndDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trip by id: %w", err)
	}
	return t, nil
}

// Update updates a trip's mutable fields. Currency and the rate snapshot are
// immutable after creation and deliberately absent from the SET list.
func (r *TripRepo) Update(ctx context.Context, t *domain.Trip) error {
	query := `UPDATE trips
		SET name = $1, country_code = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6`

	tag, err := r.pool.Exec(ctx, query,
		t.Name, t.CountryCode, t.StartDate, t.EndDate, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip not found: %s", t.ID)
	}
	return nil
}

// Delete removes a trip. Wallets and expenses cascade via foreign keys.
func (r *TripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	query := `DELETE FROM trips WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, tripID, userID)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip not found: %s", tripID)
	}
	return nil
}
