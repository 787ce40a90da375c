package ports

import (
	"context"
	"errors"
	"time"

	"travel-wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrVersionConflict is returned by WalletRepository.UpdateHoldings when the
// wallet row changed since it was read (optimistic concurrency guard).
var ErrVersionConflict = errors.New("wallet version conflict")

// TripRepository defines persistence operations for trips.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error)
	Update(ctx context.Context, trip *domain.Trip) error
	// Delete removes the trip; wallets and expenses cascade at the storage layer.
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByOwner(ctx context.Context, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error)
	GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error)
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Wallet, error)
	// UpdateHoldings persists a wallet's holdings, cached totals and bumped
	// version. It fails with ErrVersionConflict when expectedVersion no longer
	// matches the stored row.
	UpdateHoldings(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet, expectedVersion int64) error
}

// ExpenseRepository defines persistence operations for expense records.
type ExpenseRepository interface {
	Create(ctx context.Context, tx pgx.Tx, expense *domain.Expense) error
	GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.Expense, error)
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Expense, error)
	ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Expense, error)
}

// IdempotencyRepository defines persistence for purchase idempotency logs (DB backup).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
