package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExpenseRepo implements ports.ExpenseRepository.
type ExpenseRepo struct {
	pool Pool
}

// NewExpenseRepo creates a new ExpenseRepo.
func NewExpenseRepo(pool Pool) *ExpenseRepo {
	return &ExpenseRepo{pool: pool}
}

const expenseColumns = `id, user_id, trip_id, amount, currency_code, description, source, date, created_at`

// Create inserts a new expense within a database transaction. Expense rows
// are immutable after insert.
func (r *ExpenseRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.Expense) error {
	query := `INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.UserID, e.TripID, e.Amount, e.CurrencyCode,
		e.Description, e.Source, e.Date, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID fetches an expense owned by the user.
func (r *ExpenseRepo) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	return scanExpense(r.pool.QueryRow(ctx, query, expenseID, userID))
}

// ListByTrip fetches a trip's expenses, newest first.
func (r *ExpenseRepo) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE user_id = $1 AND trip_id = $2 ORDER BY date DESC`
	return r.list(ctx, query, userID, tripID)
}

// ListByDate fetches the user's expenses for one calendar day across trips.
func (r *ExpenseRepo) ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date < $3 ORDER BY date DESC`

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return r.list(ctx, query, userID, dayStart, dayStart.AddDate(0, 0, 1))
}

func (r *ExpenseRepo) list(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}
	return expenses, nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	e := &domain.Expense{}
	err := row.Scan(
		&e.ID, &e.UserID, &e.TripID, &e.Amount, &e.CurrencyCode,
		&e.Description, &e.Source, &e.Date, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	return e, nil
}
