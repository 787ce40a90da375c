package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseSource distinguishes how an expense record came to exist.
type ExpenseSource string

const (
	ExpenseSourceManual  ExpenseSource = "MANUAL"
	ExpenseSourceScan    ExpenseSource = "SCAN"
	ExpenseSourcePlanner ExpenseSource = "PLANNER"
)

// Expense is an immutable-after-creation record of money spent on a trip.
// Expenses are only ever created or removed via trip deletion, never mutated.
type Expense struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TripID       uuid.UUID       `json:"trip_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	Description  string          `json:"description,omitempty"`
	Source       ExpenseSource   `json:"source"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsManual reports whether the expense was keyed in by hand rather than
// derived from a scan or the payment planner.
func (e *Expense) IsManual() bool {
	return e.Source == ExpenseSourceManual
}
