package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet invariant violations. Services map these to structured API errors.
var (
	ErrNegativeQuantity         = errors.New("quantity must be a positive integer")
	ErrInsufficientDenomination = errors.New("insufficient denomination count")
	ErrInvalidDenomination      = errors.New("denomination not in currency ladder")
)

// DenominationDelta is one denomination/quantity pair in a bulk operation.
type DenominationDelta struct {
	Denomination int64 `json:"denomination"` // minor units
	Quantity     int64 `json:"quantity"`
}

// Wallet is the cash holding for one user/trip/currency: a count of physical
// bills and coins per denomination. All amounts are integer minor units.
// Credit and Debit are the only legal mutation paths; both recompute
// TotalAmount exactly once so the cached total can never drift from the
// sum of denomination×quantity.
type Wallet struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	TripID            uuid.UUID       `json:"trip_id"`
	CurrencyCode      string          `json:"currency_code"`
	CountryCode       string          `json:"country_code"`
	Holdings          map[int64]int64 `json:"holdings"` // denomination (minor units) -> quantity
	TotalAmount       int64           `json:"total_amount"`
	ConvertedTotalKRW decimal.Decimal `json:"converted_total_krw"` // snapshot at save time
	Version           int64           `json:"-"`                   // optimistic concurrency guard
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewWallet creates an empty wallet for a user/trip/currency tuple.
func NewWallet(userID, tripID uuid.UUID, profile *CurrencyProfile) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:                uuid.New(),
		UserID:            userID,
		TripID:            tripID,
		CurrencyCode:      profile.Code,
		CountryCode:       profile.CountryCode,
		Holdings:          make(map[int64]int64),
		ConvertedTotalKRW: decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Balance returns the sum of denomination×quantity in minor units.
func (w *Wallet) Balance() int64 {
	var total int64
	for denom, qty := range w.Holdings {
		total += denom * qty
	}
	return total
}

// Credit increases the held count for a denomination, creating the entry if
// absent. Callers must validate the denomination against the currency ladder
// before crediting untrusted input (e.g. scanned counts).
func (w *Wallet) Credit(denomination, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: credit %d", ErrNegativeQuantity, quantity)
	}
	if denomination <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDenomination, denomination)
	}
	w.Holdings[denomination] += quantity
	w.recompute()
	return nil
}

// Debit decreases the held count for a denomination. It fails without
// touching the wallet when the held count is below the requested quantity.
func (w *Wallet) Debit(denomination, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: debit %d", ErrNegativeQuantity, quantity)
	}
	held := w.Holdings[denomination]
	if held < quantity {
		return fmt.Errorf("%w: have %d of %d, want %d", ErrInsufficientDenomination, held, denomination, quantity)
	}
	if held == quantity {
		delete(w.Holdings, denomination)
	} else {
		w.Holdings[denomination] = held - quantity
	}
	w.recompute()
	return nil
}

// ApplyDeductions debits several denominations all-or-nothing: every delta is
// validated against current holdings before any is applied, so a failure
// leaves the wallet untouched. Deltas for the same denomination accumulate.
func (w *Wallet) ApplyDeductions(deltas []DenominationDelta) error {
	need := make(map[int64]int64, len(deltas))
	for _, d := range deltas {
		if d.Quantity <= 0 {
			return fmt.Errorf("%w: debit %d", ErrNegativeQuantity, d.Quantity)
		}
		need[d.Denomination] += d.Quantity
	}
	for denom, qty := range need {
		if w.Holdings[denom] < qty {
			return fmt.Errorf("%w: have %d of %d, want %d", ErrInsufficientDenomination, w.Holdings[denom], denom, qty)
		}
	}
	for denom, qty := range need {
		if w.Holdings[denom] == qty {
			delete(w.Holdings, denom)
		} else {
			w.Holdings[denom] -= qty
		}
	}
	w.recompute()
	return nil
}

// Snapshot returns a copy of the holdings for the planner: a consistent
// point-in-time view that later mutations cannot leak into.
func (w *Wallet) Snapshot() map[int64]int64 {
	snap := make(map[int64]int64, len(w.Holdings))
	for denom, qty := range w.Holdings {
		snap[denom] = qty
	}
	return snap
}

func (w *Wallet) recompute() {
	w.TotalAmount = w.Balance()
	w.UpdatedAt = time.Now().UTC()
}
