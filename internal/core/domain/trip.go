package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trip groups the wallets and expenses of one journey. The KRW exchange rate
// is snapshotted when the trip is created and reused for every conversion
// during the trip's lifetime; it is never re-fetched mid-transaction.
type Trip struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Name              string          `json:"name"`
	CountryCode       string          `json:"country_code"`
	CurrencyCode      string          `json:"currency_code"`
	ExchangeRateToKRW decimal.Decimal `json:"exchange_rate_to_krw"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ConvertToKRW applies the trip's frozen rate to an amount in trip currency.
func (t *Trip) ConvertToKRW(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(t.ExchangeRateToKRW).Round(0)
}
