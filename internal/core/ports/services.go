package ports

import (
	"context"
	"time"

	"travel-wallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TokenService handles JWT token operations. Tokens are issued by the
// external accounts service; this backend only validates them (Generate
// exists for development and tests).
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}

// RateProvider fetches current KRW exchange rates from an external source.
// The HTTP integration is out of scope; a static fallback provider ships
// with the backend.
type RateProvider interface {
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// RateCache is the Redis-layer cache for exchange rates.
type RateCache interface {
	Get(ctx context.Context) (map[string]decimal.Decimal, error) // nil, nil on miss
	Set(ctx context.Context, rates map[string]decimal.Decimal, ttl time.Duration) error
}

// IdempotencyCache is the Redis-layer idempotency check for purchase commits.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached receipt JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// PurchaseService runs the payment recommendation flow: quoting plans under
// every strategy and committing a caller-selected plan against the wallet.
type PurchaseService interface {
	Quote(ctx context.Context, req QuoteRequest) (*PurchaseQuote, error)
	Commit(ctx context.Context, req CommitRequest) (*PurchaseReceipt, error)
}

// QuoteRequest holds validated input for a payment recommendation.
type QuoteRequest struct {
	UserID       uuid.UUID
	TripID       uuid.UUID
	CurrencyCode string
	Price        decimal.Decimal
}

// StrategyOutcome reports one strategy's planning result. An infeasible
// strategy is expected data, not an error: the caller sees both outcomes
// side by side.
type StrategyOutcome struct {
	Strategy  domain.Strategy     `json:"strategy"`
	Feasible  bool                `json:"feasible"`
	Plan      *domain.PaymentPlan `json:"plan,omitempty"`
	Change    *domain.ChangePlan  `json:"change,omitempty"`
	Shortfall int64               `json:"shortfall,omitempty"` // minor units the greedy walk could not cover
}

// WalletLine is one denomination row in a quote's wallet detail.
type WalletLine struct {
	Denomination int64 `json:"denomination"`
	Quantity     int64 `json:"quantity"`
	Subtotal     int64 `json:"subtotal"`
}

// PurchaseQuote is the full recommendation payload for one price/wallet pair.
// All amounts are minor units of the quoted currency.
type PurchaseQuote struct {
	CurrencyCode   string            `json:"currency_code"`
	Symbol         string            `json:"symbol"`
	DecimalPlaces  int32             `json:"decimal_places"`
	Price          int64             `json:"price"`
	WalletTotal    int64             `json:"wallet_total"`
	WalletTotalKRW decimal.Decimal   `json:"wallet_total_krw"`
	PriceKRW       decimal.Decimal   `json:"price_krw"`
	Outcomes       []StrategyOutcome `json:"outcomes"`
	WalletLines    []WalletLine      `json:"wallet_lines"`
}

// CommitRequest holds the caller-selected plan to apply against the wallet.
type CommitRequest struct {
	UserID       uuid.UUID
	TripID       uuid.UUID
	CurrencyCode string
	ReferenceID  string
	Price        decimal.Decimal
	Used         []domain.DenominationDelta
	Description  string
}

// PurchaseReceipt reconciles a committed purchase: wallet totals before and
// after, what was handed over, and the expense record created.
type PurchaseReceipt struct {
	ExpenseID      uuid.UUID `json:"expense_id"`
	CurrencyCode   string    `json:"currency_code"`
	Price          int64     `json:"price"`
	TotalPaid      int64     `json:"total_paid"`
	Change         int64     `json:"change"`
	BeforeTotal    int64     `json:"before_total"`
	AfterTotal     int64     `json:"after_total"`
	DeductedAmount int64     `json:"deducted_amount"`
	CommittedAt    time.Time `json:"committed_at"`
}

// WalletService manages cash deposits and deductions.
type WalletService interface {
	Summary(ctx context.Context, userID, tripID uuid.UUID, currency string) (*WalletSummary, error)
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]WalletSummary, error)
	IngestScan(ctx context.Context, req ScanIngestRequest) (*WalletSummary, error)
	CreditDenomination(ctx context.Context, userID, walletID uuid.UUID, denomination, quantity int64) (*WalletSummary, error)
	Deduct(ctx context.Context, userID, tripID uuid.UUID, currency string, deductions []domain.DenominationDelta) (*DeductionReport, error)
}

// ScanIngestRequest holds denomination counts extracted from a money scan.
// Counts are untrusted OCR output and are validated against the ladder.
type ScanIngestRequest struct {
	UserID       uuid.UUID
	TripID       uuid.UUID
	CurrencyCode string
	Counts       []domain.DenominationDelta
}

// WalletSummary pairs a wallet with display data and its KRW conversion.
type WalletSummary struct {
	Wallet       *domain.Wallet  `json:"wallet"`
	Symbol       string          `json:"symbol"`
	TotalDecimal decimal.Decimal `json:"total_decimal"`
	TotalKRW     decimal.Decimal `json:"total_krw"`
}

// DeductionReport reconciles a bulk wallet deduction.
type DeductionReport struct {
	BeforeTotal    int64          `json:"before_total"`
	AfterTotal     int64          `json:"after_total"`
	DeductedAmount int64          `json:"deducted_amount"`
	Symbol         string         `json:"symbol"`
	Wallet         *domain.Wallet `json:"wallet"`
}

// TripService manages trip lifecycle.
type TripService interface {
	Create(ctx context.Context, req CreateTripRequest) (*domain.Trip, error)
	Get(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error)
	Update(ctx context.Context, req UpdateTripRequest) (*domain.Trip, error)
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// CreateTripRequest holds input for trip creation. The KRW rate for the
// trip's currency is snapshotted at creation time.
type CreateTripRequest struct {
	UserID       uuid.UUID
	Name         string
	CountryCode  string
	CurrencyCode string
	StartDate    *time.Time
	EndDate      *time.Time
}

// UpdateTripRequest holds partial updates for a trip. The rate snapshot and
// currency are fixed for the trip's lifetime.
type UpdateTripRequest struct {
	UserID    uuid.UUID
	TripID    uuid.UUID
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// ExpenseService manages expense records.
type ExpenseService interface {
	Create(ctx context.Context, req CreateExpenseRequest) (*domain.Expense, error)
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Expense, error)
	ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Expense, error)
}

// CreateExpenseRequest holds input for manual or scan-derived expenses.
type CreateExpenseRequest struct {
	UserID       uuid.UUID
	TripID       uuid.UUID
	Amount       decimal.Decimal
	CurrencyCode string
	Description  string
	Source       domain.ExpenseSource
}

// RateService exposes KRW exchange rates with a frozen-snapshot discipline:
// trip creation snapshots a rate, later fluctuations never affect it.
type RateService interface {
	GetRate(ctx context.Context, currencyCode string) (decimal.Decimal, error)
	ListRates(ctx context.Context) (map[string]decimal.Decimal, error)
}
