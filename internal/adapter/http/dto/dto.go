package dto

// DenominationCount is one denomination/quantity pair in a request body.
// Denominations are minor units of the request's currency.
type DenominationCount struct {
	Denomination int64 `json:"denomination" binding:"required,gt=0"`
	Quantity     int64 `json:"quantity" binding:"required,gt=0"`
}

// CreateTripRequest is the request body for trip creation.
// Dates use the YYYY-MM-DD layout.
type CreateTripRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=100"`
	CountryCode  *string `json:"country_code,omitempty" binding:"omitempty,len=2"`
	CurrencyCode string  `json:"currency_code" binding:"required,len=3"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`
}

// UpdateTripRequest is the request body for partial trip updates. The
// currency and its rate snapshot are fixed for the trip's lifetime.
type UpdateTripRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// TripResponse is the response body for trip queries.
type TripResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CountryCode       string  `json:"country_code"`
	CurrencyCode      string  `json:"currency_code"`
	ExchangeRateToKRW string  `json:"exchange_rate_to_krw"`
	StartDate         *string `json:"start_date,omitempty"`
	EndDate           *string `json:"end_date,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// ScanResultRequest is the request body for a money-scan deposit. Counts
// come from OCR and are validated against the currency's ladder.
type ScanResultRequest struct {
	TripID       string              `json:"trip_id" binding:"required,uuid"`
	CurrencyCode string              `json:"currency_code" binding:"required,len=3"`
	Counts       []DenominationCount `json:"counts" binding:"required,min=1,dive"`
}

// CreditRequest is the request body for a manual denomination top-up.
type CreditRequest struct {
	Denomination int64 `json:"denomination" binding:"required,gt=0"`
	Quantity     int64 `json:"quantity" binding:"required,gt=0"`
}

// DeductRequest is the request body for a bulk wallet deduction.
type DeductRequest struct {
	TripID       string              `json:"trip_id" binding:"required,uuid"`
	CurrencyCode string              `json:"currency_code" binding:"required,len=3"`
	Deductions   []DenominationCount `json:"deductions" binding:"required,min=1,dive"`
}

// QuoteRequest is the request body for a payment recommendation.
// Price is a decimal string in the currency's major units ("7.30").
type QuoteRequest struct {
	TripID       string `json:"trip_id" binding:"required,uuid"`
	CurrencyCode string `json:"currency_code" binding:"required,len=3"`
	Price        string `json:"price" binding:"required"`
}

// CommitRequest is the request body for committing a selected payment plan.
type CommitRequest struct {
	TripID       string              `json:"trip_id" binding:"required,uuid"`
	CurrencyCode string              `json:"currency_code" binding:"required,len=3"`
	ReferenceID  string              `json:"reference_id" binding:"required,max=100,safe_id"`
	Price        string              `json:"price" binding:"required"`
	Used         []DenominationCount `json:"used" binding:"required,min=1,dive"`
	Description  string              `json:"description,omitempty" binding:"max=200"`
}

// CreateExpenseRequest is the request body for a manual expense.
// Amount is a decimal string in the currency's major units.
type CreateExpenseRequest struct {
	TripID       string `json:"trip_id" binding:"required,uuid"`
	Amount       string `json:"amount" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required,len=3"`
	Description  string `json:"description,omitempty" binding:"max=200"`
}

// ExpenseResponse is the response body for expense queries.
type ExpenseResponse struct {
	ID           string `json:"id"`
	TripID       string `json:"trip_id"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Description  string `json:"description"`
	Source       string `json:"source"`
	Date         string `json:"date"`
	CreatedAt    string `json:"created_at"`
}

// ExpenseListResponse wraps an expense list.
type ExpenseListResponse struct {
	Items []ExpenseResponse `json:"items"`
	Total int               `json:"total"`
}

// RatesResponse is the response for the exchange rate listing. Rates are
// decimal strings, KRW per one unit of the currency.
type RatesResponse struct {
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}
