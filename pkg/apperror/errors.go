package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Currency (CUR) ----

func ErrUnsupportedCurrency(code string) *AppError {
	return New("CUR_001", fmt.Sprintf("Unsupported currency code: %s", code), http.StatusBadRequest)
}

func ErrNoExchangeRate(code string) *AppError {
	return New("CUR_002", fmt.Sprintf("No exchange rate available for %s", code), http.StatusNotFound)
}

// ---- Wallet (WAL) ----

func ErrInvalidDenomination(err error) *AppError {
	return Wrap("WAL_001", "Denomination is not part of the currency's ladder", http.StatusBadRequest, err)
}

func ErrNegativeQuantity(err error) *AppError {
	return Wrap("WAL_002", "Quantity must be a positive integer", http.StatusBadRequest, err)
}

func ErrInsufficientDenomination(err error) *AppError {
	return Wrap("WAL_003", "Not enough of the requested denomination on hand", http.StatusUnprocessableEntity, err)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_004", "Wallet balance is below the requested amount", http.StatusPaymentRequired)
}

func ErrConcurrentModification() *AppError {
	return New("WAL_005", "Wallet was modified concurrently, retry with a fresh snapshot", http.StatusConflict)
}

// ---- Planner (PLN) ----

func ErrNonPositiveAmount() *AppError {
	return New("PLN_001", "Amount must be greater than zero", http.StatusBadRequest)
}

// ---- Generic resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrDuplicateReference() *AppError {
	return New("RES_002", "Duplicate purchase reference", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
