package handler

import (
	"time"

	"travel-wallet-backend/internal/adapter/http/dto"
	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"
	"travel-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense record endpoints.
type ExpenseHandler struct {
	expenseSvc ports.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseSvc ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseSvc: expenseSvc}
}

// Create handles POST /api/v1/expenses — manual expense entry.
func (h *ExpenseHandler) Create(c *gin.Context) {
	h.create(c, domain.ExpenseSourceManual)
}

// ScanResult handles POST /api/v1/expenses/scan-result — an expense
// derived from a scanned receipt.
func (h *ExpenseHandler) ScanResult(c *gin.Context) {
	h.create(c, domain.ExpenseSourceScan)
}

func (h *ExpenseHandler) create(c *gin.Context, source domain.ExpenseSource) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid trip id"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.Validation("amount must be a decimal number"))
		return
	}

	expense, err := h.expenseSvc.Create(c.Request.Context(), ports.CreateExpenseRequest{
		UserID:       userID,
		TripID:       tripID,
		Amount:       amount,
		CurrencyCode: req.CurrencyCode,
		Description:  req.Description,
		Source:       source,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toExpenseResponse(expense))
}

// ListByTrip handles GET /api/v1/expenses/trip/:trip_id.
func (h *ExpenseHandler) ListByTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	tripID, err := uuid.Parse(c.Param("trip_id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid trip id"))
		return
	}

	expenses, err := h.expenseSvc.ListByTrip(c.Request.Context(), userID, tripID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toExpenseList(expenses))
}

// ListByDate handles GET /api/v1/expenses?date=YYYY-MM-DD.
func (h *ExpenseHandler) ListByDate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		response.Error(c, apperror.Validation("date query parameter must use YYYY-MM-DD"))
		return
	}

	expenses, err := h.expenseSvc.ListByDate(c.Request.Context(), userID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toExpenseList(expenses))
}

func toExpenseList(expenses []domain.Expense) dto.ExpenseListResponse {
	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		items = append(items, toExpenseResponse(&expenses[i]))
	}
	return dto.ExpenseListResponse{Items: items, Total: len(items)}
}

// toExpenseResponse converts domain.Expense to DTO.
func toExpenseResponse(e *domain.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:           e.ID.String(),
		TripID:       e.TripID.String(),
		Amount:       e.Amount.String(),
		CurrencyCode: e.CurrencyCode,
		Description:  e.Description,
		Source:       string(e.Source),
		Date:         e.Date.Format(time.RFC3339),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}
