package handler

import (
	"travel-wallet-backend/internal/adapter/http/dto"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"
	"travel-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles the payment recommendation endpoints.
type PaymentHandler struct {
	purchaseSvc ports.PurchaseService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(purchaseSvc ports.PurchaseService) *PaymentHandler {
	return &PaymentHandler{purchaseSvc: purchaseSvc}
}

// Quote handles POST /api/v1/payment-guide. Given a price it reports, per
// strategy, which bills and coins to hand over and the change to expect.
func (h *PaymentHandler) Quote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.QuoteRequest
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
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.Error(c, apperror.Validation("price must be a decimal number"))
		return
	}

	quote, err := h.purchaseSvc.Quote(c.Request.Context(), ports.QuoteRequest{
		UserID:       userID,
		TripID:       tripID,
		CurrencyCode: req.CurrencyCode,
		Price:        price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, quote)
}

// Commit handles POST /api/v1/payment-guide/commit. The caller picked a
// plan; the selected denominations are debited atomically and a
// planner-originated expense is recorded.
func (h *PaymentHandler) Commit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CommitRequest
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
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.Error(c, apperror.Validation("price must be a decimal number"))
		return
	}

	receipt, err := h.purchaseSvc.Commit(c.Request.Context(), ports.CommitRequest{
		UserID:       userID,
		TripID:       tripID,
		CurrencyCode: req.CurrencyCode,
		ReferenceID:  req.ReferenceID,
		Price:        price,
		Used:         toDeltas(req.Used),
		Description:  req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, receipt)
}
