package handler

import (
	"travel-wallet-backend/internal/adapter/http/dto"
	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"
	"travel-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles cash wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// List handles GET /api/v1/wallets?trip_id= — every wallet of a trip.
func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	tripID, err := uuid.Parse(c.Query("trip_id"))
	if err != nil {
		response.Error(c, apperror.Validation("trip_id query parameter is required"))
		return
	}

	summaries, err := h.walletSvc.ListByTrip(c.Request.Context(), userID, tripID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"items": summaries, "total": len(summaries)})
}

// Summary handles GET /api/v1/wallets/summary?trip_id=&currency=.
func (h *WalletHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	tripID, err := uuid.Parse(c.Query("trip_id"))
	if err != nil {
		response.Error(c, apperror.Validation("trip_id query parameter is required"))
		return
	}
	currency := c.Query("currency")
	if currency == "" {
		response.Error(c, apperror.Validation("currency query parameter is required"))
		return
	}

	summary, err := h.walletSvc.Summary(c.Request.Context(), userID, tripID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, summary)
}

// ScanResult handles POST /api/v1/wallets/scan-result — deposit of
// denomination counts extracted from a money scan.
func (h *WalletHandler) ScanResult(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ScanResultRequest
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

	summary, err := h.walletSvc.IngestScan(c.Request.Context(), ports.ScanIngestRequest{
		UserID:       userID,
		TripID:       tripID,
		CurrencyCode: req.CurrencyCode,
		Counts:       toDeltas(req.Counts),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, summary)
}

// Credit handles PATCH /api/v1/wallets/:id — manual denomination top-up.
func (h *WalletHandler) Credit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	summary, err := h.walletSvc.CreditDenomination(c.Request.Context(), userID, walletID, req.Denomination, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, summary)
}

// Deduct handles POST /api/v1/wallets/deduct — bulk all-or-nothing debit.
func (h *WalletHandler) Deduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DeductRequest
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

	report, err := h.walletSvc.Deduct(c.Request.Context(), userID, tripID, req.CurrencyCode, toDeltas(req.Deductions))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// toDeltas converts request denomination counts to domain deltas.
func toDeltas(counts []dto.DenominationCount) []domain.DenominationDelta {
	deltas := make([]domain.DenominationDelta, 0, len(counts))
	for _, c := range counts {
		deltas = append(deltas, domain.DenominationDelta{
			Denomination: c.Denomination,
			Quantity:     c.Quantity,
		})
	}
	return deltas
}
