package handler

import (
	"travel-wallet-backend/internal/adapter/http/dto"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateHandler handles exchange rate endpoints.
type RateHandler struct {
	rateSvc ports.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateSvc ports.RateService) *RateHandler {
	return &RateHandler{rateSvc: rateSvc}
}

// List handles GET /api/v1/rates — KRW per one unit of each currency.
func (h *RateHandler) List(c *gin.Context) {
	rates, err := h.rateSvc.ListRates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make(map[string]string, len(rates))
	for code, rate := range rates {
		out[code] = rate.String()
	}

	response.OK(c, dto.RatesResponse{Base: "KRW", Rates: out})
}
