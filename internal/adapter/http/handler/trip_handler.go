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
)

const dateLayout = "2006-01-02"

// TripHandler handles trip lifecycle endpoints.
type TripHandler struct {
	tripSvc ports.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripSvc ports.TripService) *TripHandler {
	return &TripHandler{tripSvc: tripSvc}
}

// Create handles POST /api/v1/trips.
func (h *TripHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		response.Error(c, apperror.Validation("start_date must use YYYY-MM-DD"))
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		response.Error(c, apperror.Validation("end_date must use YYYY-MM-DD"))
		return
	}

	svcReq := ports.CreateTripRequest{
		UserID:       userID,
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
		StartDate:    startDate,
		EndDate:      endDate,
	}
	if req.CountryCode != nil {
		svcReq.CountryCode = *req.CountryCode
	}

	trip, err := h.tripSvc.Create(c.Request.Context(), svcReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTripResponse(trip))
}

// Get handles GET /api/v1/trips/:id.
func (h *TripHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid trip id"))
		return
	}

	trip, err := h.tripSvc.Get(c.Request.Context(), userID, tripID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTripResponse(trip))
}

// Update handles PATCH /api/v1/trips/:id.
func (h *TripHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid trip id"))
		return
	}

	var req dto.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		response.Error(c, apperror.Validation("start_date must use YYYY-MM-DD"))
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		response.Error(c, apperror.Validation("end_date must use YYYY-MM-DD"))
		return
	}

	trip, err := h.tripSvc.Update(c.Request.Context(), ports.UpdateTripRequest{
		UserID:    userID,
		TripID:    tripID,
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTripResponse(trip))
}

// Delete handles DELETE /api/v1/trips/:id. Wallets and expenses of the
// trip are removed with it.
func (h *TripHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid trip id"))
		return
	}

	if err := h.tripSvc.Delete(c.Request.Context(), userID, tripID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "trip deleted"})
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toTripResponse converts domain.Trip to DTO.
func toTripResponse(t *domain.Trip) dto.TripResponse {
	resp := dto.TripResponse{
		ID:                t.ID.String(),
		Name:              t.Name,
		CountryCode:       t.CountryCode,
		CurrencyCode:      t.CurrencyCode,
		ExchangeRateToKRW: t.ExchangeRateToKRW.String(),
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
	}
	if t.StartDate != nil {
		s := t.StartDate.Format(dateLayout)
		resp.StartDate = &s
	}
	if t.EndDate != nil {
		s := t.EndDate.Format(dateLayout)
		resp.EndDate = &s
	}
	return resp
}
