package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TripServiceImpl implements ports.TripService.
type TripServiceImpl struct {
	currencies *domain.CurrencyTable
	tripRepo   ports.TripRepository
	rates      ports.RateService
	log        zerolog.Logger
}

// NewTripService creates a new TripServiceImpl.
func NewTripService(currencies *domain.CurrencyTable, tripRepo ports.TripRepository, rates ports.RateService, log zerolog.Logger) *TripServiceImpl {
	return &TripServiceImpl{
		currencies: currencies,
		tripRepo:   tripRepo,
		rates:      rates,
		log:        log,
	}
}

// Create validates the trip, snapshots the KRW rate for its currency and
// persists it. The snapshot is frozen for the trip's lifetime.
func (s *TripServiceImpl) Create(ctx context.Context, req ports.CreateTripRequest) (*domain.Trip, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("trip name must not be empty")
	}
	profile, ok := s.currencies.Lookup(req.CurrencyCode)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(req.CurrencyCode)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperror.Validation("trip end date must not precede start date")
	}

	rate, err := s.rates.GetRate(ctx, profile.Code)
	if err != nil {
		return nil, err
	}

	countryCode := req.CountryCode
	if countryCode == "" {
		countryCode = profile.CountryCode
	}

	now := time.Now().UTC()
	trip := &domain.Trip{
		ID:                uuid.New(),
		UserID:            req.UserID,
		Name:              name,
		CountryCode:       countryCode,
		CurrencyCode:      profile.Code,
		ExchangeRateToKRW: rate,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create trip: %w", err))
	}

	s.log.Info().Str("trip_id", trip.ID.String()).Str("currency", trip.CurrencyCode).
		Str("rate", rate.String()).Msg("trip created with rate snapshot")
	return trip, nil
}

// Get returns one trip owned by the user.
func (s *TripServiceImpl) Get(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}
	return trip, nil
}

// Update applies partial changes. Currency and the rate snapshot are fixed
// at creation and cannot be changed here.
func (s *TripServiceImpl) Update(ctx context.Context, req ports.UpdateTripRequest) (*domain.Trip, error) {
	trip, err := s.Get(ctx, req.UserID, req.TripID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("trip name must not be empty")
		}
		trip.Name = name
	}
	if req.StartDate != nil {
		trip.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		trip.EndDate = req.EndDate
	}
	if trip.StartDate != nil && trip.EndDate != nil && trip.EndDate.Before(*trip.StartDate) {
		return nil, apperror.Validation("trip end date must not precede start date")
	}
	trip.UpdatedAt = time.Now().UTC()

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update trip: %w", err))
	}
	return trip, nil
}

// Delete removes the trip; its wallets and expenses cascade in storage.
func (s *TripServiceImpl) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.tripRepo.Delete(ctx, userID, tripID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete trip: %w", err))
	}
	s.log.Info().Str("trip_id", tripID.String()).Msg("trip deleted")
	return nil
}
