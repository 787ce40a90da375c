package service

import (
	"context"
	"strings"
	"time"

	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateServiceImpl implements ports.RateService with a Redis cache in front of
// the external provider and a static table as the last resort, so a provider
// outage never blocks wallet math.
type RateServiceImpl struct {
	cache    ports.RateCache
	provider ports.RateProvider
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewRateService creates a new RateServiceImpl.
func NewRateService(cache ports.RateCache, provider ports.RateProvider, cacheTTL time.Duration, log zerolog.Logger) *RateServiceImpl {
	return &RateServiceImpl{
		cache:    cache,
		provider: provider,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// StaticFallbackRates returns the built-in KRW rates used when both the cache
// and the provider are unavailable.
func StaticFallbackRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1350),
		"JPY": decimal.NewFromInt(9),
		"CNY": decimal.NewFromInt(190),
		"KRW": decimal.NewFromInt(1),
	}
}

// StaticRateProvider serves the built-in rate table. It stands in for the
// external rate API, which is integrated behind ports.RateProvider.
type StaticRateProvider struct{}

// NewStaticRateProvider creates a provider backed by the static table.
func NewStaticRateProvider() *StaticRateProvider {
	return &StaticRateProvider{}
}

// FetchRates returns the static KRW rate table.
func (p *StaticRateProvider) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	return StaticFallbackRates(), nil
}

// ListRates returns the current KRW rate per supported currency.
func (s *RateServiceImpl) ListRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate cache read failed, falling through to provider")
	}
	if cached != nil {
		return cached, nil
	}

	rates, err := s.provider.FetchRates(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate provider unavailable, using static fallback")
		return StaticFallbackRates(), nil
	}

	if err := s.cache.Set(ctx, rates, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache exchange rates")
	}
	return rates, nil
}

// GetRate returns the KRW rate for one currency.
func (s *RateServiceImpl) GetRate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	code := strings.ToUpper(currencyCode)
	rates, err := s.ListRates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if rate, ok := rates[code]; ok {
		return rate, nil
	}
	// Provider payloads may omit currencies the static table covers.
	if rate, ok := StaticFallbackRates()[code]; ok {
		return rate, nil
	}
	return decimal.Zero, apperror.ErrNoExchangeRate(code)
}
