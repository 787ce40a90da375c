package service

import (
	"context"
	"errors"
	"fmt"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	currencies *domain.CurrencyTable
	tripRepo   ports.TripRepository
	walletRepo ports.WalletRepository
	rates      ports.RateService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	currencies *domain.CurrencyTable,
	tripRepo ports.TripRepository,
	walletRepo ports.WalletRepository,
	rates ports.RateService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		currencies: currencies,
		tripRepo:   tripRepo,
		walletRepo: walletRepo,
		rates:      rates,
		transactor: transactor,
		log:        log,
	}
}

// Summary returns one wallet with display data and its KRW conversion.
func (s *WalletServiceImpl) Summary(ctx context.Context, userID, tripID uuid.UUID, currency string) (*ports.WalletSummary, error) {
	profile, ok := s.currencies.Lookup(currency)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(currency)
	}

	trip, err := s.tripRepo.GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	wallet, err := s.walletRepo.GetByOwner(ctx, userID, tripID, profile.Code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	return s.summarize(ctx, wallet, trip, profile)
}

// ListByTrip returns summaries for every wallet on the trip.
func (s *WalletServiceImpl) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]ports.WalletSummary, error) {
	trip, err := s.tripRepo.GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	wallets, err := s.walletRepo.ListByTrip(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	summaries := make([]ports.WalletSummary, 0, len(wallets))
	for i := range wallets {
		profile, ok := s.currencies.Lookup(wallets[i].CurrencyCode)
		if !ok {
			// A wallet for a currency no longer in the table is a data bug.
			s.log.Error().Str("currency", wallets[i].CurrencyCode).
				Str("wallet_id", wallets[i].ID.String()).Msg("wallet currency missing from table")
			continue
		}
		summary, err := s.summarize(ctx, &wallets[i], trip, profile)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// IngestScan merges scanned denomination counts into the trip's wallet for
// the scanned currency, creating the wallet on first scan. Counts are
// untrusted OCR output: every row is validated against the ladder before
// anything is credited.
func (s *WalletServiceImpl) IngestScan(ctx context.Context, req ports.ScanIngestRequest) (*ports.WalletSummary, error) {
	profile, ok := s.currencies.Lookup(req.CurrencyCode)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(req.CurrencyCode)
	}
	if len(req.Counts) == 0 {
		return nil, apperror.Validation("scan result contains no denomination counts")
	}
	if err := validateAgainstLadder(profile, req.Counts); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, req.UserID, req.TripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	existing, err := s.walletRepo.GetByOwner(ctx, req.UserID, req.TripID, profile.Code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if existing == nil {
		rate, err := s.rateFor(ctx, trip, profile)
		if err != nil {
			return nil, err
		}
		wallet := domain.NewWallet(req.UserID, req.TripID, profile)
		for _, c := range req.Counts {
			if err := wallet.Credit(c.Denomination, c.Quantity); err != nil {
				return nil, apperror.InternalError(fmt.Errorf("credit scan counts: %w", err))
			}
		}
		wallet.ConvertedTotalKRW = convertKRW(profile.FromMinorUnits(wallet.TotalAmount), rate)
		if err := s.walletRepo.Create(ctx, wallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
		}
		s.log.Info().Str("wallet_id", wallet.ID.String()).Str("currency", profile.Code).
			Int64("total", wallet.TotalAmount).Msg("wallet created from scan")
		return s.summarize(ctx, wallet, trip, profile)
	}

	wallet, err := s.creditLocked(ctx, req.UserID, req.TripID, profile, trip, req.Counts)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, wallet, trip, profile)
}

// CreditDenomination adds bills or coins of one denomination to a wallet.
func (s *WalletServiceImpl) CreditDenomination(ctx context.Context, userID, walletID uuid.UUID, denomination, quantity int64) (*ports.WalletSummary, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil || wallet.UserID != userID {
		return nil, apperror.ErrNotFound("wallet")
	}

	profile, ok := s.currencies.Lookup(wallet.CurrencyCode)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(wallet.CurrencyCode)
	}
	if quantity <= 0 {
		return nil, apperror.ErrNegativeQuantity(fmt.Errorf("quantity %d", quantity))
	}
	if !profile.HasDenomination(denomination) {
		return nil, apperror.ErrInvalidDenomination(fmt.Errorf("denomination %d not in %s ladder", denomination, profile.Code))
	}

	trip, err := s.tripRepo.GetByID(ctx, userID, wallet.TripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	deltas := []domain.DenominationDelta{{Denomination: denomination, Quantity: quantity}}
	locked, err := s.creditLocked(ctx, userID, wallet.TripID, profile, trip, deltas)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, locked, trip, profile)
}

// Deduct removes denominations from the wallet all-or-nothing and reports
// the before/after totals.
func (s *WalletServiceImpl) Deduct(ctx context.Context, userID, tripID uuid.UUID, currency string, deductions []domain.DenominationDelta) (*ports.DeductionReport, error) {
	profile, ok := s.currencies.Lookup(currency)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(currency)
	}
	if len(deductions) == 0 {
		return nil, apperror.Validation("deductions must not be empty")
	}
	if err := validateAgainstLadder(profile, deductions); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, userID, tripID, profile.Code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	beforeTotal := wallet.TotalAmount
	expectedVersion := wallet.Version

	rate, err := s.rateFor(ctx, trip, profile)
	if err != nil {
		return nil, err
	}
	if err := wallet.ApplyDeductions(deductions); err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientDenomination):
			return nil, apperror.ErrInsufficientDenomination(err)
		case errors.Is(err, domain.ErrNegativeQuantity):
			return nil, apperror.ErrNegativeQuantity(err)
		default:
			return nil, apperror.InternalError(fmt.Errorf("apply deductions: %w", err))
		}
	}
	wallet.ConvertedTotalKRW = convertKRW(profile.FromMinorUnits(wallet.TotalAmount), rate)

	if err := s.walletRepo.UpdateHoldings(ctx, dbTx, wallet, expectedVersion); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return nil, apperror.ErrConcurrentModification()
		}
		return nil, apperror.InternalError(fmt.Errorf("update holdings: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("wallet_id", wallet.ID.String()).Str("currency", profile.Code).
		Int64("deducted", beforeTotal-wallet.TotalAmount).Msg("wallet deduction applied")

	return &ports.DeductionReport{
		BeforeTotal:    beforeTotal,
		AfterTotal:     wallet.TotalAmount,
		DeductedAmount: beforeTotal - wallet.TotalAmount,
		Symbol:         profile.Symbol,
		Wallet:         wallet,
	}, nil
}

// creditLocked applies credits to an existing wallet under a row lock.
func (s *WalletServiceImpl) creditLocked(ctx context.Context, userID, tripID uuid.UUID, profile *domain.CurrencyProfile, trip *domain.Trip, credits []domain.DenominationDelta) (*domain.Wallet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, userID, tripID, profile.Code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	expectedVersion := wallet.Version
	rate, err := s.rateFor(ctx, trip, profile)
	if err != nil {
		return nil, err
	}
	for _, c := range credits {
		if err := wallet.Credit(c.Denomination, c.Quantity); err != nil {
			if errors.Is(err, domain.ErrNegativeQuantity) {
				return nil, apperror.ErrNegativeQuantity(err)
			}
			return nil, apperror.ErrInvalidDenomination(err)
		}
	}
	wallet.ConvertedTotalKRW = convertKRW(profile.FromMinorUnits(wallet.TotalAmount), rate)

	if err := s.walletRepo.UpdateHoldings(ctx, dbTx, wallet, expectedVersion); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return nil, apperror.ErrConcurrentModification()
		}
		return nil, apperror.InternalError(fmt.Errorf("update holdings: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return wallet, nil
}

func (s *WalletServiceImpl) summarize(ctx context.Context, wallet *domain.Wallet, trip *domain.Trip, profile *domain.CurrencyProfile) (*ports.WalletSummary, error) {
	rate, err := s.rateFor(ctx, trip, profile)
	if err != nil {
		return nil, err
	}
	total := profile.FromMinorUnits(wallet.TotalAmount)
	return &ports.WalletSummary{
		Wallet:       wallet,
		Symbol:       profile.Symbol,
		TotalDecimal: total,
		TotalKRW:     convertKRW(total, rate),
	}, nil
}

// rateFor resolves the KRW rate for a wallet's currency: the trip's frozen
// snapshot when the currency matches the trip, the live rate service otherwise.
func (s *WalletServiceImpl) rateFor(ctx context.Context, trip *domain.Trip, profile *domain.CurrencyProfile) (decimal.Decimal, error) {
	if profile.Code == trip.CurrencyCode {
		return trip.ExchangeRateToKRW, nil
	}
	return s.rates.GetRate(ctx, profile.Code)
}

func convertKRW(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(0)
}

// validateAgainstLadder rejects rows whose denomination is off the currency's
// ladder or whose quantity is not positive.
func validateAgainstLadder(profile *domain.CurrencyProfile, deltas []domain.DenominationDelta) error {
	for _, d := range deltas {
		if !profile.HasDenomination(d.Denomination) {
			return apperror.ErrInvalidDenomination(fmt.Errorf("denomination %d not in %s ladder", d.Denomination, profile.Code))
		}
		if d.Quantity <= 0 {
			return apperror.ErrNegativeQuantity(fmt.Errorf("quantity %d for denomination %d", d.Quantity, d.Denomination))
		}
	}
	return nil
}
