package service

import (
	"context"
	"testing"
	"time"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletFixture struct {
	svc        *WalletServiceImpl
	tripRepo   *fakeTripRepo
	walletRepo *fakeWalletRepo
	userID     uuid.UUID
	tripID     uuid.UUID
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()

	userID := uuid.New()
	trip := &domain.Trip{
		ID:                uuid.New(),
		UserID:            userID,
		Name:              "Tokyo",
		CountryCode:       "JP",
		CurrencyCode:      "JPY",
		ExchangeRateToKRW: decimal.NewFromInt(9),
		CreatedAt:         time.Now().UTC(),
	}

	f := &walletFixture{
		tripRepo:   newFakeTripRepo(),
		walletRepo: newFakeWalletRepo(),
		userID:     userID,
		tripID:     trip.ID,
	}
	require.NoError(t, f.tripRepo.Create(context.Background(), trip))

	rates := NewRateService(&fakeRateCache{}, &fakeRateProvider{rates: StaticFallbackRates()}, time.Hour, zerolog.Nop())
	f.svc = NewWalletService(
		domain.DefaultCurrencyTable(),
		f.tripRepo, f.walletRepo, rates, &fakeTransactor{}, zerolog.Nop(),
	)
	return f
}

func TestWalletService_IngestScan_CreatesWallet(t *testing.T) {
	f := newWalletFixture(t)

	summary, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID:       f.userID,
		TripID:       f.tripID,
		CurrencyCode: "jpy",
		Counts: []domain.DenominationDelta{
			{Denomination: 1000, Quantity: 2},
			{Denomination: 100, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "¥", summary.Symbol)
	assert.Equal(t, int64(2500), summary.Wallet.TotalAmount)
	// JPY has no fractional unit: 2500 yen at rate 9 is 22500 won.
	assert.True(t, summary.TotalKRW.Equal(decimal.NewFromInt(22500)), summary.TotalKRW)

	stored, err := f.walletRepo.GetByOwner(context.Background(), f.userID, f.tripID, "JPY")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(2), stored.Holdings[1000])
}

func TestWalletService_IngestScan_MergesIntoExistingWallet(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{{Denomination: 1000, Quantity: 1}},
	})
	require.NoError(t, err)

	summary, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{{Denomination: 1000, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Wallet.Holdings[1000])
	assert.Equal(t, int64(3000), summary.Wallet.TotalAmount)
}

func TestWalletService_IngestScan_RejectsOffLadderCounts(t *testing.T) {
	f := newWalletFixture(t)

	// 250 yen is not a real denomination; the whole scan is rejected.
	_, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{
			{Denomination: 1000, Quantity: 1},
			{Denomination: 250, Quantity: 3},
		},
	})
	assertAppCode(t, err, "WAL_001")

	stored, _ := f.walletRepo.GetByOwner(context.Background(), f.userID, f.tripID, "JPY")
	assert.Nil(t, stored, "rejected scan must not create a wallet")
}

func TestWalletService_IngestScan_RejectsEmptyAndNonPositive(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
	})
	assertAppCode(t, err, "VAL_001")

	_, err = f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{{Denomination: 1000, Quantity: 0}},
	})
	assertAppCode(t, err, "WAL_002")
}

func TestWalletService_CreditDenomination(t *testing.T) {
	f := newWalletFixture(t)

	created, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{{Denomination: 500, Quantity: 1}},
	})
	require.NoError(t, err)

	summary, err := f.svc.CreditDenomination(context.Background(), f.userID, created.Wallet.ID, 500, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.Wallet.Holdings[500])
	assert.Equal(t, int64(2000), summary.Wallet.TotalAmount)
}

func TestWalletService_CreditDenomination_OwnershipEnforced(t *testing.T) {
	f := newWalletFixture(t)

	created, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{{Denomination: 500, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.CreditDenomination(context.Background(), uuid.New(), created.Wallet.ID, 500, 1)
	assertAppCode(t, err, "RES_001")
}

func TestWalletService_Deduct(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{
			{Denomination: 1000, Quantity: 3},
			{Denomination: 100, Quantity: 4},
		},
	})
	require.NoError(t, err)

	report, err := f.svc.Deduct(context.Background(), f.userID, f.tripID, "JPY", []domain.DenominationDelta{
		{Denomination: 1000, Quantity: 1},
		{Denomination: 100, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3400), report.BeforeTotal)
	assert.Equal(t, int64(2200), report.AfterTotal)
	assert.Equal(t, int64(1200), report.DeductedAmount)
	assert.Equal(t, "¥", report.Symbol)
	assert.True(t, report.Wallet.ConvertedTotalKRW.Equal(decimal.NewFromInt(19800)), report.Wallet.ConvertedTotalKRW)
}

func TestWalletService_Deduct_AllOrNothing(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{
			{Denomination: 1000, Quantity: 2},
			{Denomination: 100, Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.Deduct(context.Background(), f.userID, f.tripID, "JPY", []domain.DenominationDelta{
		{Denomination: 1000, Quantity: 1},
		{Denomination: 100, Quantity: 5}, // more than held
	})
	assertAppCode(t, err, "WAL_003")

	stored, _ := f.walletRepo.GetByOwner(context.Background(), f.userID, f.tripID, "JPY")
	require.NotNil(t, stored)
	assert.Equal(t, int64(2100), stored.TotalAmount, "failed deduction must leave the wallet untouched")
}

func TestWalletService_Summary_UnknownWallet(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.Summary(context.Background(), f.userID, f.tripID, "JPY")
	assertAppCode(t, err, "RES_001")
}

func TestWalletService_ListByTrip(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "JPY",
		Counts: []domain.DenominationDelta{{Denomination: 1000, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.IngestScan(context.Background(), ports.ScanIngestRequest{
		UserID: f.userID, TripID: f.tripID, CurrencyCode: "USD",
		Counts: []domain.DenominationDelta{{Denomination: 100, Quantity: 2}},
	})
	require.NoError(t, err)

	summaries, err := f.svc.ListByTrip(context.Background(), f.userID, f.tripID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byCurrency := map[string]ports.WalletSummary{}
	for _, s := range summaries {
		byCurrency[s.Wallet.CurrencyCode] = s
	}
	// JPY converts at the trip's frozen rate, USD at the live rate.
	assert.True(t, byCurrency["JPY"].TotalKRW.Equal(decimal.NewFromInt(9000)), byCurrency["JPY"].TotalKRW)
	assert.True(t, byCurrency["USD"].TotalKRW.Equal(decimal.NewFromInt(2700)), byCurrency["USD"].TotalKRW)
}
