package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// PurchaseServiceImpl implements ports.PurchaseService.
type PurchaseServiceImpl struct {
	currencies  *domain.CurrencyTable
	planner     *Planner
	tripRepo    ports.TripRepository
	walletRepo  ports.WalletRepository
	expenseRepo ports.ExpenseRepository
	idempRepo   ports.IdempotencyRepository
	idempCache  ports.IdempotencyCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl.
func NewPurchaseService(
	currencies *domain.CurrencyTable,
	planner *Planner,
	tripRepo ports.TripRepository,
	walletRepo ports.WalletRepository,
	expenseRepo ports.ExpenseRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		currencies:  currencies,
		planner:     planner,
		tripRepo:    tripRepo,
		walletRepo:  walletRepo,
		expenseRepo: expenseRepo,
		idempRepo:   idempRepo,
		idempCache:  idempCache,
		transactor:  transactor,
		log:         log,
	}
}

// Quote runs every planning strategy against the wallet snapshot and returns
// all outcomes side by side. It never mutates the wallet.
func (s *PurchaseServiceImpl) Quote(ctx context.Context, req ports.QuoteRequest) (*ports.PurchaseQuote, error) {
	profile, ok := s.currencies.Lookup(req.CurrencyCode)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(req.CurrencyCode)
	}

	price := profile.ToMinorUnits(req.Price)
	if price <= 0 {
		return nil, apperror.ErrNonPositiveAmount()
	}

	trip, err := s.tripRepo.GetByID(ctx, req.UserID, req.TripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	wallet, err := s.walletRepo.GetByOwner(ctx, req.UserID, req.TripID, profile.Code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	// Business rule: total balance must cover the price before any strategy
	// is attempted. A rich wallet may still be infeasible per strategy.
	if wallet.TotalAmount < price {
		return nil, apperror.ErrInsufficientFunds()
	}

	snapshot := wallet.Snapshot()
	outcomes := make([]ports.StrategyOutcome, 0, 2)
	for _, strategy := range domain.Strategies() {
		outcomes = append(outcomes, s.planStrategy(price, snapshot, profile, strategy))
	}

	return &ports.PurchaseQuote{
		CurrencyCode:   profile.Code,
		Symbol:         profile.Symbol,
		DecimalPlaces:  profile.DecimalPlaces,
		Price:          price,
		WalletTotal:    wallet.TotalAmount,
		WalletTotalKRW: trip.ConvertToKRW(profile.FromMinorUnits(wallet.TotalAmount)),
		PriceKRW:       trip.ConvertToKRW(profile.FromMinorUnits(price)),
		Outcomes:       outcomes,
		WalletLines:    walletLines(snapshot),
	}, nil
}

// planStrategy evaluates one strategy. Infeasibility is reported as outcome
// data, never as an error to the caller.
func (s *PurchaseServiceImpl) planStrategy(price int64, snapshot map[int64]int64, profile *domain.CurrencyProfile, strategy domain.Strategy) ports.StrategyOutcome {
	plan, err := s.planner.Plan(price, snapshot, profile, strategy)
	if err != nil {
		var infErr *InfeasibleError
		if errors.As(err, &infErr) {
			return ports.StrategyOutcome{Strategy: strategy, Feasible: false, Shortfall: infErr.Shortfall}
		}
		// price > 0 is checked upstream, so nothing else can fail here;
		// still report it as infeasible rather than panicking.
		s.log.Error().Err(err).Str("strategy", string(strategy)).Msg("unexpected planner failure")
		return ports.StrategyOutcome{Strategy: strategy, Feasible: false}
	}

	outcome := ports.StrategyOutcome{Strategy: strategy, Feasible: true, Plan: plan}
	if plan.Change > 0 {
		change, err := s.planner.RecommendChange(plan.Change, profile, strategy)
		if err != nil {
			// Change below the smallest coin (KRW remainders). The plan
			// stands; the register side simply has no exact breakdown.
			s.log.Debug().Int64("change", plan.Change).Str("currency", profile.Code).
				Msg("change amount not representable on ladder")
		} else {
			outcome.Change = change
		}
	}
	return outcome
}

// Commit applies a caller-selected plan: deducts the handed-over denominations
// inside a locked transaction, records the expense, and returns a receipt.
// Retries with the same reference replay the original receipt.
func (s *PurchaseServiceImpl) Commit(ctx context.Context, req ports.CommitRequest) (*ports.PurchaseReceipt, error) {
	profile, ok := s.currencies.Lookup(req.CurrencyCode)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(req.CurrencyCode)
	}

	price := profile.ToMinorUnits(req.Price)
	if price <= 0 {
		return nil, apperror.ErrNonPositiveAmount()
	}
	if len(req.Used) == 0 {
		return nil, apperror.Validation("used denominations must not be empty")
	}

	var totalPaid int64
	for _, d := range req.Used {
		if !profile.HasDenomination(d.Denomination) {
			return nil, apperror.ErrInvalidDenomination(fmt.Errorf("denomination %d not in %s ladder", d.Denomination, profile.Code))
		}
		if d.Quantity <= 0 {
			return nil, apperror.ErrNegativeQuantity(fmt.Errorf("quantity %d for denomination %d", d.Quantity, d.Denomination))
		}
		totalPaid += d.Denomination * d.Quantity
	}
	if totalPaid < price {
		return nil, apperror.Validation("selected denominations do not cover the price")
	}

	idempKey := domain.BuildPurchaseKey(req.UserID, req.ReferenceID)

	// Layer 1: Redis idempotency check
	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedReceipt(cached)
	}

	// Layer 2: DB idempotency check
	idempLog, err := s.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempLog != nil {
		return s.unmarshalCachedReceipt(idempLog.ResponseJSON)
	}

	trip, err := s.tripRepo.GetByID(ctx, req.UserID, req.TripID)
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

	// Lock & get wallet
	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, req.UserID, req.TripID, profile.Code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	beforeTotal := wallet.TotalAmount
	expectedVersion := wallet.Version

	// All-or-nothing deduction against the locked row.
	if err := wallet.ApplyDeductions(req.Used); err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientDenomination):
			return nil, apperror.ErrInsufficientDenomination(err)
		case errors.Is(err, domain.ErrNegativeQuantity):
			return nil, apperror.ErrNegativeQuantity(err)
		default:
			return nil, apperror.InternalError(fmt.Errorf("apply deductions: %w", err))
		}
	}
	wallet.ConvertedTotalKRW = trip.ConvertToKRW(profile.FromMinorUnits(wallet.TotalAmount))

	// Persist: update wallet holdings (version-guarded)
	if err := s.walletRepo.UpdateHoldings(ctx, dbTx, wallet, expectedVersion); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return nil, apperror.ErrConcurrentModification()
		}
		return nil, apperror.InternalError(fmt.Errorf("update holdings: %w", err))
	}

	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:           uuid.New(),
		UserID:       req.UserID,
		TripID:       req.TripID,
		Amount:       profile.FromMinorUnits(price),
		CurrencyCode: profile.Code,
		Description:  req.Description,
		Source:       domain.ExpenseSourcePlanner,
		Date:         now,
		CreatedAt:    now,
	}
	if err := s.expenseRepo.Create(ctx, dbTx, expense); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create expense: %w", err))
	}

	receipt := &ports.PurchaseReceipt{
		ExpenseID:      expense.ID,
		CurrencyCode:   profile.Code,
		Price:          price,
		TotalPaid:      totalPaid,
		Change:         totalPaid - price,
		BeforeTotal:    beforeTotal,
		AfterTotal:     wallet.TotalAmount,
		DeductedAmount: beforeTotal - wallet.TotalAmount,
		CommittedAt:    now,
	}

	// Persist: idempotency log
	respJSON, err := json.Marshal(receipt)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal receipt: %w", err))
	}
	idempLogEntry := &domain.IdempotencyLog{
		Key:          idempKey,
		ExpenseID:    expense.ID,
		ResponseJSON: respJSON,
		CreatedAt:    now,
	}
	if err := s.idempRepo.Create(ctx, dbTx, idempLogEntry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save idempotency log: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}

	s.log.Info().
		Str("expense_id", expense.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("currency", profile.Code).
		Int64("price", price).
		Int64("total_paid", totalPaid).
		Msg("purchase committed")

	return receipt, nil
}

// unmarshalCachedReceipt deserializes a cached purchase receipt.
func (s *PurchaseServiceImpl) unmarshalCachedReceipt(data []byte) (*ports.PurchaseReceipt, error) {
	receipt := &ports.PurchaseReceipt{}
	if err := json.Unmarshal(data, receipt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached receipt: %w", err))
	}
	return receipt, nil
}

// walletLines flattens a holdings snapshot into rows sorted largest-first.
func walletLines(snapshot map[int64]int64) []ports.WalletLine {
	lines := make([]ports.WalletLine, 0, len(snapshot))
	for denom, qty := range snapshot {
		lines = append(lines, ports.WalletLine{
			Denomination: denom,
			Quantity:     qty,
			Subtotal:     denom * qty,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Denomination > lines[j].Denomination })
	return lines
}
