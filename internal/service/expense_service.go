package service

import (
	"context"
	"fmt"
	"time"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"
	"travel-wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExpenseServiceImpl implements ports.ExpenseService.
type ExpenseServiceImpl struct {
	currencies  *domain.CurrencyTable
	tripRepo    ports.TripRepository
	expenseRepo ports.ExpenseRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewExpenseService creates a new ExpenseServiceImpl.
func NewExpenseService(
	currencies *domain.CurrencyTable,
	tripRepo ports.TripRepository,
	expenseRepo ports.ExpenseRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ExpenseServiceImpl {
	return &ExpenseServiceImpl{
		currencies:  currencies,
		tripRepo:    tripRepo,
		expenseRepo: expenseRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Create records a manual or scan-derived expense. Planner expenses are
// created by the purchase commit flow, not here.
func (s *ExpenseServiceImpl) Create(ctx context.Context, req ports.CreateExpenseRequest) (*domain.Expense, error) {
	profile, ok := s.currencies.Lookup(req.CurrencyCode)
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(req.CurrencyCode)
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrNonPositiveAmount()
	}

	source := req.Source
	if source == "" {
		source = domain.ExpenseSourceManual
	}
	if source == domain.ExpenseSourcePlanner {
		return nil, apperror.Validation("planner expenses are created by purchase commits")
	}

	trip, err := s.tripRepo.GetByID(ctx, req.UserID, req.TripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}

	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:           uuid.New(),
		UserID:       req.UserID,
		TripID:       req.TripID,
		Amount:       req.Amount.Round(profile.DecimalPlaces),
		CurrencyCode: profile.Code,
		Description:  req.Description,
		Source:       source,
		Date:         now,
		CreatedAt:    now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.expenseRepo.Create(ctx, dbTx, expense); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create expense: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("expense_id", expense.ID.String()).Str("currency", expense.CurrencyCode).
		Str("source", string(source)).Msg("expense recorded")
	return expense, nil
}

// ListByTrip returns the trip's expenses.
func (s *ExpenseServiceImpl) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Expense, error) {
	trip, err := s.tripRepo.GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load trip: %w", err))
	}
	if trip == nil {
		return nil, apperror.ErrNotFound("trip")
	}
	expenses, err := s.expenseRepo.ListByTrip(ctx, userID, tripID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list expenses: %w", err))
	}
	return expenses, nil
}

// ListByDate returns the user's expenses for one calendar day across trips.
func (s *ExpenseServiceImpl) ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Expense, error) {
	expenses, err := s.expenseRepo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list expenses by date: %w", err))
	}
	return expenses, nil
}
