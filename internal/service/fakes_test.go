package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Hand-written fakes shared by the service tests. Repos return the stored
// pointers directly, which is fine for single-goroutine service tests.

type fakeTripRepo struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]*domain.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[uuid.UUID]*domain.Trip)}
}

func (r *fakeTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[trip.ID] = trip
	return nil
}

func (r *fakeTripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return t, nil
}

func (r *fakeTripRepo) Update(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[trip.ID]; !ok {
		return errors.New("trip not found")
	}
	r.trips[trip.ID] = trip
	return nil
}

func (r *fakeTripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return errors.New("trip not found")
	}
	delete(r.trips, tripID)
	return nil
}

type fakeWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet

	// forceVersionConflict makes the next UpdateHoldings fail.
	forceVersionConflict bool
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *fakeWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[w.ID] = w
	return nil
}

func (r *fakeWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *fakeWalletRepo) GetByOwner(ctx context.Context, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.TripID == tripID && w.CurrencyCode == currency {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error) {
	return r.GetByOwner(ctx, userID, tripID, currency)
}

func (r *fakeWalletRepo) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID && w.TripID == tripID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) UpdateHoldings(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceVersionConflict {
		r.forceVersionConflict = false
		return ports.ErrVersionConflict
	}
	stored, ok := r.wallets[wallet.ID]
	if !ok {
		return errors.New("wallet not found")
	}
	if stored.Version != expectedVersion {
		return ports.ErrVersionConflict
	}
	wallet.Version = expectedVersion + 1
	r.wallets[wallet.ID] = wallet
	return nil
}

type fakeExpenseRepo struct {
	mu       sync.RWMutex
	expenses []*domain.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{}
}

func (r *fakeExpenseRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses = append(r.expenses, e)
	return nil
}

func (r *fakeExpenseRepo) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.expenses {
		if e.ID == expenseID && e.UserID == userID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeExpenseRepo) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Expense
	for _, e := range r.expenses {
		if e.UserID == userID && e.TripID == tripID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	y, m, d := date.Date()
	var out []domain.Expense
	for _, e := range r.expenses {
		ey, em, ed := e.Date.Date()
		if e.UserID == userID && ey == y && em == m && ed == d {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *fakeIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.Key] = log
	return nil
}

func (r *fakeIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	return l, nil
}

type fakeIdempotencyCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	getErr  error
}

func newFakeIdempotencyCache() *fakeIdempotencyCache {
	return &fakeIdempotencyCache{entries: make(map[string][]byte)}
}

func (c *fakeIdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key], nil
}

func (c *fakeIdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

type fakeRateProvider struct {
	rates map[string]decimal.Decimal
	err   error
}

func (p *fakeRateProvider) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.rates, nil
}

type fakeRateCache struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

func (c *fakeRateCache) Get(ctx context.Context) (map[string]decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rates, nil
}

func (c *fakeRateCache) Set(ctx context.Context, rates map[string]decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = rates
	return nil
}

type fakeTransactor struct{}

func (t *fakeTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
