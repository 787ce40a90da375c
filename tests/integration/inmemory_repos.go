package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Trip Repo ---

type inMemoryTripRepo struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]*domain.Trip
}

func newInMemoryTripRepo() *inMemoryTripRepo {
	return &inMemoryTripRepo{trips: make(map[uuid.UUID]*domain.Trip)}
}

func (r *inMemoryTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *trip
	r.trips[trip.ID] = &cp
	return nil
}

func (r *inMemoryTripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTripRepo) Update(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.trips[trip.ID]
	if !ok || stored.UserID != trip.UserID {
		return fmt.Errorf("trip not found")
	}
	cp := *trip
	r.trips[trip.ID] = &cp
	return nil
}

func (r *inMemoryTripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return fmt.Errorf("trip not found")
	}
	delete(r.trips, tripID)
	return nil
}

// --- In-Memory Wallet Repo ---

// inMemoryWalletRepo mirrors the postgres repo's optimistic version guard:
// reads hand out deep copies and UpdateHoldings fails with ErrVersionConflict
// when the stored version moved, so the concurrency tests observe the same
// behavior the version-guarded UPDATE gives against a real database.
type inMemoryWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func copyWallet(w *domain.Wallet) *domain.Wallet {
	cp := *w
	cp.Holdings = make(map[int64]int64, len(w.Holdings))
	for denom, qty := range w.Holdings {
		cp.Holdings[denom] = qty
	}
	return &cp
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.UserID == w.UserID && existing.TripID == w.TripID && existing.CurrencyCode == w.CurrencyCode {
			return fmt.Errorf("wallet already exists for trip/currency")
		}
	}
	r.wallets[w.ID] = copyWallet(w)
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	return copyWallet(w), nil
}

func (r *inMemoryWalletRepo) GetByOwner(ctx context.Context, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByOwner(userID, tripID, currency), nil
}

func (r *inMemoryWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByOwner(userID, tripID, currency), nil
}

func (r *inMemoryWalletRepo) findByOwner(userID, tripID uuid.UUID, currency string) *domain.Wallet {
	for _, w := range r.wallets {
		if w.UserID == userID && w.TripID == tripID && w.CurrencyCode == currency {
			return copyWallet(w)
		}
	}
	return nil
}

func (r *inMemoryWalletRepo) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID && w.TripID == tripID {
			result = append(result, *copyWallet(w))
		}
	}
	return result, nil
}

func (r *inMemoryWalletRepo) UpdateHoldings(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.wallets[wallet.ID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	if stored.Version != expectedVersion {
		return ports.ErrVersionConflict
	}
	cp := copyWallet(wallet)
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = time.Now()
	r.wallets[wallet.ID] = cp
	wallet.Version = cp.Version
	return nil
}

// --- In-Memory Expense Repo ---

type inMemoryExpenseRepo struct {
	mu       sync.RWMutex
	expenses map[uuid.UUID]*domain.Expense
}

func newInMemoryExpenseRepo() *inMemoryExpenseRepo {
	return &inMemoryExpenseRepo{expenses: make(map[uuid.UUID]*domain.Expense)}
}

func (r *inMemoryExpenseRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *inMemoryExpenseRepo) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryExpenseRepo) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Expense
	for _, e := range r.expenses {
		if e.UserID == userID && e.TripID == tripID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *inMemoryExpenseRepo) ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var result []domain.Expense
	for _, e := range r.expenses {
		if e.UserID != userID {
			continue
		}
		d := e.Date.UTC()
		if !d.Before(dayStart) && d.Before(dayEnd) {
			result = append(result, *e)
		}
	}
	return result, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.Key] = log
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	return l, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
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
