package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"travel-wallet-backend/internal/core/domain"
	"travel-wallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository. Holdings live in a JSONB
// column keyed by denomination in minor units.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, user_id, trip_id, currency_code, country_code, holdings, total_amount, converted_total_krw, version, created_at, updated_at`

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	holdings, err := marshalHoldings(w.Holdings)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.TripID, w.CurrencyCode, w.CountryCode,
		holdings, w.TotalAmount, w.ConvertedTotalKRW, w.Version,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByOwner fetches a wallet by user, trip and currency (non-locking read).
func (r *WalletRepo) GetByOwner(ctx context.Context, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = $1 AND trip_id = $2 AND currency_code = $3`
	return scanWallet(r.pool.QueryRow(ctx, query, userID, tripID, currency))
}

// GetByOwnerForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, userID, tripID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = $1 AND trip_id = $2 AND currency_code = $3 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, userID, tripID, currency))
}

// ListByTrip fetches every wallet on a trip.
func (r *WalletRepo) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = $1 AND trip_id = $2 ORDER BY currency_code`

	rows, err := r.pool.Query(ctx, query, userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// UpdateHoldings persists holdings, cached totals and a bumped version inside
// a transaction. The version guard catches writes that raced past the row
// lock (e.g. a stale snapshot committed from another pool).
func (r *WalletRepo) UpdateHoldings(ctx context.Context, tx pgx.Tx, w *domain.Wallet, expectedVersion int64) error {
	query := `UPDATE wallets
		SET holdings = $1, total_amount = $2, converted_total_krw = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5`

	holdings, err := marshalHoldings(w.Holdings)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, holdings, w.TotalAmount, w.ConvertedTotalKRW, w.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update wallet holdings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrVersionConflict
	}
	w.Version = expectedVersion + 1
	return nil
}

// scanWallet reads one wallet row, decoding the JSONB holdings column.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var holdings []byte
	err := row.Scan(
		&w.ID, &w.UserID, &w.TripID, &w.CurrencyCode, &w.CountryCode,
		&holdings, &w.TotalAmount, &w.ConvertedTotalKRW, &w.Version,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	w.Holdings, err = unmarshalHoldings(holdings)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// JSON object keys are strings, so the denomination map round-trips through
// map[string]int64.

func marshalHoldings(holdings map[int64]int64) ([]byte, error) {
	enc := make(map[string]int64, len(holdings))
	for denom, qty := range holdings {
		enc[strconv.FormatInt(denom, 10)] = qty
	}
	data, err := json.Marshal(enc)
	if err != nil {
		return nil, fmt.Errorf("marshal holdings: %w", err)
	}
	return data, nil
}

func unmarshalHoldings(data []byte) (map[int64]int64, error) {
	dec := make(map[string]int64)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &dec); err != nil {
			return nil, fmt.Errorf("unmarshal holdings: %w", err)
		}
	}
	holdings := make(map[int64]int64, len(dec))
	for key, qty := range dec {
		denom, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse holdings key %q: %w", key, err)
		}
		holdings[denom] = qty
	}
	return holdings, nil
}
