package walletrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/pg"
)

var ErrWalletNotFound = errors.New("wallet not found")

const (
	ensureQuery = `
        INSERT INTO wallets (id, user_id, balance, pending_balance)
        VALUES ($1, $2, 0, 0)
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING id, user_id, balance, pending_balance, created_at, updated_at
    `
	findByUserIDQuery = `
        SELECT id, user_id, balance, pending_balance, created_at, updated_at
        FROM wallets
        WHERE user_id = $1
    `
	addPendingQuery = `
        UPDATE wallets
        SET pending_balance = pending_balance + $1, updated_at = now()
        WHERE id = $2
        RETURNING id, user_id, balance, pending_balance, created_at, updated_at
    `
	// pending is drained first, balance covers the rest, neither goes below zero
	deductQuery = `
        WITH prev AS (
            SELECT id, balance, pending_balance,
                   LEAST(pending_balance, $1::numeric) AS from_pending
            FROM wallets
            WHERE id = $2
            FOR UPDATE
        ), split AS (
            SELECT id, from_pending,
                   LEAST(balance, $1::numeric - from_pending) AS from_balance
            FROM prev
        )
        UPDATE wallets
        SET pending_balance = wallets.pending_balance - split.from_pending,
            balance = wallets.balance - split.from_balance,
            updated_at = now()
        FROM split
        WHERE wallets.id = split.id
        RETURNING wallets.id, wallets.user_id, wallets.balance, wallets.pending_balance,
                  wallets.created_at, wallets.updated_at, split.from_pending, split.from_balance
    `
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWallet(row pgx.Row, extra ...any) (*domain.Wallet, error) {
	var w domain.Wallet
	dest := append([]any{&w.ID, &w.UserID, &w.Balance, &w.PendingBalance, &w.CreatedAt, &w.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &w, nil
}

// EnsureWallet returns the wallet of userID, creating an empty one on first use.
func (r *Repository) EnsureWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := scanWallet(r.db.QueryRow(ctx, ensureQuery, uuid.New(), userID))
	if err != nil {
		zap.L().Error("can't ensure wallet", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := scanWallet(r.db.QueryRow(ctx, findByUserIDQuery, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find wallet", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (r *Repository) AddPending(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	wallet, err := scanWallet(r.db.QueryRow(ctx, addPendingQuery, amount, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		zap.L().Error("can't credit pending balance", zap.Stringer("walletID", walletID), zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

// Deduct takes up to amount from the wallet and reports what each bucket gave.
func (r *Repository) Deduct(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Deduction, error) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	var deduction domain.Deduction
	wallet, err := scanWallet(r.db.QueryRow(ctx, deductQuery, amount, walletID), &deduction.FromPending, &deduction.FromBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		zap.L().Error("can't deduct from wallet", zap.Stringer("walletID", walletID), zap.Error(err))
		return nil, err
	}
	deduction.Wallet = *wallet
	return &deduction, nil
}
