package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

type WalletRepo struct {
	s *Store
}

func (r *WalletRepo) EnsureWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	defer r.s.lock(ctx)()

	if w, ok := r.s.data.wallets[userID]; ok {
		return &w, nil
	}
	now := r.s.now()
	w := domain.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		Balance:        decimal.Zero,
		PendingBalance: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.s.data.wallets[userID] = w
	r.s.data.walletUsers[w.ID] = userID
	return &w, nil
}

func (r *WalletRepo) FindByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	defer r.s.lock(ctx)()

	w, ok := r.s.data.wallets[userID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WalletRepo) byID(walletID uuid.UUID) (domain.Wallet, bool) {
	userID, ok := r.s.data.walletUsers[walletID]
	if !ok {
		return domain.Wallet{}, false
	}
	return r.s.data.wallets[userID], true
}

func (r *WalletRepo) AddPending(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	defer r.s.lock(ctx)()

	w, ok := r.byID(walletID)
	if !ok {
		return nil, ErrWalletNotFound
	}
	w.PendingBalance = w.PendingBalance.Add(amount)
	w.UpdatedAt = r.s.now()
	r.s.data.wallets[w.UserID] = w
	return &w, nil
}

func (r *WalletRepo) Deduct(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Deduction, error) {
	defer r.s.lock(ctx)()

	w, ok := r.byID(walletID)
	if !ok {
		return nil, ErrWalletNotFound
	}
	fromPending, fromBalance := domain.SplitDeduction(w.Balance, w.PendingBalance, amount)
	w.PendingBalance = w.PendingBalance.Sub(fromPending)
	w.Balance = w.Balance.Sub(fromBalance)
	w.UpdatedAt = r.s.now()
	r.s.data.wallets[w.UserID] = w

	return &domain.Deduction{Wallet: w, FromPending: fromPending, FromBalance: fromBalance}, nil
}

// Settle moves amount from pending to available balance. Settlement is driven
// by the job completion flow; the memory store exposes it for fixtures.
func (r *WalletRepo) Settle(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	defer r.s.lock(ctx)()

	w, ok := r.s.data.wallets[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	moved := decimal.Min(w.PendingBalance, amount)
	w.PendingBalance = w.PendingBalance.Sub(moved)
	w.Balance = w.Balance.Add(moved)
	w.UpdatedAt = r.s.now()
	r.s.data.wallets[userID] = w
	return &w, nil
}
