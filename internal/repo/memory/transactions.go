package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

type TransactionRepo struct {
	s *Store
}

func (r *TransactionRepo) Create(ctx context.Context, tx *domain.WalletTransaction) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.data.walletUsers[tx.WalletID]; !ok {
		return ErrWalletNotFound
	}
	if tx.EventID != "" {
		if _, ok := r.s.data.txEvents[tx.EventID]; ok {
			return ErrDuplicateEvent
		}
		r.s.data.txEvents[tx.EventID] = struct{}{}
	}
	tx.CreatedAt = r.s.now()
	r.s.data.transactions = append(r.s.data.transactions, *tx)
	return nil
}

func (r *TransactionRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.WalletTransaction, error) {
	defer r.s.lock(ctx)()

	w, ok := r.s.data.wallets[userID]
	if !ok {
		return nil, nil
	}
	var out []domain.WalletTransaction
	for i := len(r.s.data.transactions) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if tx := r.s.data.transactions[i]; tx.WalletID == w.ID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *TransactionRepo) JobTotals(ctx context.Context, walletID uuid.UUID, jobID string) (*domain.JobTotals, error) {
	defer r.s.lock(ctx)()

	totals := domain.JobTotals{Credited: decimal.Zero, Refunded: decimal.Zero}
	for _, tx := range r.s.data.transactions {
		if tx.WalletID != walletID || tx.JobID != jobID {
			continue
		}
		switch tx.Type {
		case domain.TransactionTypeCredit:
			totals.Credited = totals.Credited.Add(tx.Amount)
		case domain.TransactionTypeRefund:
			totals.Refunded = totals.Refunded.Sub(tx.Amount)
		}
	}
	return &totals, nil
}
