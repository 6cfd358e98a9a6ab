package transactionrepo

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/pg"
)

const (
	createQuery = `
        INSERT INTO wallet_transactions (id, wallet_id, type, amount, status, description, job_id, event_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
        RETURNING created_at
    `
	listByUserIDQuery = `
        SELECT t.id, t.wallet_id, t.type, t.amount, t.status, t.description, t.job_id, COALESCE(t.event_id, ''), t.created_at
        FROM wallet_transactions t
        JOIN wallets w ON w.id = t.wallet_id
        WHERE w.user_id = $1
        ORDER BY t.created_at DESC
        LIMIT $2
    `
	lockWalletQuery = `
        SELECT id FROM wallets WHERE id = $1 FOR UPDATE
    `
	jobTotalsQuery = `
        SELECT COALESCE(SUM(amount) FILTER (WHERE type = $3), 0),
               COALESCE(-SUM(amount) FILTER (WHERE type = $4), 0)
        FROM wallet_transactions
        WHERE wallet_id = $1 AND job_id = $2
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

// Create appends a ledger row. Rows are never updated afterwards.
func (r *Repository) Create(ctx context.Context, tx *domain.WalletTransaction) error {
	row := r.db.QueryRow(ctx, createQuery,
		tx.ID, tx.WalletID, tx.Type, tx.Amount, tx.Status, tx.Description, tx.JobID, tx.EventID,
	)
	if err := row.Scan(&tx.CreatedAt); err != nil {
		zap.L().Error("can't create wallet transaction",
			zap.Stringer("walletID", tx.WalletID),
			zap.String("eventID", tx.EventID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ListByUserID returns the newest transactions of the user's wallet first.
func (r *Repository) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.WalletTransaction, error) {
	rows, err := r.db.Query(ctx, listByUserIDQuery, userID, limit)
	if err != nil {
		zap.L().Error("can't get wallet transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.WalletTransaction
	for rows.Next() {
		var tx domain.WalletTransaction
		err := rows.Scan(&tx.ID, &tx.WalletID, &tx.Type, &tx.Amount, &tx.Status, &tx.Description, &tx.JobID, &tx.EventID, &tx.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan wallet transaction row", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate wallet transactions", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}

// JobTotals sums the CREDIT and REFUND rows of a job on the wallet. The wallet row
// is locked first, so within the caller's transaction the totals stay current until
// commit. The sums are read by a separate statement to see rows committed while
// waiting for the lock.
func (r *Repository) JobTotals(ctx context.Context, walletID uuid.UUID, jobID string) (*domain.JobTotals, error) {
	if _, err := r.db.Exec(ctx, lockWalletQuery, walletID); err != nil {
		zap.L().Error("can't lock wallet", zap.Stringer("walletID", walletID), zap.Error(err))
		return nil, err
	}

	var totals domain.JobTotals
	err := r.db.QueryRow(ctx, jobTotalsQuery, walletID, jobID, domain.TransactionTypeCredit, domain.TransactionTypeRefund).
		Scan(&totals.Credited, &totals.Refunded)
	if err != nil {
		zap.L().Error("can't sum job transactions",
			zap.Stringer("walletID", walletID),
			zap.String("jobID", jobID),
			zap.Error(err),
		)
		return nil, err
	}
	return &totals, nil
}
