package transactionrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tx := &domain.WalletTransaction{
		ID:          uuid.New(),
		WalletID:    uuid.New(),
		Type:        domain.TransactionTypeCredit,
		Amount:      decimal.RequireFromString("80.00"),
		Status:      domain.TransactionStatusPending,
		Description: "Payment for job J1",
		JobID:       "J1",
		EventID:     "evt_1",
	}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Row appended",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(createQuery)).
					WithArgs(tx.ID, tx.WalletID, tx.Type, tx.Amount, tx.Status, tx.Description, tx.JobID, tx.EventID).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
			},
		},
		{
			name: "Duplicate event id",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(createQuery)).
					WithArgs(tx.ID, tx.WalletID, tx.Type, tx.Amount, tx.Status, tx.Description, tx.JobID, tx.EventID).
					WillReturnError(errors.New(`duplicate key value violates unique constraint "wallet_transactions_event_id_key"`))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.Create(context.Background(), tx)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, now, tx.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_ListByUserID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	walletID := uuid.New()
	creditID, refundID := uuid.New(), uuid.New()
	columns := []string{"id", "wallet_id", "type", "amount", "status", "description", "job_id", "event_id", "created_at"}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		count     int
	}{
		{
			name: "Newest first",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(listByUserIDQuery)).
					WithArgs("P1", 50).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(refundID.String(), walletID.String(), domain.TransactionTypeRefund, "-80.00", domain.TransactionStatusCompleted, "Refund for job J1", "J1", "evt_2", now).
						AddRow(creditID.String(), walletID.String(), domain.TransactionTypeCredit, "80.00", domain.TransactionStatusPending, "Payment for job J1", "J1", "evt_1", now.Add(-time.Hour)))
			},
			count: 2,
		},
		{
			name: "No rows",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(listByUserIDQuery)).
					WithArgs("P1", 50).
					WillReturnRows(pgxmock.NewRows(columns))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(listByUserIDQuery)).
					WithArgs("P1", 50).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.ListByUserID(context.Background(), "P1", 50)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Len(t, result, tt.count)
				if tt.count > 0 {
					assert.Equal(t, refundID, result[0].ID)
					assert.Equal(t, "-80.00", result[0].Amount.StringFixed(2))
					assert.Equal(t, domain.TransactionTypeCredit, result[1].Type)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_JobTotals(t *testing.T) {
	repo, mock := NewMock(t)
	walletID := uuid.New()

	tests := []struct {
		name           string
		mockSetup      func()
		expectErr      bool
		expectCredited string
		expectRefunded string
	}{
		{
			name: "Credit partly refunded",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(lockWalletQuery)).
					WithArgs(walletID).
					WillReturnResult(pgxmock.NewResult("SELECT", 1))
				mock.ExpectQuery(regexp.QuoteMeta(jobTotalsQuery)).
					WithArgs(walletID, "J1", domain.TransactionTypeCredit, domain.TransactionTypeRefund).
					WillReturnRows(pgxmock.NewRows([]string{"credited", "refunded"}).AddRow("80.00", "40.00"))
			},
			expectCredited: "80.00",
			expectRefunded: "40.00",
		},
		{
			name: "Lock fails",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(lockWalletQuery)).
					WithArgs(walletID).
					WillReturnError(errors.New("lock timeout"))
			},
			expectErr: true,
		},
		{
			name: "Sum fails",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(lockWalletQuery)).
					WithArgs(walletID).
					WillReturnResult(pgxmock.NewResult("SELECT", 1))
				mock.ExpectQuery(regexp.QuoteMeta(jobTotalsQuery)).
					WithArgs(walletID, "J1", domain.TransactionTypeCredit, domain.TransactionTypeRefund).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			totals, err := repo.JobTotals(context.Background(), walletID, "J1")
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, totals)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectCredited, totals.Credited.StringFixed(2))
				assert.Equal(t, tt.expectRefunded, totals.Refunded.StringFixed(2))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
