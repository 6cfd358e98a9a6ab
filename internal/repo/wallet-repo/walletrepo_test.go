package walletrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var walletColumns = []string{"id", "user_id", "balance", "pending_balance", "created_at", "updated_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_EnsureWallet(t *testing.T) {
	repo, mock := NewMock(t)
	id := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Creates or returns wallet",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(ensureQuery)).
					WithArgs(pgxmock.AnyArg(), "P1").
					WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(id.String(), "P1", "10.00", "0.00", now, now))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(ensureQuery)).
					WithArgs(pgxmock.AnyArg(), "P1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			wallet, err := repo.EnsureWallet(context.Background(), "P1")
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, wallet)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, wallet.ID)
				assert.Equal(t, "P1", wallet.UserID)
				assert.Equal(t, "10.00", wallet.Balance.StringFixed(2))
				assert.True(t, wallet.PendingBalance.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock := NewMock(t)
	id := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		found     bool
	}{
		{
			name: "Existing wallet",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByUserIDQuery)).
					WithArgs("P1").
					WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(id.String(), "P1", "0.00", "80.00", now, now))
			},
			found: true,
		},
		{
			name: "No wallet",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByUserIDQuery)).
					WithArgs("P1").
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByUserIDQuery)).
					WithArgs("P1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			wallet, err := repo.FindByUserID(context.Background(), "P1")
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.found {
				require.NotNil(t, wallet)
				assert.Equal(t, "80.00", wallet.PendingBalance.StringFixed(2))
			} else {
				assert.Nil(t, wallet)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_AddPending(t *testing.T) {
	repo, mock := NewMock(t)
	id := uuid.New()
	now := time.Now()
	amount := decimal.RequireFromString("80.00")

	tests := []struct {
		name        string
		mockSetup   func()
		expectedErr error
		anyErr      bool
	}{
		{
			name: "Pending credited",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(addPendingQuery)).
					WithArgs(amount, id).
					WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(id.String(), "P1", "0.00", "80.00", now, now))
			},
		},
		{
			name: "Wallet vanished",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(addPendingQuery)).
					WithArgs(amount, id).
					WillReturnError(pgx.ErrNoRows)
			},
			expectedErr: ErrWalletNotFound,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(addPendingQuery)).
					WithArgs(amount, id).
					WillReturnError(errors.New("database error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			wallet, err := repo.AddPending(context.Background(), id, amount)
			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "80.00", wallet.PendingBalance.StringFixed(2))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Deduct(t *testing.T) {
	repo, mock := NewMock(t)
	id := uuid.New()
	now := time.Now()
	columns := append(append([]string{}, walletColumns...), "from_pending", "from_balance")

	tests := []struct {
		name        string
		amount      decimal.Decimal
		mockSetup   func(amount decimal.Decimal)
		expectedErr error
		fromPending string
		fromBalance string
	}{
		{
			name:   "Pending first then balance",
			amount: decimal.RequireFromString("80.00"),
			mockSetup: func(amount decimal.Decimal) {
				mock.ExpectQuery(regexp.QuoteMeta(deductQuery)).
					WithArgs(amount, id).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(id.String(), "P1", "0.00", "0.00", now, now, "30.00", "50.00"))
			},
			fromPending: "30.00",
			fromBalance: "50.00",
		},
		{
			name:   "Negative amount is clamped",
			amount: decimal.RequireFromString("-5"),
			mockSetup: func(_ decimal.Decimal) {
				mock.ExpectQuery(regexp.QuoteMeta(deductQuery)).
					WithArgs(decimal.Zero, id).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(id.String(), "P1", "1.00", "1.00", now, now, "0", "0"))
			},
			fromPending: "0.00",
			fromBalance: "0.00",
		},
		{
			name:   "Wallet not found",
			amount: decimal.RequireFromString("10"),
			mockSetup: func(amount decimal.Decimal) {
				mock.ExpectQuery(regexp.QuoteMeta(deductQuery)).
					WithArgs(amount, id).
					WillReturnError(pgx.ErrNoRows)
			},
			expectedErr: ErrWalletNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup(tt.amount)
			deduction, err := repo.Deduct(context.Background(), id, tt.amount)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, deduction)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.fromPending, deduction.FromPending.StringFixed(2))
				assert.Equal(t, tt.fromBalance, deduction.FromBalance.StringFixed(2))
				assert.Equal(t, id, deduction.Wallet.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
