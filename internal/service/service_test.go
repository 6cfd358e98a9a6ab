package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/servicehub/internal/config"
	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/repo"
	"github.com/GlebRadaev/servicehub/internal/repo/memory"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/pkg/signature"
)

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, domain.Notification) {}

func TestNew(t *testing.T) {
	store := memory.NewStore()
	opts := ledgerservice.Options{Policy: config.PolicyRelease, FeePercent: decimal.NewFromInt(20)}
	verifier := signature.NewVerifier("whsec_test", signature.DefaultTolerance, false)

	services := New(repo.NewMemory(store), verifier, discardNotifier{}, opts, time.Second)

	assert.NotNil(t, services.LedgerService)
	assert.NotNil(t, services.PaymentService)
	assert.NotNil(t, services.WalletService)
}

func TestNew_IngestThroughWallet(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	providerID := "P1"
	require.NoError(t, store.Jobs().Create(ctx, &domain.Job{
		ID:         "J1",
		ClientID:   "C1",
		ProviderID: &providerID,
		Status:     domain.JobStatusConfirmed,
		PriceTotal: decimal.NewFromInt(100),
	}))

	opts := ledgerservice.Options{Policy: config.PolicyRelease, FeePercent: decimal.NewFromInt(20)}
	verifier := signature.NewVerifier("whsec_test", signature.DefaultTolerance, false)
	services := New(repo.NewMemory(store), verifier, discardNotifier{}, opts, time.Second)

	body := []byte(`{"id":"evt_A","type":"checkout.session.completed",
		"data":{"object":{"amount_total":10000,"metadata":{"jobId":"J1","providerId":"P1","clientId":"C1"}}}}`)
	header := signature.Sign(body, "whsec_test", time.Now())

	outcome, err := services.PaymentService.Ingest(ctx, body, header)
	require.NoError(t, err)
	assert.Equal(t, ledgerservice.OutcomeApplied, outcome)

	statement, err := services.WalletService.Statement(ctx, "P1", 0)
	require.NoError(t, err)
	assert.Equal(t, "80.00", statement.Wallet.PendingBalance.StringFixed(2))
	require.Len(t, statement.Transactions, 1)
	assert.Equal(t, "evt_A", statement.Transactions[0].EventID)
}
