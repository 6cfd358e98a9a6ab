package paymentservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/pkg/signature"
)

func NewMock(t *testing.T) (*Service, *MockVerifier, *MockEngine) {
	ctrl := gomock.NewController(t)
	verifier := NewMockVerifier(ctrl)
	engine := NewMockEngine(ctrl)
	service := New(verifier, engine, time.Second)
	defer ctrl.Finish()
	return service, verifier, engine
}

func TestService_Ingest(t *testing.T) {
	service, verifier, engine := NewMock(t)
	body := []byte(`{"id":"evt_1","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)

	tests := []struct {
		name          string
		body          []byte
		prepareMock   func()
		expectOutcome ledgerservice.Outcome
		expectedErr   error
	}{
		{
			name: "verified event is applied",
			body: body,
			prepareMock: func() {
				verifier.EXPECT().Verify(body, "sig").Return(nil)
				engine.EXPECT().Apply(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, event *domain.Event) (ledgerservice.Outcome, error) {
						_, hasDeadline := ctx.Deadline()
						assert.True(t, hasDeadline)
						assert.Equal(t, "evt_1", event.ID)
						assert.Equal(t, domain.EventChargeRefunded, event.Kind)
						return ledgerservice.OutcomeWarning, nil
					})
			},
			expectOutcome: ledgerservice.OutcomeWarning,
		},
		{
			name: "bad signature stops before decoding",
			body: body,
			prepareMock: func() {
				verifier.EXPECT().Verify(body, "sig").Return(signature.ErrInvalidSignature)
			},
			expectedErr: signature.ErrInvalidSignature,
		},
		{
			name: "missing secret",
			body: body,
			prepareMock: func() {
				verifier.EXPECT().Verify(body, "sig").Return(signature.ErrMissingSecret)
			},
			expectedErr: signature.ErrMissingSecret,
		},
		{
			name: "malformed envelope",
			body: []byte(`{"type":"charge.refunded"}`),
			prepareMock: func() {
				verifier.EXPECT().Verify(gomock.Any(), "sig").Return(nil)
			},
			expectedErr: domain.ErrMalformedEvent,
		},
		{
			name: "ledger failure is retryable",
			body: body,
			prepareMock: func() {
				verifier.EXPECT().Verify(body, "sig").Return(nil)
				engine.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(ledgerservice.Outcome(""), errors.New("connection refused"))
			},
			expectedErr: ErrProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			outcome, err := service.Ingest(context.Background(), tt.body, "sig")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectOutcome, outcome)
		})
	}
}
