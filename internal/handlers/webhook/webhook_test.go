package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/dto"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/internal/service/paymentservice"
	"github.com/GlebRadaev/servicehub/pkg/signature"
	"github.com/GlebRadaev/servicehub/pkg/utils"
)

func NewMock(t *testing.T) (*WebhookHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestHandlePayment(t *testing.T) {
	const (
		body   = `{"id":"evt_A","type":"checkout.session.completed"}`
		header = "t=1700000000,v1=abc"
	)

	tests := []struct {
		name            string
		outcome         ledgerservice.Outcome
		err             error
		expectedCode    int
		expectedMessage string
	}{
		{
			name:         "applied",
			outcome:      ledgerservice.OutcomeApplied,
			expectedCode: http.StatusOK,
		},
		{
			name:         "duplicate is acknowledged",
			outcome:      ledgerservice.OutcomeDuplicate,
			expectedCode: http.StatusOK,
		},
		{
			name:         "warning is acknowledged",
			outcome:      ledgerservice.OutcomeWarning,
			expectedCode: http.StatusOK,
		},
		{
			name:            "invalid signature",
			err:             fmt.Errorf("%w: %w", signature.ErrInvalidSignature, signature.ErrNoMatchingSignature),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Invalid signature",
		},
		{
			name:            "malformed event",
			err:             fmt.Errorf("%w: id and type are required", domain.ErrMalformedEvent),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Malformed event",
		},
		{
			name:            "missing secret",
			err:             signature.ErrMissingSecret,
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Webhook secret is not configured",
		},
		{
			name:            "processing failure asks for retry",
			err:             fmt.Errorf("%w: %w", paymentservice.ErrProcessing, errors.New("deadlock detected")),
			expectedCode:    http.StatusServiceUnavailable,
			expectedMessage: "Event processing failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			service.EXPECT().Ingest(gomock.Any(), []byte(body), header).Return(tt.outcome, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewReader([]byte(body)))
			req.Header.Set(signature.HeaderName, header)
			rr := httptest.NewRecorder()

			handler.HandlePayment(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.WebhookResponseDTO
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.True(t, resp.Received)
				assert.Equal(t, string(tt.outcome), resp.Outcome)
				return
			}
			var resp utils.Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

func TestHandlePayment_BodyTooLarge(t *testing.T) {
	handler, _ := NewMock(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewReader(make([]byte, maxBodyBytes+1)))
	rr := httptest.NewRecorder()

	handler.HandlePayment(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
