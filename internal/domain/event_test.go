package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expectErr   bool
		expectKind  EventKind
		expectValid bool
		check       func(t *testing.T, e *Event)
	}{
		{
			name: "checkout completed",
			raw: `{"id":"evt_1","type":"checkout.session.completed","created":1700000000,
				"data":{"object":{"id":"cs_1","amount_total":10000,"metadata":{"jobId":"J1","providerId":"P1","clientId":"C1"}}}}`,
			expectKind:  EventCheckoutCompleted,
			expectValid: true,
			check: func(t *testing.T, e *Event) {
				p, ok := e.Payload.(CheckoutCompleted)
				require.True(t, ok)
				assert.Equal(t, "J1", p.JobID)
				assert.Equal(t, "P1", p.ProviderID)
				assert.Equal(t, "C1", p.ClientID)
				assert.Equal(t, "100.00", p.AmountPaid.StringFixed(2))
				assert.Equal(t, int64(1700000000), e.CreatedAt.Unix())
			},
		},
		{
			name: "charge refunded",
			raw: `{"id":"evt_2","type":"charge.refunded",
				"data":{"object":{"id":"ch_1","amount_refunded":5000,"metadata":{"jobId":"J1","providerId":"P1"}}}}`,
			expectKind:  EventChargeRefunded,
			expectValid: true,
			check: func(t *testing.T, e *Event) {
				p, ok := e.Payload.(ChargeRefunded)
				require.True(t, ok)
				assert.Equal(t, "ch_1", p.ChargeID)
				assert.Equal(t, "50.00", p.RefundedAmount.StringFixed(2))
			},
		},
		{
			name: "payment failed without metadata",
			raw: `{"id":"evt_3","type":"payment_intent.payment_failed",
				"data":{"object":{"id":"pi_1","last_payment_error":{"message":"card declined"}}}}`,
			expectKind:  EventPaymentFailed,
			expectValid: true,
			check: func(t *testing.T, e *Event) {
				p, ok := e.Payload.(PaymentFailed)
				require.True(t, ok)
				assert.Empty(t, p.ClientID)
				assert.Equal(t, "card declined", p.Reason)
			},
		},
		{
			name:        "payment succeeded",
			raw:         `{"id":"evt_4","type":"payment_intent.succeeded","data":{"object":{"id":"pi_2"}}}`,
			expectKind:  EventPaymentSucceeded,
			expectValid: true,
		},
		{
			name:        "unknown type",
			raw:         `{"id":"evt_5","type":"customer.created","data":{"object":{"id":"cus_1"}}}`,
			expectKind:  EventUnknown,
			expectValid: true,
		},
		{
			name:        "checkout without provider",
			raw:         `{"id":"evt_6","type":"checkout.session.completed","data":{"object":{"amount_total":100,"metadata":{"jobId":"J1"}}}}`,
			expectKind:  EventCheckoutCompleted,
			expectValid: false,
		},
		{
			name:        "checkout with zero amount",
			raw:         `{"id":"evt_7","type":"checkout.session.completed","data":{"object":{"amount_total":0,"metadata":{"jobId":"J1","providerId":"P1"}}}}`,
			expectKind:  EventCheckoutCompleted,
			expectValid: false,
		},
		{
			name:        "refund with object of wrong shape",
			raw:         `{"id":"evt_8","type":"charge.refunded","data":{"object":"oops"}}`,
			expectKind:  EventChargeRefunded,
			expectValid: false,
		},
		{
			name:      "missing id",
			raw:       `{"type":"charge.refunded"}`,
			expectErr: true,
		},
		{
			name:      "not json",
			raw:       `not json`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEvent([]byte(tt.raw))
			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedEvent))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectKind, event.Kind)

			verr := event.Validate()
			if tt.expectValid {
				assert.NoError(t, verr)
			} else {
				var warning *IntegrityWarning
				require.ErrorAs(t, verr, &warning)
				assert.Equal(t, event.ID, warning.EventID)
			}
			if tt.check != nil {
				tt.check(t, event)
			}
		})
	}
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "checkout_completed", EventCheckoutCompleted.String())
	assert.Equal(t, "charge_refunded", EventChargeRefunded.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}
