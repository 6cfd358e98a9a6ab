package signature

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifier_Verify(t *testing.T) {
	const secret = "whsec_test"
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name        string
		secret      string
		development bool
		header      string
		body        []byte
		expectedErr []error
	}{
		{
			name:   "valid signature",
			secret: secret,
			header: Sign(body, secret, now),
			body:   body,
		},
		{
			name:   "rotated secret among several v1",
			secret: secret,
			header: Sign(body, "whsec_old", now) + ",v1=" + Sign(body, secret, now)[len("t=1700000000,v1="):],
			body:   body,
		},
		{
			name:        "tampered body",
			secret:      secret,
			header:      Sign(body, secret, now),
			body:        []byte(`{"id":"evt_2"}`),
			expectedErr: []error{ErrInvalidSignature, ErrNoMatchingSignature},
		},
		{
			name:        "wrong secret",
			secret:      secret,
			header:      Sign(body, "whsec_other", now),
			body:        body,
			expectedErr: []error{ErrInvalidSignature, ErrNoMatchingSignature},
		},
		{
			name:        "stale timestamp",
			secret:      secret,
			header:      Sign(body, secret, now.Add(-6*time.Minute)),
			body:        body,
			expectedErr: []error{ErrInvalidSignature, ErrTimestampOutsideTolerance},
		},
		{
			name:        "future timestamp",
			secret:      secret,
			header:      Sign(body, secret, now.Add(6*time.Minute)),
			body:        body,
			expectedErr: []error{ErrInvalidSignature, ErrTimestampOutsideTolerance},
		},
		{
			name:        "empty header",
			secret:      secret,
			header:      "",
			body:        body,
			expectedErr: []error{ErrInvalidSignature, ErrMalformedHeader},
		},
		{
			name:        "no timestamp",
			secret:      secret,
			header:      "v1=abcdef",
			body:        body,
			expectedErr: []error{ErrInvalidSignature, ErrMalformedHeader},
		},
		{
			name:        "garbage",
			secret:      secret,
			header:      "not-a-signature",
			body:        body,
			expectedErr: []error{ErrInvalidSignature, ErrMalformedHeader},
		},
		{
			name:        "missing secret in production",
			header:      Sign(body, secret, now),
			body:        body,
			expectedErr: []error{ErrMissingSecret},
		},
		{
			name:        "missing secret in development bypasses",
			development: true,
			header:      "",
			body:        body,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.secret, 0, tt.development)
			v.now = func() time.Time { return now }

			err := v.Verify(tt.body, tt.header)
			if len(tt.expectedErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, expected := range tt.expectedErr {
				assert.True(t, errors.Is(err, expected), "expected %v in %v", expected, err)
			}
			if errors.Is(err, ErrMissingSecret) {
				assert.False(t, errors.Is(err, ErrInvalidSignature))
			}
		})
	}
}

func TestVerifier_Mode(t *testing.T) {
	assert.Equal(t, "production", NewVerifier("s", time.Minute, false).Mode())
	assert.Equal(t, "development", NewVerifier("", time.Minute, true).Mode())
}

func TestSign(t *testing.T) {
	header := Sign([]byte("{}"), "secret", time.Unix(42, 0))
	assert.Regexp(t, `^t=42,v1=[0-9a-f]{64}$`, header)
}
