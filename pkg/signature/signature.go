// Package signature verifies payment provider webhook signatures.
//
// The header has the form "t=<unix seconds>,v1=<hex>[,v1=<hex>...]" where every
// v1 value is HMAC-SHA256(secret, t + "." + body). More than one v1 value is
// accepted while a secret is being rotated.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	HeaderName       = "Payment-Signature"
	DefaultTolerance = 5 * time.Minute

	schemeV1 = "v1"
)

var (
	ErrInvalidSignature          = errors.New("invalid signature")
	ErrMalformedHeader           = errors.New("malformed signature header")
	ErrTimestampOutsideTolerance = errors.New("signature timestamp outside tolerance")
	ErrNoMatchingSignature       = errors.New("no matching signature")
	ErrMissingSecret             = errors.New("webhook secret is not configured")
)

type Verifier struct {
	secret      []byte
	tolerance   time.Duration
	development bool
	now         func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration, development bool) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{
		secret:      []byte(secret),
		tolerance:   tolerance,
		development: development,
		now:         time.Now,
	}
}

// Verify checks header against the raw request body. Every failure except a
// missing secret wraps ErrInvalidSignature.
func (v *Verifier) Verify(body []byte, header string) error {
	if len(v.secret) == 0 {
		if v.development {
			zap.L().Warn("webhook signature verification bypassed: no secret configured in development mode")
			return nil
		}
		return ErrMissingSecret
	}

	ts, signatures, err := parseHeader(header)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, ErrTimestampOutsideTolerance)
	}

	expected := computeSignature(v.secret, ts, body)
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidSignature, ErrNoMatchingSignature)
}

func (v *Verifier) Mode() string {
	if v.development {
		return "development"
	}
	return "production"
}

func parseHeader(header string) (int64, [][]byte, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, fmt.Errorf("%w: empty header", ErrMalformedHeader)
	}

	var (
		ts         int64
		haveTS     bool
		signatures [][]byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return 0, nil, fmt.Errorf("%w: bad element %q", ErrMalformedHeader, part)
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrMalformedHeader)
			}
			ts, haveTS = parsed, true
		case schemeV1:
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}
	if !haveTS {
		return 0, nil, fmt.Errorf("%w: no timestamp", ErrMalformedHeader)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: no %s signature", ErrMalformedHeader, schemeV1)
	}
	return ts, signatures, nil
}

func computeSignature(secret []byte, ts int64, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

// Sign builds a header value for body signed at ts.
func Sign(body []byte, secret string, ts time.Time) string {
	unix := ts.Unix()
	sig := computeSignature([]byte(secret), unix, body)
	return fmt.Sprintf("t=%d,%s=%s", unix, schemeV1, hex.EncodeToString(sig))
}
