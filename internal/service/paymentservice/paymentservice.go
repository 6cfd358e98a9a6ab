package paymentservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
)

//go:generate mockgen -source=paymentservice.go -destination=mock_paymentservice.go -package=paymentservice

var ErrProcessing = errors.New("event processing failed")

type Verifier interface {
	Verify(body []byte, header string) error
}

type Engine interface {
	Apply(ctx context.Context, event *domain.Event) (ledgerservice.Outcome, error)
}

type Service struct {
	verifier Verifier
	engine   Engine
	timeout  time.Duration
}

func New(verifier Verifier, engine Engine, timeout time.Duration) *Service {
	return &Service{
		verifier: verifier,
		engine:   engine,
		timeout:  timeout,
	}
}

// Ingest verifies, decodes and applies one raw provider notification.
// Verification and decoding errors are returned as is; everything the ledger
// reports is wrapped in ErrProcessing and worth a retry.
func (s *Service) Ingest(ctx context.Context, body []byte, signatureHeader string) (ledgerservice.Outcome, error) {
	if err := s.verifier.Verify(body, signatureHeader); err != nil {
		zap.L().Warn("rejected payment event", zap.Error(err))
		return "", err
	}

	event, err := domain.DecodeEvent(body)
	if err != nil {
		zap.L().Warn("undecodable payment event", zap.Error(err))
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	outcome, err := s.engine.Apply(ctx, event)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	return outcome, nil
}
