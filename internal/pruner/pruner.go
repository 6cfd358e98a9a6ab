// Package pruner periodically removes settled idempotency records.
package pruner

import (
	"context"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=pruner.go -destination=mock_pruner.go -package=pruner

type EventRepo interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service deletes processed events older than the retention window.
// Only APPLIED records are pruned; CLAIMED and FAILED rows need reconciliation.
type Service struct {
	repo      EventRepo
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func New(repo EventRepo, retention, interval time.Duration) *Service {
	return &Service{
		repo:      repo,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Run blocks until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if s.retention <= 0 || s.interval <= 0 {
		zap.L().Info("Event pruning disabled")
		return
	}
	zap.L().Info("Event pruner started",
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping event pruner")
			return
		case <-ticker.C:
			s.prune(ctx)
		}
	}
}

func (s *Service) prune(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		zap.L().Error("Failed to prune processed events", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}
	if deleted > 0 {
		zap.L().Info("Pruned processed events", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
