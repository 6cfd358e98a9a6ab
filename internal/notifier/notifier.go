// Package notifier delivers user notifications produced by the ledger.
// Delivery is best effort and never blocks the caller.
package notifier

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

//go:generate mockgen -source=notifier.go -destination=mock_notifier.go -package=notifier

const sendTimeout = 5 * time.Second

type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

type Dispatcher struct {
	pool   *ants.Pool
	sender Sender
}

func New(sender Sender, workers int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		pool:   pool,
		sender: sender,
	}, nil
}

// Notify queues n for delivery. A saturated pool drops the notification.
func (d *Dispatcher) Notify(ctx context.Context, n domain.Notification) {
	ctx = context.WithoutCancel(ctx)
	err := d.pool.Submit(func() {
		sCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := d.sender.Send(sCtx, n); err != nil {
			zap.L().Warn("notification not delivered",
				zap.String("userID", n.UserID),
				zap.String("type", string(n.Type)),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		zap.L().Warn("notification dropped",
			zap.String("userID", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}

// Close waits up to timeout for queued deliveries.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
