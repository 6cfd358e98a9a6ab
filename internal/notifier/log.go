package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

// LogSender only logs notifications. Used when no delivery transport is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n domain.Notification) error {
	zap.L().Info("notification",
		zap.String("userID", n.UserID),
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
	)
	return nil
}
