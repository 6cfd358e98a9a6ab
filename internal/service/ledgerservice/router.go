package ledgerservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

func (s *Service) route(ctx context.Context, event *domain.Event) (result, error) {
	switch p := event.Payload.(type) {
	case domain.CheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event.ID, p)
	case domain.PaymentSucceeded:
		return s.handlePaymentSucceeded(event.ID, p)
	case domain.PaymentFailed:
		return s.handlePaymentFailed(event.ID, p)
	case domain.ChargeRefunded:
		return s.handleChargeRefunded(ctx, event.ID, p)
	case domain.Unknown:
		zap.L().Info("unhandled event type", zap.String("eventID", event.ID), zap.String("type", event.Type))
		return result{outcome: OutcomeIgnored}, nil
	}
	return result{}, fmt.Errorf("no handler for payload %T of event %s", event.Payload, event.ID)
}
