package ledgerservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

var (
	payableStatuses = []domain.JobStatus{
		domain.JobStatusOpen,
		domain.JobStatusConfirmed,
		domain.JobStatusInProgress,
		domain.JobStatusCompleted,
	}
	cancellableStatuses = []domain.JobStatus{
		domain.JobStatusOpen,
		domain.JobStatusConfirmed,
		domain.JobStatusInProgress,
		domain.JobStatusCompleted,
		domain.JobStatusPaid,
	}
)

// transitionJob moves the job and returns the fee percent that applies to it.
// A missing job or an unexpected status is logged and does not stop the ledger step.
func (s *Service) transitionJob(ctx context.Context, eventID, jobID string, to domain.JobStatus, allowedFrom []domain.JobStatus) (decimal.Decimal, error) {
	t, err := s.jobs.TransitionStatus(ctx, jobID, to, allowedFrom)
	if err != nil {
		return decimal.Zero, fmt.Errorf("transition job %s to %s: %w", jobID, to, err)
	}

	log := zap.L().With(zap.String("eventID", eventID), zap.String("jobID", jobID), zap.String("to", string(to)))
	switch {
	case t == nil:
		log.Warn("job not found, continuing with ledger update")
	case t.Applied:
		log.Info("job status updated", zap.String("from", string(t.From)))
	case t.From == to:
		log.Debug("job already in target status")
	default:
		log.Warn("job status not transitioned", zap.String("current", string(t.From)))
	}
	return s.feePercent(t), nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, eventID string, p domain.CheckoutCompleted) (result, error) {
	fee, err := s.transitionJob(ctx, eventID, p.JobID, domain.JobStatusPaid, payableStatuses)
	if err != nil {
		return result{}, err
	}

	wallet, err := s.wallets.EnsureWallet(ctx, p.ProviderID)
	if err != nil {
		return result{}, fmt.Errorf("load wallet of %s: %w", p.ProviderID, err)
	}

	payout := domain.ProviderShare(p.AmountPaid, fee)
	if _, err := s.wallets.AddPending(ctx, wallet.ID, payout); err != nil {
		return result{}, fmt.Errorf("credit wallet %s: %w", wallet.ID, err)
	}

	err = s.transactions.Create(ctx, &domain.WalletTransaction{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Type:        domain.TransactionTypeCredit,
		Amount:      payout,
		Status:      domain.TransactionStatusPending,
		Description: fmt.Sprintf("Payment for job %s", p.JobID),
		JobID:       p.JobID,
		EventID:     eventID,
	})
	if err != nil {
		return result{}, fmt.Errorf("record credit for job %s: %w", p.JobID, err)
	}

	zap.L().Info("provider credited",
		zap.String("eventID", eventID),
		zap.String("jobID", p.JobID),
		zap.String("providerID", p.ProviderID),
		zap.String("amountPaid", p.AmountPaid.StringFixed(domain.MoneyPlaces)),
		zap.String("payout", payout.StringFixed(domain.MoneyPlaces)),
	)

	return result{
		outcome: OutcomeApplied,
		notifications: []domain.Notification{{
			UserID:  p.ProviderID,
			Type:    domain.NotificationPaymentReceived,
			Title:   "Payment received",
			Message: fmt.Sprintf("You received %s for job %s. It will be available after the job is settled.", payout.StringFixed(domain.MoneyPlaces), p.JobID),
			Data: map[string]string{
				"jobId":  p.JobID,
				"amount": payout.StringFixed(domain.MoneyPlaces),
			},
		}},
	}, nil
}

func (s *Service) handlePaymentSucceeded(eventID string, p domain.PaymentSucceeded) (result, error) {
	zap.L().Info("payment succeeded",
		zap.String("eventID", eventID),
		zap.String("paymentID", p.PaymentID),
		zap.String("jobID", p.JobID),
	)
	return result{outcome: OutcomeApplied}, nil
}

func (s *Service) handlePaymentFailed(eventID string, p domain.PaymentFailed) (result, error) {
	zap.L().Warn("payment failed",
		zap.String("eventID", eventID),
		zap.String("paymentID", p.PaymentID),
		zap.String("jobID", p.JobID),
		zap.String("reason", p.Reason),
	)

	res := result{outcome: OutcomeApplied}
	if p.ClientID == "" {
		return res, nil
	}

	message := "Your payment could not be processed. Please try again."
	if p.JobID != "" {
		message = fmt.Sprintf("Your payment for job %s could not be processed. Please try again.", p.JobID)
	}
	data := map[string]string{}
	if p.JobID != "" {
		data["jobId"] = p.JobID
	}
	if p.Reason != "" {
		data["reason"] = p.Reason
	}
	res.notifications = []domain.Notification{{
		UserID:  p.ClientID,
		Type:    domain.NotificationPaymentFailed,
		Title:   "Payment failed",
		Message: message,
		Data:    data,
	}}
	return res, nil
}

func (s *Service) handleChargeRefunded(ctx context.Context, eventID string, p domain.ChargeRefunded) (result, error) {
	fee, err := s.transitionJob(ctx, eventID, p.JobID, domain.JobStatusCancelled, cancellableStatuses)
	if err != nil {
		return result{}, err
	}

	log := zap.L().With(zap.String("eventID", eventID), zap.String("jobID", p.JobID), zap.String("providerID", p.ProviderID))

	wallet, err := s.wallets.FindByUserID(ctx, p.ProviderID)
	if err != nil {
		return result{}, fmt.Errorf("load wallet of %s: %w", p.ProviderID, err)
	}
	if wallet == nil {
		log.Warn("refund for provider without wallet, nothing to deduct")
		return result{outcome: OutcomeWarning}, nil
	}

	// amount_refunded is cumulative, so only the part not yet taken back is owed
	totals, err := s.transactions.JobTotals(ctx, wallet.ID, p.JobID)
	if err != nil {
		return result{}, fmt.Errorf("load ledger totals of job %s: %w", p.JobID, err)
	}
	owed := totals.Outstanding(domain.ProviderShare(p.RefundedAmount, fee))
	if !owed.IsPositive() {
		log.Warn("nothing left to refund for job",
			zap.String("credited", totals.Credited.StringFixed(domain.MoneyPlaces)),
			zap.String("refunded", totals.Refunded.StringFixed(domain.MoneyPlaces)),
		)
		return result{outcome: OutcomeWarning}, nil
	}

	deduction, err := s.wallets.Deduct(ctx, wallet.ID, owed)
	if err != nil {
		return result{}, fmt.Errorf("deduct from wallet %s: %w", wallet.ID, err)
	}

	taken := deduction.Total()
	description := fmt.Sprintf("Refund for job %s", p.JobID)
	if shortfall := owed.Sub(taken); shortfall.IsPositive() {
		description = fmt.Sprintf("%s (shortfall %s)", description, shortfall.StringFixed(domain.MoneyPlaces))
		log.Warn("refund exceeds wallet funds, deduction floored at zero",
			zap.String("owed", owed.StringFixed(domain.MoneyPlaces)),
			zap.String("deducted", taken.StringFixed(domain.MoneyPlaces)),
			zap.String("shortfall", shortfall.StringFixed(domain.MoneyPlaces)),
		)
	}

	err = s.transactions.Create(ctx, &domain.WalletTransaction{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Type:        domain.TransactionTypeRefund,
		Amount:      taken.Neg(),
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		JobID:       p.JobID,
		EventID:     eventID,
	})
	if err != nil {
		return result{}, fmt.Errorf("record refund for job %s: %w", p.JobID, err)
	}

	log.Info("provider debited for refund",
		zap.String("fromPending", deduction.FromPending.StringFixed(domain.MoneyPlaces)),
		zap.String("fromBalance", deduction.FromBalance.StringFixed(domain.MoneyPlaces)),
	)

	return result{
		outcome: OutcomeApplied,
		notifications: []domain.Notification{{
			UserID:  p.ProviderID,
			Type:    domain.NotificationPaymentRefunded,
			Title:   "Payment refunded",
			Message: fmt.Sprintf("The payment for job %s was refunded. %s was deducted from your wallet.", p.JobID, taken.StringFixed(domain.MoneyPlaces)),
			Data: map[string]string{
				"jobId":  p.JobID,
				"amount": taken.Neg().StringFixed(domain.MoneyPlaces),
			},
		}},
	}, nil
}
