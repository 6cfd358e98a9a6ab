package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/config"
	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/pg"
)

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

type JobRepo interface {
	TransitionStatus(ctx context.Context, jobID string, to domain.JobStatus, allowedFrom []domain.JobStatus) (*domain.JobTransition, error)
}

type WalletRepo interface {
	EnsureWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	AddPending(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
	Deduct(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Deduction, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.WalletTransaction) error
	JobTotals(ctx context.Context, walletID uuid.UUID, jobID string) (*domain.JobTotals, error)
}

type EventRepo interface {
	Claim(ctx context.Context, eventID, eventType string) (bool, error)
	MarkApplied(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID, reason string) error
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeWarning   Outcome = "warning"
)

var ErrInvalidFeePercent = errors.New("platform fee percent must be between 0 and 100")

type Options struct {
	Policy         string
	FeePercent     decimal.Decimal
	HandlerTimeout time.Duration
}

// OptionsFromConfig reads the engine settings from the service configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	fee, err := decimal.NewFromString(cfg.PlatformFeePercent)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidFeePercent, err)
	}
	if fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(100)) {
		return Options{}, ErrInvalidFeePercent
	}
	return Options{
		Policy:         cfg.IdempotencyPolicy,
		FeePercent:     fee,
		HandlerTimeout: cfg.RequestTimeout,
	}, nil
}

type Service struct {
	jobs         JobRepo
	wallets      WalletRepo
	transactions TransactionRepo
	events       EventRepo
	txManager    pg.TXManager
	notifier     Notifier
	opts         Options
}

func New(jobs JobRepo, wallets WalletRepo, transactions TransactionRepo, events EventRepo, txManager pg.TXManager, notifier Notifier, opts Options) *Service {
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 10 * time.Second
	}
	return &Service{
		jobs:         jobs,
		wallets:      wallets,
		transactions: transactions,
		events:       events,
		txManager:    txManager,
		notifier:     notifier,
		opts:         opts,
	}
}

// result is what a handler hands back to Apply. Notifications are sent only
// after the ledger changes are committed.
type result struct {
	outcome       Outcome
	notifications []domain.Notification
}

// Apply claims the event and applies its effects at most once.
func (s *Service) Apply(ctx context.Context, event *domain.Event) (Outcome, error) {
	log := zap.L().With(zap.String("eventID", event.ID), zap.String("type", event.Type))

	var (
		res result
		err error
	)
	if s.opts.Policy == config.PolicyRetain {
		res, err = s.applyRetained(ctx, event)
	} else {
		res, err = s.applyReleased(ctx, event)
	}
	if err != nil {
		log.Error("event processing failed", zap.Error(err))
		return "", err
	}

	switch res.outcome {
	case OutcomeDuplicate:
		log.Info("event already processed, skipping")
	case OutcomeApplied:
		log.Info("event applied")
	}

	for _, n := range res.notifications {
		s.notifier.Notify(ctx, n)
	}
	return res.outcome, nil
}

// applyReleased runs the claim and the ledger mutation in one transaction, so a
// failure releases the claim together with every partial write.
func (s *Service) applyReleased(ctx context.Context, event *domain.Event) (result, error) {
	var res result
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		claimed, err := s.events.Claim(ctx, event.ID, event.Type)
		if err != nil {
			return fmt.Errorf("claim event: %w", err)
		}
		if !claimed {
			res = result{outcome: OutcomeDuplicate}
			return nil
		}
		res, err = s.process(ctx, event)
		return err
	})
	if err != nil {
		return result{}, err
	}
	return res, nil
}

// applyRetained commits the claim on its own. A failing handler leaves the event
// FAILED for manual reconciliation; redeliveries are treated as duplicates.
func (s *Service) applyRetained(ctx context.Context, event *domain.Event) (result, error) {
	claimed, err := s.events.Claim(ctx, event.ID, event.Type)
	if err != nil {
		return result{}, fmt.Errorf("claim event: %w", err)
	}
	if !claimed {
		return result{outcome: OutcomeDuplicate}, nil
	}

	// the claim is durable now; finish even if the caller goes away
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.HandlerTimeout)
	defer cancel()

	var res result
	err = s.txManager.Begin(hctx, func(ctx context.Context) error {
		var err error
		res, err = s.process(ctx, event)
		return err
	})
	if err != nil {
		if markErr := s.events.MarkFailed(hctx, event.ID, err.Error()); markErr != nil {
			zap.L().Error("can't mark event failed", zap.String("eventID", event.ID), zap.Error(markErr))
		}
		return result{}, err
	}
	return res, nil
}

func (s *Service) process(ctx context.Context, event *domain.Event) (result, error) {
	if err := event.Validate(); err != nil {
		var warning *domain.IntegrityWarning
		if !errors.As(err, &warning) {
			return result{}, err
		}
		zap.L().Warn("event acknowledged without effects", zap.String("eventID", event.ID), zap.String("reason", warning.Reason))
		if err := s.events.MarkFailed(ctx, event.ID, warning.Reason); err != nil {
			return result{}, fmt.Errorf("mark event failed: %w", err)
		}
		return result{outcome: OutcomeWarning}, nil
	}

	res, err := s.route(ctx, event)
	if err != nil {
		return result{}, err
	}
	if err := s.events.MarkApplied(ctx, event.ID); err != nil {
		return result{}, fmt.Errorf("mark event applied: %w", err)
	}
	return res, nil
}

// feePercent prefers the fee persisted on the job at booking time.
func (s *Service) feePercent(t *domain.JobTransition) decimal.Decimal {
	if t != nil && t.PlatformFeePercent.Valid {
		return t.PlatformFeePercent.Decimal
	}
	return s.opts.FeePercent
}
