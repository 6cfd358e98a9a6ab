package walletservice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

//go:generate mockgen -source=walletservice.go -destination=mock_walletservice.go -package=walletservice

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrInvalidStatus  = errors.New("invalid event status")
)

type WalletRepo interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
}

type TransactionRepo interface {
	ListByUserID(ctx context.Context, userID string, limit int) ([]domain.WalletTransaction, error)
}

type EventRepo interface {
	ListByStatus(ctx context.Context, status domain.EventStatus, limit int) ([]domain.ProcessedEvent, error)
}

type Statement struct {
	Wallet       domain.Wallet
	Transactions []domain.WalletTransaction
}

type Service struct {
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
	eventRepo       EventRepo
}

func New(walletRepo WalletRepo, transactionRepo TransactionRepo, eventRepo EventRepo) *Service {
	return &Service{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		eventRepo:       eventRepo,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *Service) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// Statement loads the wallet and its latest transactions concurrently.
func (s *Service) Statement(ctx context.Context, userID string, limit int) (*Statement, error) {
	var (
		wallet       *domain.Wallet
		transactions []domain.WalletTransaction
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wallet, err = s.GetWallet(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.transactionRepo.ListByUserID(gCtx, userID, clampLimit(limit))
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrWalletNotFound) {
			zap.L().Error("can't build wallet statement", zap.String("userID", userID), zap.Error(err))
		}
		return nil, err
	}

	return &Statement{Wallet: *wallet, Transactions: transactions}, nil
}

func (s *Service) ListEvents(ctx context.Context, status domain.EventStatus, limit int) ([]domain.ProcessedEvent, error) {
	switch status {
	case domain.EventStatusClaimed, domain.EventStatusApplied, domain.EventStatusFailed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.eventRepo.ListByStatus(ctx, status, clampLimit(limit))
}
