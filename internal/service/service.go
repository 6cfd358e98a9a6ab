package service

import (
	"time"

	"github.com/GlebRadaev/servicehub/internal/handlers/events"
	"github.com/GlebRadaev/servicehub/internal/handlers/wallet"
	"github.com/GlebRadaev/servicehub/internal/handlers/webhook"
	"github.com/GlebRadaev/servicehub/internal/repo"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/internal/service/paymentservice"
	"github.com/GlebRadaev/servicehub/internal/service/walletservice"
)

//go:generate mockgen -source=service.go -destination=mock_service.go -package=service

type WalletService interface {
	wallet.Service
	events.Service
}

type Services struct {
	LedgerService  *ledgerservice.Service
	PaymentService webhook.Service
	WalletService  WalletService
}

func New(repo *repo.Repositories, verifier paymentservice.Verifier, notifier ledgerservice.Notifier, opts ledgerservice.Options, timeout time.Duration) *Services {
	ledgerService := ledgerservice.New(
		repo.JobRepo,
		repo.WalletRepo,
		repo.TransactionRepo,
		repo.EventRepo,
		repo.TXManager,
		notifier,
		opts,
	)

	return &Services{
		LedgerService:  ledgerService,
		PaymentService: paymentservice.New(verifier, ledgerService, timeout),
		WalletService:  walletservice.New(repo.WalletRepo, repo.TransactionRepo, repo.EventRepo),
	}
}
