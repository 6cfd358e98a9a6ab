package repo

import (
	"github.com/GlebRadaev/servicehub/internal/pg"
	"github.com/GlebRadaev/servicehub/internal/pruner"
	eventrepo "github.com/GlebRadaev/servicehub/internal/repo/event-repo"
	jobrepo "github.com/GlebRadaev/servicehub/internal/repo/job-repo"
	"github.com/GlebRadaev/servicehub/internal/repo/memory"
	transactionrepo "github.com/GlebRadaev/servicehub/internal/repo/transaction-repo"
	walletrepo "github.com/GlebRadaev/servicehub/internal/repo/wallet-repo"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/internal/service/walletservice"
)

type WalletRepo interface {
	ledgerservice.WalletRepo
	walletservice.WalletRepo
}

type TransactionRepo interface {
	ledgerservice.TransactionRepo
	walletservice.TransactionRepo
}

type EventRepo interface {
	ledgerservice.EventRepo
	walletservice.EventRepo
	pruner.EventRepo
}

type Repositories struct {
	JobRepo         ledgerservice.JobRepo
	WalletRepo      WalletRepo
	TransactionRepo TransactionRepo
	EventRepo       EventRepo
	TXManager       pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		JobRepo:         jobrepo.New(conn, txManager),
		WalletRepo:      walletrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		EventRepo:       eventrepo.New(conn),
		TXManager:       txManager,
	}
}

// NewMemory backs every repository with one in-process store.
func NewMemory(store *memory.Store) *Repositories {
	return &Repositories{
		JobRepo:         store.Jobs(),
		WalletRepo:      store.Wallets(),
		TransactionRepo: store.Transactions(),
		EventRepo:       store.Events(),
		TXManager:       store,
	}
}
