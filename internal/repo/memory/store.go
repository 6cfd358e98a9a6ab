// Package memory keeps the ledger tables in process memory. It backs the
// development mode and scenario tests; data does not survive a restart.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/pg"
)

var (
	ErrDuplicateJob   = errors.New("job already exists")
	ErrDuplicateEvent = errors.New("transaction for event already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrEventNotFound  = errors.New("processed event not found")
)

type tables struct {
	jobs         map[string]domain.Job
	wallets      map[string]domain.Wallet
	walletUsers  map[uuid.UUID]string
	transactions []domain.WalletTransaction
	txEvents     map[string]struct{}
	events       map[string]domain.ProcessedEvent
}

func newTables() tables {
	return tables{
		jobs:        make(map[string]domain.Job),
		wallets:     make(map[string]domain.Wallet),
		walletUsers: make(map[uuid.UUID]string),
		txEvents:    make(map[string]struct{}),
		events:      make(map[string]domain.ProcessedEvent),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.jobs {
		c.jobs[k] = v
	}
	for k, v := range t.wallets {
		c.wallets[k] = v
	}
	for k, v := range t.walletUsers {
		c.walletUsers[k] = v
	}
	c.transactions = append(c.transactions, t.transactions...)
	for k := range t.txEvents {
		c.txEvents[k] = struct{}{}
	}
	for k, v := range t.events {
		c.events[k] = v
	}
	return c
}

// Store is safe for concurrent use. A transaction holds the store lock until
// it finishes, so transactions are serialized.
type Store struct {
	mu   sync.Mutex
	data tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: newTables(),
		now:  time.Now,
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(struct{})
	return ok
}

// lock is a no-op inside a transaction, which already owns the lock.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Begin implements pg.TXManager. On error or panic every change made by fn is
// discarded.
func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

var _ pg.TXManager = (*Store)(nil)

func (s *Store) Jobs() *JobRepo {
	return &JobRepo{s: s}
}

func (s *Store) Wallets() *WalletRepo {
	return &WalletRepo{s: s}
}

func (s *Store) Transactions() *TransactionRepo {
	return &TransactionRepo{s: s}
}

func (s *Store) Events() *EventRepo {
	return &EventRepo{s: s}
}
