package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/config"
	"github.com/GlebRadaev/servicehub/internal/consumer"
	"github.com/GlebRadaev/servicehub/internal/handlers"
	"github.com/GlebRadaev/servicehub/internal/notifier"
	"github.com/GlebRadaev/servicehub/internal/pg"
	"github.com/GlebRadaev/servicehub/internal/pruner"
	"github.com/GlebRadaev/servicehub/internal/repo"
	"github.com/GlebRadaev/servicehub/internal/repo/memory"
	"github.com/GlebRadaev/servicehub/internal/service"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/pkg/clients"
	"github.com/GlebRadaev/servicehub/pkg/logger"
	"github.com/GlebRadaev/servicehub/pkg/signature"
)

const shutdownTimeout = 5 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg        *config.Config
	api        *handlers.Handlers
	srv        *service.Services
	repo       *repo.Repositories
	dispatcher *notifier.Dispatcher
	pruner     *pruner.Service

	closers []io.Closer
	errCh   chan error
	wg      sync.WaitGroup
	ready   bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.start(ctx, config.New())
}

func (a *Application) start(ctx context.Context, cfg *config.Config) error {
	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	a.cfg = cfg

	opts, err := ledgerservice.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("can't read ledger options: %w", err)
	}

	if err = a.initRepositories(ctx); err != nil {
		return err
	}

	sender := buildSender(cfg)
	if c, ok := sender.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	a.dispatcher, err = notifier.New(sender, cfg.NotifyWorkers)
	if err != nil {
		return fmt.Errorf("can't build notifier: %w", err)
	}

	verifier := signature.NewVerifier(cfg.WebhookSecret, cfg.SignatureTolerance, cfg.IsDevelopment())
	if cfg.WebhookSecret == "" && !cfg.IsDevelopment() {
		zap.L().Error("PAYMENT_WEBHOOK_SECRET is not set, every webhook will be rejected")
	}

	a.srv = service.New(a.repo, verifier, a.dispatcher, opts, cfg.RequestTimeout)
	a.api = handlers.New(a.srv)
	a.pruner = pruner.New(a.repo.EventRepo, cfg.EventRetention, cfg.PruneInterval)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	a.startConsumer(ctx)
	a.startPruner(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully",
		zap.String("storage", cfg.Storage),
		zap.String("policy", opts.Policy),
		zap.String("signatureMode", verifier.Mode()),
	)
	return nil
}

func (a *Application) initRepositories(ctx context.Context) error {
	if a.cfg.Storage == config.StorageMemory {
		zap.L().Warn("using in-memory storage, data is lost on restart")
		a.repo = repo.NewMemory(memory.NewStore())
		return nil
	}

	pool, err := getPgxpool(ctx, a.cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	a.closers = append(a.closers, poolCloser{pool})

	a.repo = repo.New(pg.New(pool), pg.NewTXManager(pool))
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

type poolCloser struct {
	pool *pgxpool.Pool
}

func (p poolCloser) Close() error {
	p.pool.Close()
	return nil
}

// buildSender picks Kafka, then HTTP, then the log.
func buildSender(cfg *config.Config) notifier.Sender {
	switch {
	case len(cfg.KafkaBrokers) > 0:
		zap.L().Info("notifications go to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.NotifyTopic))
		return notifier.NewKafkaSender(cfg.KafkaBrokers, cfg.NotifyTopic)
	case cfg.NotifierURL != "":
		zap.L().Info("notifications go to http", zap.String("url", cfg.NotifierURL))
		return notifier.NewHTTPSender(cfg.NotifierURL, clients.NewHTTPClient())
	default:
		return notifier.LogSender{}
	}
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startConsumer(ctx context.Context) {
	if a.cfg.PaymentEventsTopic == "" || len(a.cfg.KafkaBrokers) == 0 {
		return
	}
	c := consumer.New(a.cfg.KafkaBrokers, a.cfg.PaymentEventsTopic, a.cfg.ConsumerGroup, a.srv.PaymentService)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		c.Run(ctx)
	}()
}

func (a *Application) startPruner(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.pruner.Run(ctx)
	}()
}

// close releases the notifier and storage once every component has stopped.
func (a *Application) close() {
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(shutdownTimeout); err != nil {
			zap.L().Warn("notifier did not drain in time", zap.Error(err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			zap.L().Error("close failed", zap.Error(err))
		}
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	a.close()
	close(a.errCh)
	wg.Wait()

	return appErr
}
