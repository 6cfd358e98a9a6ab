package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/servicehub/docs"
	eventshandlers "github.com/GlebRadaev/servicehub/internal/handlers/events"
	wallethandlers "github.com/GlebRadaev/servicehub/internal/handlers/wallet"
	webhookhandlers "github.com/GlebRadaev/servicehub/internal/handlers/webhook"
	"github.com/GlebRadaev/servicehub/internal/service"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type WebhookHandler interface {
	HandlePayment(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
}

type EventsHandler interface {
	ListEvents(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	WebhookHandler WebhookHandler
	WalletHandler  WalletHandler
	EventsHandler  EventsHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		WebhookHandler: webhookhandlers.New(s.PaymentService),
		WalletHandler:  wallethandlers.New(s.WalletService),
		EventsHandler:  eventshandlers.New(s.WalletService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Post("/webhooks/payments", h.WebhookHandler.HandlePayment)

		r.Route("/wallets/{userID}", func(r chi.Router) {
			r.Get("/", h.WalletHandler.GetWallet)
			r.Get("/transactions", h.WalletHandler.GetTransactions)
		})
		r.Get("/events", h.EventsHandler.ListEvents)
	})

	return r
}
