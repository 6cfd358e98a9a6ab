package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/dto"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/pkg/signature"
	"github.com/GlebRadaev/servicehub/pkg/utils"
)

//go:generate mockgen -source=webhook.go -destination=mock_webhook.go -package=webhook

const maxBodyBytes = 1 << 20

type Service interface {
	Ingest(ctx context.Context, body []byte, signatureHeader string) (ledgerservice.Outcome, error)
}

type WebhookHandler struct {
	paymentService Service
}

func New(paymentService Service) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

// HandlePayment godoc
//
//	@Summary		Receive a payment provider event
//	@Description	Verifies the Payment-Signature header against the raw body and applies the event to the job and wallet ledger exactly once.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Payment-Signature	header		string					true	"t=<unix>,v1=<hex hmac>"
//	@Success		200					{object}	dto.WebhookResponseDTO	"Event acknowledged"
//	@Failure		400					{object}	utils.Response			"Invalid signature or malformed event"
//	@Failure		500					{object}	utils.Response			"Webhook secret is not configured"
//	@Failure		503					{object}	utils.Response			"Processing failed, retry later"
//	@Router			/api/webhooks/payments [post]
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	outcome, err := h.paymentService.Ingest(r.Context(), body, r.Header.Get(signature.HeaderName))
	if err != nil {
		switch {
		case errors.Is(err, signature.ErrInvalidSignature):
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid signature")
		case errors.Is(err, domain.ErrMalformedEvent):
			utils.RespondWithError(w, http.StatusBadRequest, "Malformed event")
		case errors.Is(err, signature.ErrMissingSecret):
			zap.L().Error("Payment webhook secret is not configured")
			utils.RespondWithError(w, http.StatusInternalServerError, "Webhook secret is not configured")
		default:
			utils.RespondWithError(w, http.StatusServiceUnavailable, "Event processing failed")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.WebhookResponseDTO{
		Received: true,
		Outcome:  string(outcome),
	})
}
