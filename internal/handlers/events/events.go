package events

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/dto"
	"github.com/GlebRadaev/servicehub/internal/service/walletservice"
	"github.com/GlebRadaev/servicehub/pkg/utils"
)

//go:generate mockgen -source=events.go -destination=mock_events.go -package=events

type Service interface {
	ListEvents(ctx context.Context, status domain.EventStatus, limit int) ([]domain.ProcessedEvent, error)
}

type EventsHandler struct {
	walletService Service
}

func New(walletService Service) *EventsHandler {
	return &EventsHandler{
		walletService: walletService,
	}
}

// ListEvents godoc
//
//	@Summary		List processed events
//	@Description	Lists idempotency records by status. FAILED records form the manual reconciliation queue.
//	@Tags			Events
//	@Produce		json
//	@Param			status	query		string							false	"CLAIMED, APPLIED or FAILED"	default(FAILED)
//	@Param			limit	query		int								false	"Max records, 1..500"			default(50)
//	@Success		200		{array}		dto.ProcessedEventResponseDTO	"Events"
//	@Failure		400		{object}	utils.Response					"Invalid status or limit"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/events [get]
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := domain.EventStatusFailed
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status = domain.EventStatus(strings.ToUpper(raw))
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.walletService.ListEvents(r.Context(), status, limit)
	if err != nil {
		if errors.Is(err, walletservice.ErrInvalidStatus) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.ProcessedEventResponseDTO, len(events))
	for i, e := range events {
		response[i] = dto.NewProcessedEventResponseDTO(e)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
