package dto

import (
	"time"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

type ProcessedEventResponseDTO struct {
	EventID     string    `json:"eventId" example:"evt_A"`
	EventType   string    `json:"eventType" example:"checkout.session.completed"`
	Status      string    `json:"status" example:"FAILED"`
	Error       string    `json:"error,omitempty" example:"providerId is missing for job J1"`
	ProcessedAt time.Time `json:"processedAt" example:"2024-03-10T12:00:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2024-03-10T12:00:01Z"`
}

func NewProcessedEventResponseDTO(e domain.ProcessedEvent) ProcessedEventResponseDTO {
	return ProcessedEventResponseDTO{
		EventID:     e.EventID,
		EventType:   e.EventType,
		Status:      string(e.Status),
		Error:       e.Error,
		ProcessedAt: e.ProcessedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
