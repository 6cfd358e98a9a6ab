package dto

type WebhookResponseDTO struct {
	Received bool   `json:"received" example:"true"`
	Outcome  string `json:"outcome" example:"applied"`
}
