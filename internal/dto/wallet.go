package dto

import (
	"time"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

type WalletResponseDTO struct {
	ID             string    `json:"id" example:"7a0c2a1e-3a5f-4bb8-9c59-1a1d6c1d2f10"`
	UserID         string    `json:"userId" example:"P1"`
	Balance        string    `json:"balance" example:"120.00"`
	PendingBalance string    `json:"pendingBalance" example:"80.00"`
	UpdatedAt      time.Time `json:"updatedAt" example:"2024-03-10T12:00:00Z"`
}

type TransactionResponseDTO struct {
	ID          string    `json:"id" example:"a3f1a8f4-2d0e-4c5e-8d3c-3e7f0b6a9a11"`
	Type        string    `json:"type" example:"CREDIT"`
	Amount      string    `json:"amount" example:"80.00"`
	Status      string    `json:"status" example:"PENDING"`
	Description string    `json:"description" example:"Payment for job J1"`
	JobID       string    `json:"jobId,omitempty" example:"J1"`
	EventID     string    `json:"eventId,omitempty" example:"evt_A"`
	CreatedAt   time.Time `json:"createdAt" example:"2024-03-10T12:00:00Z"`
}

type StatementResponseDTO struct {
	Wallet       WalletResponseDTO        `json:"wallet"`
	Transactions []TransactionResponseDTO `json:"transactions"`
}

func NewWalletResponseDTO(w domain.Wallet) WalletResponseDTO {
	return WalletResponseDTO{
		ID:             w.ID.String(),
		UserID:         w.UserID,
		Balance:        w.Balance.StringFixed(domain.MoneyPlaces),
		PendingBalance: w.PendingBalance.StringFixed(domain.MoneyPlaces),
		UpdatedAt:      w.UpdatedAt,
	}
}

func NewTransactionResponseDTO(t domain.WalletTransaction) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:          t.ID.String(),
		Type:        string(t.Type),
		Amount:      t.Amount.StringFixed(domain.MoneyPlaces),
		Status:      string(t.Status),
		Description: t.Description,
		JobID:       t.JobID,
		EventID:     t.EventID,
		CreatedAt:   t.CreatedAt,
	}
}
