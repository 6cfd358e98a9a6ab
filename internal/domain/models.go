package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "OPEN"
	JobStatusConfirmed  JobStatus = "CONFIRMED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusPaid       JobStatus = "PAID"
	JobStatusCancelled  JobStatus = "CANCELLED"
	JobStatusRejected   JobStatus = "REJECTED"
)

type TransactionType string

const (
	TransactionTypeCredit   TransactionType = "CREDIT"
	TransactionTypeDebit    TransactionType = "DEBIT"
	TransactionTypeTransfer TransactionType = "TRANSFER"
	TransactionTypePayout   TransactionType = "PAYOUT"
	TransactionTypeRefund   TransactionType = "REFUND"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

type EventStatus string

const (
	// EventStatusClaimed the event id is reserved, effects not yet confirmed;
	EventStatusClaimed EventStatus = "CLAIMED"
	// EventStatusApplied effects are durable;
	EventStatusApplied EventStatus = "APPLIED"
	// EventStatusFailed the handler failed after the claim, needs manual reconciliation.
	EventStatusFailed EventStatus = "FAILED"
)

type Job struct {
	ID                 string              `db:"id"`
	ClientID           string              `db:"client_id"`
	ProviderID         *string             `db:"provider_id"`
	Status             JobStatus           `db:"status"`
	PriceTotal         decimal.Decimal     `db:"price_total"`
	AgencyFee          decimal.Decimal     `db:"agency_fee"`
	ProviderPayout     decimal.Decimal     `db:"provider_payout"`
	PlatformFeePercent decimal.NullDecimal `db:"platform_fee_percent"`
	CreatedAt          time.Time           `db:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at"`
}

// JobTransition is the result of a conditional status change.
// From is the status the job had before the attempt.
type JobTransition struct {
	JobID              string
	From               JobStatus
	To                 JobStatus
	Applied            bool
	PlatformFeePercent decimal.NullDecimal
}

type Wallet struct {
	ID             uuid.UUID       `db:"id"`
	UserID         string          `db:"user_id"`
	Balance        decimal.Decimal `db:"balance"`
	PendingBalance decimal.Decimal `db:"pending_balance"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Deduction reports how a refund was split across the two wallet buckets.
type Deduction struct {
	Wallet      Wallet
	FromPending decimal.Decimal
	FromBalance decimal.Decimal
}

func (d Deduction) Total() decimal.Decimal {
	return d.FromPending.Add(d.FromBalance)
}

// JobTotals sums a job's ledger rows on one wallet. Refunded is a positive magnitude.
type JobTotals struct {
	Credited decimal.Decimal
	Refunded decimal.Decimal
}

// Outstanding is what a refund may still take back: the provider share of the
// cumulative refunded amount, capped at what was credited, minus earlier refunds.
func (t JobTotals) Outstanding(share decimal.Decimal) decimal.Decimal {
	return decimal.Min(share, t.Credited).Sub(t.Refunded)
}

type WalletTransaction struct {
	ID          uuid.UUID         `db:"id"`
	WalletID    uuid.UUID         `db:"wallet_id"`
	Type        TransactionType   `db:"type"`
	Amount      decimal.Decimal   `db:"amount"`
	Status      TransactionStatus `db:"status"`
	Description string            `db:"description"`
	JobID       string            `db:"job_id"`
	EventID     string            `db:"event_id"`
	CreatedAt   time.Time         `db:"created_at"`
}

type ProcessedEvent struct {
	EventID     string      `db:"event_id"`
	EventType   string      `db:"event_type"`
	Status      EventStatus `db:"status"`
	Error       string      `db:"error"`
	ProcessedAt time.Time   `db:"processed_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type NotificationType string

const (
	NotificationPaymentReceived NotificationType = "PAYMENT_RECEIVED"
	NotificationPaymentFailed   NotificationType = "PAYMENT_FAILED"
	NotificationPaymentRefunded NotificationType = "PAYMENT_REFUNDED"
)

type Notification struct {
	UserID  string            `json:"userId"`
	Type    NotificationType  `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}
