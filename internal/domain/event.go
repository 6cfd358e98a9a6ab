package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrMalformedEvent = errors.New("malformed event")

type EventKind int

const (
	EventUnknown EventKind = iota
	EventCheckoutCompleted
	EventPaymentSucceeded
	EventPaymentFailed
	EventChargeRefunded
)

// Provider type names.
const (
	TypeCheckoutCompleted = "checkout.session.completed"
	TypePaymentSucceeded  = "payment_intent.succeeded"
	TypePaymentFailed     = "payment_intent.payment_failed"
	TypeChargeRefunded    = "charge.refunded"
)

var kindByType = map[string]EventKind{
	TypeCheckoutCompleted: EventCheckoutCompleted,
	TypePaymentSucceeded:  EventPaymentSucceeded,
	TypePaymentFailed:     EventPaymentFailed,
	TypeChargeRefunded:    EventChargeRefunded,
}

func (k EventKind) String() string {
	switch k {
	case EventCheckoutCompleted:
		return "checkout_completed"
	case EventPaymentSucceeded:
		return "payment_succeeded"
	case EventPaymentFailed:
		return "payment_failed"
	case EventChargeRefunded:
		return "charge_refunded"
	default:
		return "unknown"
	}
}

// Payload is implemented by every typed event body.
type Payload interface {
	Kind() EventKind
}

type CheckoutCompleted struct {
	JobID      string
	ProviderID string
	ClientID   string
	AmountPaid decimal.Decimal
}

func (CheckoutCompleted) Kind() EventKind { return EventCheckoutCompleted }

type PaymentSucceeded struct {
	PaymentID string
	JobID     string
}

func (PaymentSucceeded) Kind() EventKind { return EventPaymentSucceeded }

type PaymentFailed struct {
	PaymentID string
	JobID     string
	ClientID  string
	Reason    string
}

func (PaymentFailed) Kind() EventKind { return EventPaymentFailed }

type ChargeRefunded struct {
	ChargeID       string
	JobID          string
	ProviderID     string
	RefundedAmount decimal.Decimal
}

func (ChargeRefunded) Kind() EventKind { return EventChargeRefunded }

type Unknown struct{}

func (Unknown) Kind() EventKind { return EventUnknown }

// Event is a decoded provider notification. Payload is nil when the object
// body of a known type could not be decoded.
type Event struct {
	ID        string
	Type      string
	Kind      EventKind
	CreatedAt time.Time
	Payload   Payload
}

type envelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type eventObject struct {
	ID               string            `json:"id"`
	AmountTotal      *int64            `json:"amount_total"`
	AmountRefunded   *int64            `json:"amount_refunded"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// DecodeEvent parses the provider envelope. Only a missing id or type, or
// invalid JSON at the envelope level, is an error.
func DecodeEvent(raw []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	env.ID = strings.TrimSpace(env.ID)
	env.Type = strings.TrimSpace(env.Type)
	if env.ID == "" || env.Type == "" {
		return nil, fmt.Errorf("%w: id and type are required", ErrMalformedEvent)
	}

	event := &Event{
		ID:   env.ID,
		Type: env.Type,
		Kind: kindByType[env.Type],
	}
	if env.Created > 0 {
		event.CreatedAt = time.Unix(env.Created, 0).UTC()
	}
	if event.Kind == EventUnknown {
		event.Payload = Unknown{}
		return event, nil
	}

	var obj eventObject
	if len(env.Data.Object) == 0 || json.Unmarshal(env.Data.Object, &obj) != nil {
		return event, nil
	}
	event.Payload = obj.payload(event.Kind)
	return event, nil
}

func (o eventObject) meta(key string) string {
	return strings.TrimSpace(o.Metadata[key])
}

func (o eventObject) payload(kind EventKind) Payload {
	switch kind {
	case EventCheckoutCompleted:
		p := CheckoutCompleted{
			JobID:      o.meta("jobId"),
			ProviderID: o.meta("providerId"),
			ClientID:   o.meta("clientId"),
		}
		if o.AmountTotal != nil {
			p.AmountPaid = FromMinorUnits(*o.AmountTotal)
		}
		return p
	case EventPaymentSucceeded:
		return PaymentSucceeded{PaymentID: o.ID, JobID: o.meta("jobId")}
	case EventPaymentFailed:
		p := PaymentFailed{PaymentID: o.ID, JobID: o.meta("jobId"), ClientID: o.meta("clientId")}
		if o.LastPaymentError != nil {
			p.Reason = o.LastPaymentError.Message
		}
		return p
	case EventChargeRefunded:
		p := ChargeRefunded{
			ChargeID:   o.ID,
			JobID:      o.meta("jobId"),
			ProviderID: o.meta("providerId"),
		}
		if o.AmountRefunded != nil {
			p.RefundedAmount = FromMinorUnits(*o.AmountRefunded)
		}
		return p
	}
	return Unknown{}
}

// Validate checks that the payload carries what its handler needs.
func (e *Event) Validate() error {
	if e.Kind == EventUnknown {
		return nil
	}
	if e.Payload == nil || e.Payload.Kind() != e.Kind {
		return NewIntegrityWarning(e.ID, "payload of %s could not be decoded", e.Type)
	}
	switch p := e.Payload.(type) {
	case CheckoutCompleted:
		return requireLedgerFields(e.ID, p.JobID, p.ProviderID, p.AmountPaid)
	case ChargeRefunded:
		return requireLedgerFields(e.ID, p.JobID, p.ProviderID, p.RefundedAmount)
	}
	return nil
}

func requireLedgerFields(eventID, jobID, providerID string, amount decimal.Decimal) error {
	if jobID == "" {
		return NewIntegrityWarning(eventID, "jobId is missing")
	}
	if providerID == "" {
		return NewIntegrityWarning(eventID, "providerId is missing for job %s", jobID)
	}
	if !amount.IsPositive() {
		return NewIntegrityWarning(eventID, "amount %s is not positive for job %s", amount.StringFixed(MoneyPlaces), jobID)
	}
	return nil
}

// IntegrityWarning marks an event that is acknowledged without (further) effects
// because retrying it cannot help.
type IntegrityWarning struct {
	EventID string
	Reason  string
}

func NewIntegrityWarning(eventID, format string, args ...any) *IntegrityWarning {
	return &IntegrityWarning{EventID: eventID, Reason: fmt.Sprintf(format, args...)}
}

func (w *IntegrityWarning) Error() string {
	return fmt.Sprintf("event %s: %s", w.EventID, w.Reason)
}
