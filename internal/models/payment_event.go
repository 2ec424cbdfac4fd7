package models

import "time"

// PaymentEventType classifies the gateway interaction being audited
type PaymentEventType string

const (
	PaymentEventInitialize PaymentEventType = "initialize"
	PaymentEventWebhook    PaymentEventType = "webhook"
	PaymentEventVerify     PaymentEventType = "verify"
)

// PaymentEvent is an append-only audit entry for every interaction with
// the payment gateway. Reconciliation disputes are settled from these
// rows, so writes must never be silently dropped.
type PaymentEvent struct {
	ID               string           `json:"id" db:"id"`
	BookingReference string           `json:"booking_reference" db:"booking_reference"`
	EventType        PaymentEventType `json:"event_type" db:"event_type"`
	EventSource      string           `json:"event_source" db:"event_source"` // "server", "gateway"
	ExpectedAmount   *int64           `json:"expected_amount,omitempty" db:"expected_amount"`
	ReceivedAmount   *int64           `json:"received_amount,omitempty" db:"received_amount"`
	AmountsMatch     *bool            `json:"amounts_match,omitempty" db:"amounts_match"`
	GatewayStatus    string           `json:"gateway_status" db:"gateway_status"`
	RawPayload       []byte           `json:"-" db:"raw_payload"`
	ErrorMessage     *string          `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}
