package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suitenest/hotel-backend/internal/models"
)

// PaymentEventRepository handles the append-only payment audit trail
type PaymentEventRepository struct {
	db DB
}

// NewPaymentEventRepository creates a new PaymentEventRepository
func NewPaymentEventRepository(db DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// Log creates a new payment event entry.
// This should never fail silently - payment events must be logged.
func (r *PaymentEventRepository) Log(event *models.PaymentEvent) error {
	if event == nil {
		return fmt.Errorf("payment event cannot be nil")
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO payment_events (
			id, booking_reference, event_type, event_source,
			expected_amount, received_amount, amounts_match,
			gateway_status, raw_payload, error_message, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.Exec(query,
		event.ID, event.BookingReference, event.EventType, event.EventSource,
		event.ExpectedAmount, event.ReceivedAmount, event.AmountsMatch,
		event.GatewayStatus, event.RawPayload, event.ErrorMessage, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log payment event: %w", err)
	}

	return nil
}

// GetByReference retrieves all payment events for a booking reference,
// oldest first, for reconciliation review.
func (r *PaymentEventRepository) GetByReference(reference string) ([]models.PaymentEvent, error) {
	query := `
		SELECT id, booking_reference, event_type, event_source,
			   expected_amount, received_amount, amounts_match,
			   gateway_status, raw_payload, error_message, created_at
		FROM payment_events
		WHERE booking_reference = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.PaymentEvent{}
	for rows.Next() {
		var event models.PaymentEvent
		err := rows.Scan(
			&event.ID, &event.BookingReference, &event.EventType, &event.EventSource,
			&event.ExpectedAmount, &event.ReceivedAmount, &event.AmountsMatch,
			&event.GatewayStatus, &event.RawPayload, &event.ErrorMessage, &event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
