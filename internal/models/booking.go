package models

import (
	"errors"
	"math"
	"time"
)

// PaymentStatus represents the payment status of a booking
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a room reservation. Rows are append-only:
// cancellation is a status transition, never a delete. The booking
// reference doubles as the payment gateway transaction reference and is
// the join key between the two systems.
type Booking struct {
	ID                 string        `json:"id" db:"id"`
	BookingReference   string        `json:"booking_reference" db:"booking_reference"`
	RoomID             string        `json:"room_id" db:"room_id"`
	GuestName          string        `json:"guest_name" db:"guest_name"`
	GuestEmail         string        `json:"guest_email" db:"guest_email"`
	GuestPhone         *string       `json:"guest_phone,omitempty" db:"guest_phone"`
	CheckInDate        time.Time     `json:"check_in_date" db:"check_in_date"`
	CheckOutDate       time.Time     `json:"check_out_date" db:"check_out_date"`
	TotalAmount        float64       `json:"total_amount" db:"total_amount"`
	PaymentStatus      PaymentStatus `json:"payment_status" db:"payment_status"`
	PaidAt             *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	BookingStatus      BookingStatus `json:"booking_status" db:"booking_status"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateBookingRequest represents the request to initiate a booking
type CreateBookingRequest struct {
	RoomID       string  `json:"room_id" binding:"required"`
	GuestName    string  `json:"guest_name" binding:"required"`
	GuestEmail   string  `json:"guest_email" binding:"required"`
	GuestPhone   *string `json:"guest_phone,omitempty"`
	CheckInDate  string  `json:"check_in_date" binding:"required"`  // YYYY-MM-DD
	CheckOutDate string  `json:"check_out_date" binding:"required"` // YYYY-MM-DD
}

// Nights returns the length of the stay in nights.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

// AmountMinorUnits converts the total amount to the gateway's minor
// currency unit (multiply by 100, rounded).
func (b *Booking) AmountMinorUnits() int64 {
	return int64(math.Round(b.TotalAmount * 100))
}

// IsPaid checks if the booking is paid
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// IsConfirmed checks if the booking has been confirmed
func (b *Booking) IsConfirmed() bool {
	return b.BookingStatus == BookingStatusConfirmed
}

// Validate checks the booking's internal invariants. A booking must
// never be confirmed unless its payment status is paid, and the stay
// must span at least one night.
func (b *Booking) Validate() error {
	if b.BookingStatus == BookingStatusConfirmed && b.PaymentStatus != PaymentStatusPaid {
		return errors.New("booking cannot be confirmed without a paid payment status")
	}
	if !b.CheckInDate.Before(b.CheckOutDate) {
		return errors.New("check_in_date must be before check_out_date")
	}
	return nil
}
