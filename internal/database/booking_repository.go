package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/suitenest/hotel-backend/internal/models"
)

// ErrDuplicateReference is returned when a booking insert collides on
// the unique booking_reference constraint.
var ErrDuplicateReference = fmt.Errorf("booking reference already exists")

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, booking_reference, room_id, guest_name, guest_email, guest_phone,
	   check_in_date, check_out_date, total_amount,
	   payment_status, paid_at, booking_status, cancelled_at, cancellation_reason,
	   created_at, updated_at`

// Create durably writes a new booking row. The row must exist before
// the payer is ever redirected to the checkout page, so that any later
// callback carrying the reference has a record to reconcile against.
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, booking_reference, room_id, guest_name, guest_email, guest_phone,
			check_in_date, check_out_date, total_amount,
			payment_status, booking_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.BookingReference, booking.RoomID,
		booking.GuestName, booking.GuestEmail, booking.GuestPhone,
		booking.CheckInDate, booking.CheckOutDate, booking.TotalAmount,
		booking.PaymentStatus, booking.BookingStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}

	return nil
}

// GetByReference retrieves a booking by its booking reference
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = $1
	`

	return r.scanBooking(r.db.QueryRow(query, reference))
}

// GetByGuestEmail retrieves all bookings for a guest, newest first
func (r *BookingRepository) GetByGuestEmail(email string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_email = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByDateRange retrieves bookings created within [from, to), newest
// first. Used by the admin reports.
func (r *BookingRepository) GetByDateRange(from, to time.Time) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ConfirmPaid transitions a pending booking to paid and confirmed in a
// single statement. Pairing both fields in one guarded UPDATE is what
// keeps the cross-field invariant (never confirmed while unpaid) true
// on every write path. Returns false if the booking was not pending.
func (r *BookingRepository) ConfirmPaid(reference string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'paid',
			booking_status = 'confirmed',
			paid_at = NOW(),
			updated_at = NOW()
		WHERE booking_reference = $1
		  AND booking_status = 'pending'
	`

	result, err := r.db.Exec(query, reference)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// MarkPaymentPaid records a successful payment without confirming the
// booking. Used when the room availability flag could not be won and
// the booking is left pending for operator resolution.
func (r *BookingRepository) MarkPaymentPaid(reference string) error {
	query := `
		UPDATE bookings
		SET payment_status = 'paid', paid_at = NOW(), updated_at = NOW()
		WHERE booking_reference = $1
		  AND payment_status = 'pending'
	`

	_, err := r.db.Exec(query, reference)
	return err
}

// MarkPaymentFailed records a failed or abandoned payment and cancels
// the pending booking.
func (r *BookingRepository) MarkPaymentFailed(reference, reason string) error {
	query := `
		UPDATE bookings
		SET payment_status = 'failed',
			booking_status = 'cancelled',
			cancelled_at = NOW(),
			cancellation_reason = $2,
			updated_at = NOW()
		WHERE booking_reference = $1
		  AND booking_status = 'pending'
	`

	_, err := r.db.Exec(query, reference, reason)
	return err
}

// scanBooking scans a single booking
func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var guestPhone sql.NullString
	var paidAt sql.NullTime
	var cancelledAt sql.NullTime
	var cancellationReason sql.NullString

	err := row.Scan(
		&booking.ID, &booking.BookingReference, &booking.RoomID,
		&booking.GuestName, &booking.GuestEmail, &guestPhone,
		&booking.CheckInDate, &booking.CheckOutDate, &booking.TotalAmount,
		&booking.PaymentStatus, &paidAt, &booking.BookingStatus,
		&cancelledAt, &cancellationReason,
		&booking.CreatedAt, &booking.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if guestPhone.Valid {
		booking.GuestPhone = &guestPhone.String
	}
	if paidAt.Valid {
		booking.PaidAt = &paidAt.Time
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	if cancellationReason.Valid {
		booking.CancellationReason = &cancellationReason.String
	}

	return booking, nil
}

// scanBookings scans multiple bookings from rows
func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
