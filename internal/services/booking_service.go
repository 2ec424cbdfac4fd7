package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/database"
	"github.com/suitenest/hotel-backend/internal/models"
	"github.com/suitenest/hotel-backend/pkg/validator"
)

var (
	// ErrRoomNotFound indicates the requested room does not exist
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomUnavailable indicates the room's availability flag could
	// not be won at confirmation time
	ErrRoomUnavailable = errors.New("room is no longer available")

	// ErrPaymentInit indicates the gateway rejected or never received
	// the initialization; the pending booking row is kept so the
	// attempt is retryable by reference
	ErrPaymentInit = errors.New("payment initialization failed")

	// ErrReferenceGeneration indicates two consecutive reference
	// collisions, which should be cryptographically improbable
	ErrReferenceGeneration = errors.New("failed to generate a unique booking reference")
)

// ValidationError is a user-correctable input error (400)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusResult is the reconciler's tagged routing decision for the
// untrusted browser-side check. It is deliberately a read-only verdict:
// the browser never gets to assert payment success.
type StatusResult string

const (
	// StatusUnknown means no booking exists for the reference
	StatusUnknown StatusResult = "unknown"
	// StatusPending means the booking exists but the authoritative
	// confirmation has not landed yet
	StatusPending StatusResult = "pending"
	// StatusConfirmed means payment is recorded and the booking is confirmed
	StatusConfirmed StatusResult = "confirmed"
	// StatusFailed means the payment failed or was abandoned
	StatusFailed StatusResult = "failed"
)

// BookingService implements booking initiation and the payment
// completion reconciler. CheckBookingStatus is the untrusted read path;
// VerifyPayment is the credential-gated write path. They must never be
// merged into one operation with a trust toggle.
type BookingService struct {
	bookingRepo *database.BookingRepository
	roomRepo    *database.RoomRepository
	eventRepo   *database.PaymentEventRepository
	gateway     PaymentGateway
	emails      *validator.EmailValidator
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	roomRepo *database.RoomRepository,
	eventRepo *database.PaymentEventRepository,
	gateway PaymentGateway,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		eventRepo:   eventRepo,
		gateway:     gateway,
		emails:      validator.NewEmailValidator(),
		logger:      logger,
	}
}

// InitiateBookingResult is returned to the caller for the redirect
type InitiateBookingResult struct {
	BookingReference string  `json:"booking_reference"`
	AuthorizationURL string  `json:"authorization_url"`
	TotalAmount      float64 `json:"total_amount"`
}

// InitiateBooking creates a pending booking row and obtains a
// hosted-checkout authorization. The row is durably written before the
// gateway is ever called, so a later callback with the reference always
// has a record to reconcile against.
func (s *BookingService) InitiateBooking(ctx context.Context, req *models.CreateBookingRequest) (*InitiateBookingResult, error) {
	email, err := s.emails.Validate(req.GuestEmail)
	if err != nil {
		return nil, &ValidationError{Field: "guest_email", Message: err.Error()}
	}

	checkIn, err := time.Parse("2006-01-02", req.CheckInDate)
	if err != nil {
		return nil, &ValidationError{Field: "check_in_date", Message: "check_in_date must be in YYYY-MM-DD format"}
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOutDate)
	if err != nil {
		return nil, &ValidationError{Field: "check_out_date", Message: "check_out_date must be in YYYY-MM-DD format"}
	}
	if !checkIn.Before(checkOut) {
		return nil, &ValidationError{Field: "check_out_date", Message: "check_out_date must be after check_in_date"}
	}

	room, err := s.roomRepo.GetByID(req.RoomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	// Advisory only. The authoritative availability check is the
	// conditional update at confirmation time.
	if !room.IsAvailable {
		return nil, ErrRoomUnavailable
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	total := float64(nights) * room.NightlyRate()
	if total <= 0 {
		return nil, &ValidationError{Field: "total_amount", Message: "computed total amount must be positive"}
	}

	booking := &models.Booking{
		BookingReference: generateReference(),
		RoomID:           room.ID,
		GuestName:        strings.TrimSpace(req.GuestName),
		GuestEmail:       email,
		GuestPhone:       req.GuestPhone,
		CheckInDate:      checkIn,
		CheckOutDate:     checkOut,
		TotalAmount:      total,
		PaymentStatus:    models.PaymentStatusPending,
		BookingStatus:    models.BookingStatusPending,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		if err == database.ErrDuplicateReference {
			booking.ID = ""
			booking.BookingReference = generateReference()
			if err := s.bookingRepo.Create(booking); err != nil {
				return nil, ErrReferenceGeneration
			}
		} else {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}
	}

	initResult, err := s.initializeWithRetry(ctx, booking)
	if err != nil {
		// The pending row is kept: abandonable, or retryable by reference.
		s.logger.WithError(err).WithField("reference", booking.BookingReference).
			Error("Payment initialization failed, booking left pending")
		return nil, fmt.Errorf("%w: %v", ErrPaymentInit, err)
	}

	return &InitiateBookingResult{
		BookingReference: booking.BookingReference,
		AuthorizationURL: initResult.AuthorizationURL,
		TotalAmount:      booking.TotalAmount,
	}, nil
}

// initializeWithRetry calls the gateway, retrying exactly once when the
// failure was a transport problem rather than a gateway decision.
func (s *BookingService) initializeWithRetry(ctx context.Context, booking *models.Booking) (*InitializeResult, error) {
	req := &InitializeRequest{
		Email:       booking.GuestEmail,
		AmountMajor: booking.TotalAmount,
		Reference:   booking.BookingReference,
		Metadata: map[string]string{
			"room_id":   booking.RoomID,
			"check_in":  booking.CheckInDate.Format("2006-01-02"),
			"check_out": booking.CheckOutDate.Format("2006-01-02"),
		},
	}

	result, err := s.gateway.Initialize(ctx, req)
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.Retryable {
			s.logger.WithField("reference", booking.BookingReference).
				Warn("Gateway initialize failed with transport error, retrying once")
			result, err = s.gateway.Initialize(ctx, req)
		}
	}
	if err != nil {
		return nil, err
	}

	s.auditEvent(&models.PaymentEvent{
		BookingReference: booking.BookingReference,
		EventType:        models.PaymentEventInitialize,
		EventSource:      "server",
		ExpectedAmount:   int64Ptr(booking.AmountMinorUnits()),
		GatewayStatus:    "initialized",
	})

	return result, nil
}

// CheckBookingStatus is the untrusted, browser-facing reconciliation
// read. It is a pure read plus a routing decision: calling it any
// number of times never changes booking state. A pending verdict routes
// the user to their bookings list rather than polling; the
// authoritative confirmation is written by the trusted path.
func (s *BookingService) CheckBookingStatus(reference string) (StatusResult, *models.Booking, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return StatusUnknown, nil, nil
		}
		return StatusUnknown, nil, fmt.Errorf("failed to look up booking: %w", err)
	}

	switch {
	case booking.IsConfirmed() && booking.IsPaid():
		return StatusConfirmed, booking, nil
	case booking.PaymentStatus == models.PaymentStatusFailed:
		return StatusFailed, booking, nil
	default:
		return StatusPending, booking, nil
	}
}

// VerifyPayment is the trusted, server-side reconciliation write. It
// queries the gateway with the secret credential and is the only path
// authorized to transition a booking out of pending. Idempotent: a
// booking already paid short-circuits without touching the gateway.
func (s *BookingService) VerifyPayment(ctx context.Context, reference string) (StatusResult, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return StatusUnknown, nil
		}
		return StatusUnknown, fmt.Errorf("failed to look up booking: %w", err)
	}

	if booking.IsPaid() && booking.IsConfirmed() {
		return StatusConfirmed, nil
	}
	if booking.BookingStatus == models.BookingStatusCancelled {
		return StatusFailed, nil
	}

	verify, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.auditEvent(&models.PaymentEvent{
			BookingReference: reference,
			EventType:        models.PaymentEventVerify,
			EventSource:      "server",
			GatewayStatus:    "error",
			ErrorMessage:     stringPtr(err.Error()),
		})
		return StatusPending, fmt.Errorf("gateway verification failed: %w", err)
	}

	expected := booking.AmountMinorUnits()
	match := verify.AmountMinor == expected

	s.auditEvent(&models.PaymentEvent{
		BookingReference: reference,
		EventType:        models.PaymentEventVerify,
		EventSource:      "server",
		ExpectedAmount:   int64Ptr(expected),
		ReceivedAmount:   int64Ptr(verify.AmountMinor),
		AmountsMatch:     &match,
		GatewayStatus:    verify.Status,
		RawPayload:       verify.Raw,
	})

	switch verify.Status {
	case "success":
		if !match {
			return StatusPending, fmt.Errorf("gateway amount %d does not match booking amount %d for %s",
				verify.AmountMinor, expected, reference)
		}
		return s.confirmBooking(booking)
	case "failed", "abandoned":
		if err := s.bookingRepo.MarkPaymentFailed(reference, "payment "+verify.Status); err != nil {
			return StatusPending, fmt.Errorf("failed to record payment failure: %w", err)
		}
		return StatusFailed, nil
	default:
		// Gateway still shows the transaction in flight.
		return StatusPending, nil
	}
}

// confirmBooking wins the room's availability flag with a conditional
// update before confirming. Confirming on a stale pre-read of the flag
// is exactly the double-booking race this method exists to close.
func (s *BookingService) confirmBooking(booking *models.Booking) (StatusResult, error) {
	won, err := s.roomRepo.MarkUnavailableIfAvailable(booking.RoomID)
	if err != nil {
		return StatusPending, fmt.Errorf("failed to reserve room availability: %w", err)
	}

	if !won {
		// The flag may have been taken by a concurrent verification of
		// this same reference. Re-read before treating the room as lost.
		current, err := s.bookingRepo.GetByReference(booking.BookingReference)
		if err == nil && current.IsConfirmed() && current.IsPaid() {
			return StatusConfirmed, nil
		}

		// The payment is real even though the room is gone. Record it
		// and leave the booking pending for operator resolution.
		if err := s.bookingRepo.MarkPaymentPaid(booking.BookingReference); err != nil {
			return StatusPending, fmt.Errorf("failed to record payment: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"reference": booking.BookingReference,
			"room_id":   booking.RoomID,
		}).Warn("Payment verified but room no longer available")
		return StatusPending, ErrRoomUnavailable
	}

	confirmed, err := s.bookingRepo.ConfirmPaid(booking.BookingReference)
	if err != nil {
		return StatusPending, fmt.Errorf("failed to confirm booking: %w", err)
	}
	if !confirmed {
		// Lost a race with a concurrent verification of the same
		// reference; the other writer completed the transition.
		return StatusConfirmed, nil
	}

	s.logger.WithFields(logrus.Fields{
		"reference": booking.BookingReference,
		"room_id":   booking.RoomID,
	}).Info("Booking confirmed")

	return StatusConfirmed, nil
}

// HandleWebhookEvent processes a signature-verified gateway
// notification. The webhook is a trusted source (the signature proves
// origin), so it feeds the same verification path the admin uses.
func (s *BookingService) HandleWebhookEvent(ctx context.Context, eventType, reference string, raw []byte) error {
	s.auditEvent(&models.PaymentEvent{
		BookingReference: reference,
		EventType:        models.PaymentEventWebhook,
		EventSource:      "gateway",
		GatewayStatus:    eventType,
		RawPayload:       raw,
	})

	if eventType != "charge.success" {
		s.logger.WithFields(logrus.Fields{
			"event":     eventType,
			"reference": reference,
		}).Info("Ignoring non-charge webhook event")
		return nil
	}

	// Re-verify against the gateway rather than trusting the webhook
	// payload's amount: the verify endpoint is the ground truth.
	result, err := s.VerifyPayment(ctx, reference)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"reference": reference,
		"result":    result,
	}).Info("Webhook reconciliation completed")

	return nil
}

// GetBookingsByEmail returns a guest's bookings for the durable
// "my bookings" list view.
func (s *BookingService) GetBookingsByEmail(email string) ([]models.Booking, error) {
	sanitized, err := s.emails.Validate(email)
	if err != nil {
		return nil, &ValidationError{Field: "email", Message: err.Error()}
	}
	return s.bookingRepo.GetByGuestEmail(sanitized)
}

// GetBookingsByDateRange returns bookings created within [from, to),
// used by the admin listing and reports.
func (s *BookingService) GetBookingsByDateRange(from, to time.Time) ([]models.Booking, error) {
	return s.bookingRepo.GetByDateRange(from, to)
}

// GetPaymentEvents returns the audit trail for a booking reference,
// oldest first, for the admin reconciliation view.
func (s *BookingService) GetPaymentEvents(reference string) ([]models.PaymentEvent, error) {
	return s.eventRepo.GetByReference(reference)
}

// auditEvent writes a payment audit row; failures are logged, never
// propagated, so auditing can't break the payment path itself.
func (s *BookingService) auditEvent(event *models.PaymentEvent) {
	if err := s.eventRepo.Log(event); err != nil {
		s.logger.WithError(err).WithField("reference", event.BookingReference).
			Error("Failed to write payment event")
	}
}

// generateReference produces a fresh booking reference. Uniqueness is
// enforced by the database constraint; the uuid entropy makes a
// collision cryptographically improbable.
func generateReference() string {
	id := uuid.New().String()
	return "BK-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
