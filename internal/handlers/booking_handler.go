package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/models"
	"github.com/suitenest/hotel-backend/internal/services"
)

// BookingHandler handles the public booking surface: initiation, the
// post-redirect status check, and the guest's bookings list.
type BookingHandler struct {
	bookingSvc *services.BookingService
	logger     *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingSvc *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingSvc: bookingSvc,
		logger:     logger,
	}
}

// CreateBooking initiates a booking: writes the pending record, obtains
// the hosted-checkout URL and returns it for the redirect.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.bookingSvc.InitiateBooking(c.Request.Context(), &req)
	if err != nil {
		var valErr *services.ValidationError
		switch {
		case errors.As(err, &valErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Message, "field": valErr.Field})
		case errors.Is(err, services.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		case errors.Is(err, services.ErrRoomUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Room is no longer available for the selected dates"})
		case errors.Is(err, services.ErrPaymentInit):
			// The pending booking survives; the guest can retry from
			// their bookings list.
			h.logger.WithError(err).Error("Payment initialization failed")
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "We could not start the payment. Please try again.",
				"hint":  "Your booking has been saved and can be retried from your bookings page.",
			})
		default:
			h.logger.WithError(err).Error("Booking initiation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// CheckBooking implements the post-redirect status probe:
// GET /api/check-booking?ref=<reference>.
// A missing record is not an error; the client routes to the bookings
// list. This endpoint never writes.
func (h *BookingHandler) CheckBooking(c *gin.Context) {
	reference := c.Query("ref")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ref query parameter is required"})
		return
	}

	status, booking, err := h.bookingSvc.CheckBookingStatus(reference)
	if err != nil {
		h.logger.WithError(err).WithField("reference", reference).Error("Booking status check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if status == services.StatusUnknown {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists": true,
		"status": status,
		"booking": gin.H{
			"id":             booking.ID,
			"booking_id":     booking.BookingReference,
			"payment_status": booking.PaymentStatus,
			"booking_status": booking.BookingStatus,
		},
	})
}

// GetMyBookings returns a guest's bookings, the durable list view the
// pending route de-escalates to.
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	bookings, err := h.bookingSvc.GetBookingsByEmail(email)
	if err != nil {
		var valErr *services.ValidationError
		if errors.As(err, &valErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Message})
			return
		}
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"bookings": bookings,
	})
}
