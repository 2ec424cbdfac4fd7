package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/services"
)

// PaymentHandler receives gateway callbacks. The webhook body is never
// trusted on its own: the signature gates processing and the actual
// state transition goes through a secret-key verify call.
type PaymentHandler struct {
	bookingSvc *services.BookingService
	paystack   *services.PaystackService
	logger     *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(bookingSvc *services.BookingService, paystack *services.PaystackService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		bookingSvc: bookingSvc,
		paystack:   paystack,
		logger:     logger,
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleWebhook handles POST /api/v1/payments/webhook. Signature
// failures get 401; anything after a valid signature gets 200 so the
// gateway does not redeliver a payload we have already audited.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !h.paystack.VerifyWebhookSignature(body, signature) {
		h.logger.WithField("remote_ip", c.ClientIP()).Warn("Webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.WithError(err).Warn("Webhook payload is not valid JSON")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.bookingSvc.HandleWebhookEvent(c.Request.Context(), payload.Event, payload.Data.Reference, body); err != nil {
		// Logged and audited inside the service. Still 200: the event
		// was authenticated and recorded, redelivery would not help.
		h.logger.WithError(err).WithFields(logrus.Fields{
			"event":     payload.Event,
			"reference": payload.Data.Reference,
		}).Error("Webhook processing failed")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// VerifyPayment handles GET /api/v1/payments/verify/:reference, the
// trusted reconciliation the client triggers when a status probe comes
// back pending.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference is required"})
		return
	}

	status, err := h.bookingSvc.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		h.logger.WithError(err).WithField("reference", reference).Error("Payment verification failed")
		if errors.Is(err, services.ErrRoomUnavailable) {
			// Payment recorded but the room was taken in the meantime.
			// The booking stays pending for operator resolution.
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"status":  status,
				"error":   "Payment received but the room is no longer available. Our team will contact you.",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"status":  status,
			"error":   "Could not verify the payment. Please try again shortly.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
	})
}
