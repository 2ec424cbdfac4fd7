package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/models"
	"github.com/suitenest/hotel-backend/internal/services"
)

// ContactHandler handles contact form submissions
type ContactHandler struct {
	contactSvc *services.ContactService
	logger     *logrus.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactSvc *services.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{
		contactSvc: contactSvc,
		logger:     logger,
	}
}

// SubmitContact handles POST /api/contact. The submission is stored
// before any relay attempt; a failed email never fails the request.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	message, err := h.contactSvc.Submit(&req, c.ClientIP())
	if err != nil {
		var rateErr *services.RateLimitError
		var valErr *services.ValidationError
		switch {
		case errors.As(err, &rateErr):
			c.Header("Retry-After", rateErr.RetryAfterSeconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       rateErr.Message,
				"retry_after": rateErr.RetryAfter.Unix(),
			})
		case errors.As(err, &valErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Message, "field": valErr.Field})
		default:
			h.logger.WithError(err).Error("Contact submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":        message.ID,
			"timestamp": message.CreatedAt,
		},
	})
}
