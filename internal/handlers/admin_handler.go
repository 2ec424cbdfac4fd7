package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/suitenest/hotel-backend/internal/config"
	"github.com/suitenest/hotel-backend/internal/services"
	"github.com/suitenest/hotel-backend/pkg/jwt"
)

// AdminHandler serves the operator surface: login, manual payment
// verification, job triggers and booking reports.
type AdminHandler struct {
	cfg        config.AdminConfig
	jwtService *jwt.Service
	bookingSvc *services.BookingService
	reportSvc  *services.ReportService
	cronSvc    *services.CronService
	logger     *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	cfg config.AdminConfig,
	jwtService *jwt.Service,
	bookingSvc *services.BookingService,
	reportSvc *services.ReportService,
	cronSvc *services.CronService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		cfg:        cfg,
		jwtService: jwtService,
		bookingSvc: bookingSvc,
		reportSvc:  reportSvc,
		cronSvc:    cronSvc,
		logger:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Same response for a wrong email and a wrong password.
	if !strings.EqualFold(req.Email, h.cfg.Email) ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(req.Password)) != nil {
		h.logger.WithField("email", req.Email).Warn("Failed admin login attempt")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.jwtService.GenerateToken(h.cfg.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate admin token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int(h.cfg.TokenExpiry.Seconds()),
	})
}

// VerifyBookingPayment handles POST /api/v1/admin/bookings/:reference/verify-payment,
// the operator's manual run of the trusted reconciliation.
func (h *AdminHandler) VerifyBookingPayment(c *gin.Context) {
	reference := c.Param("reference")

	status, err := h.bookingSvc.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		h.logger.WithError(err).WithField("reference", reference).Error("Manual payment verification failed")

		code := http.StatusInternalServerError
		var gatewayErr *services.GatewayError
		switch {
		case errors.Is(err, services.ErrRoomUnavailable):
			code = http.StatusConflict
		case errors.As(err, &gatewayErr):
			code = http.StatusBadGateway
		}
		c.JSON(code, gin.H{
			"success": false,
			"status":  status,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
	})
}

// GetBookingPaymentEvents handles GET /api/v1/admin/bookings/:reference/payment-events,
// the audit trail backing a reconciliation review.
func (h *AdminHandler) GetBookingPaymentEvents(c *gin.Context) {
	reference := c.Param("reference")

	events, err := h.bookingSvc.GetPaymentEvents(reference)
	if err != nil {
		h.logger.WithError(err).WithField("reference", reference).Error("Failed to load payment events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  events,
	})
}

// ListBookings handles GET /api/v1/admin/bookings with optional
// ?from=&to= date filters (YYYY-MM-DD).
func (h *AdminHandler) ListBookings(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.bookingSvc.GetBookingsByDateRange(from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"bookings": bookings,
	})
}

// TriggerAvailabilityReset handles POST /api/v1/admin/jobs/reset-availability
func (h *AdminHandler) TriggerAvailabilityReset(c *gin.Context) {
	result, err := h.cronSvc.RunAvailabilityResetNow()
	if err != nil {
		h.logger.WithError(err).Error("Manual availability reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Availability reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       result.Message,
		"updated_rooms": result.UpdatedRooms,
		"ran_at":        result.RanAt,
	})
}

// GetJobStatus handles GET /api/v1/admin/jobs/status
func (h *AdminHandler) GetJobStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"jobs":    h.cronSvc.GetJobStatus(),
	})
}

// DownloadBookingsCSV handles GET /api/v1/admin/reports/bookings.csv
func (h *AdminHandler) DownloadBookingsCSV(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s.csv", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "text/csv")

	if err := h.reportSvc.WriteBookingsCSV(c.Writer, from, to); err != nil {
		h.logger.WithError(err).Error("Failed to generate bookings CSV")
		// Headers may already be out; nothing more to send.
		c.Abort()
	}
}

// DownloadBookingsExcel handles GET /api/v1/admin/reports/bookings.xlsx
func (h *AdminHandler) DownloadBookingsExcel(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.reportSvc.GenerateBookingsExcel(from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate bookings report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report generation failed"})
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// parseReportRange reads ?from= and ?to= (YYYY-MM-DD). Defaults to the
// last 30 days when absent. The to bound is inclusive of the whole day.
func parseReportRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date must not be before from date")
	}
	return from, to, nil
}
