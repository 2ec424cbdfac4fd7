package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/suitenest/hotel-backend/internal/config"
	"github.com/suitenest/hotel-backend/internal/database"
	"github.com/suitenest/hotel-backend/internal/services"
	"github.com/suitenest/hotel-backend/pkg/jwt"
)

const testAdminPassword = "correct-horse-battery"

func newAdminHandlerForTest(t *testing.T) (*AdminHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	return newAdminHandlerWithGateway(t, &stubGateway{})
}

func newAdminHandlerWithGateway(t *testing.T, gateway services.PaymentGateway) (*AdminHandler, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mockDB := &mockDatabase{db: db}
	logger := testLogger()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	adminCfg := config.AdminConfig{
		Email:        "admin@suitenest.example",
		PasswordHash: string(hash),
		JWTSecret:    "test-admin-secret-key-123456789",
		TokenExpiry:  time.Hour,
	}

	bookingRepo := database.NewBookingRepository(mockDB)
	roomRepo := database.NewRoomRepository(mockDB)

	bookingSvc := services.NewBookingService(
		bookingRepo,
		roomRepo,
		database.NewPaymentEventRepository(mockDB),
		gateway,
		logger,
	)
	availabilitySvc := services.NewAvailabilityService(roomRepo, logger)
	rateLimitSvc := services.NewRateLimitService(mockDB, config.RateLimitConfig{MaxRequests: 5, WindowMinutes: 15})
	cronSvc := services.NewCronService(availabilitySvc, rateLimitSvc, logger)

	handler := NewAdminHandler(
		adminCfg,
		jwt.NewService(adminCfg.JWTSecret, adminCfg.TokenExpiry),
		bookingSvc,
		services.NewReportService(bookingRepo),
		cronSvc,
		logger,
	)

	return handler, mock, func() { db.Close() }
}

func TestAdminLogin(t *testing.T) {
	postLogin := func(handler *AdminHandler, payload string) *httptest.ResponseRecorder {
		router := gin.New()
		router.POST("/api/v1/admin/login", handler.Login)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Success", func(t *testing.T) {
		handler, _, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		w := postLogin(handler, `{"email":"admin@suitenest.example","password":"`+testAdminPassword+`"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success   bool   `json:"success"`
			Token     string `json:"token"`
			ExpiresIn int    `json:"expires_in"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, 3600, body.ExpiresIn)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		handler, _, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		w := postLogin(handler, `{"email":"admin@suitenest.example","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("Wrong Email Same Response", func(t *testing.T) {
		handler, _, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		w := postLogin(handler, `{"email":"other@suitenest.example","password":"`+testAdminPassword+`"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("Missing Fields", func(t *testing.T) {
		handler, _, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		w := postLogin(handler, `{"email":"admin@suitenest.example"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func adminPendingBookingRows(reference, roomID string, total float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "booking_reference", "room_id", "guest_name", "guest_email", "guest_phone",
		"check_in_date", "check_out_date", "total_amount",
		"payment_status", "paid_at", "booking_status", "cancelled_at", "cancellation_reason",
		"created_at", "updated_at",
	}).AddRow(
		uuid.New().String(), reference, roomID,
		"Jane Doe", "jane@example.com", nil,
		now.AddDate(0, 0, 7), now.AddDate(0, 0, 9), total,
		"pending", nil, "pending", nil, nil,
		now, now,
	)
}

func TestVerifyBookingPayment(t *testing.T) {
	postVerify := func(handler *AdminHandler, reference string) *httptest.ResponseRecorder {
		router := gin.New()
		router.POST("/api/v1/admin/bookings/:reference/verify-payment", handler.VerifyBookingPayment)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/bookings/"+reference+"/verify-payment", nil)
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Gateway Failure Is Bad Gateway", func(t *testing.T) {
		gateway := &stubGateway{verifyErr: &services.GatewayError{Message: "gateway timeout", Retryable: true}}
		handler, mock, cleanup := newAdminHandlerWithGateway(t, gateway)
		defer cleanup()

		roomID := uuid.New().String()
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs("BK-A1B2C3D4").
			WillReturnRows(adminPendingBookingRows("BK-A1B2C3D4", roomID, 50000))
		mock.ExpectExec(`INSERT INTO payment_events`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postVerify(handler, "BK-A1B2C3D4")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "gateway timeout")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Room Unavailable Is Conflict", func(t *testing.T) {
		gateway := &stubGateway{verifyResult: &services.VerifyResult{Status: "success", AmountMinor: 5000000}}
		handler, mock, cleanup := newAdminHandlerWithGateway(t, gateway)
		defer cleanup()

		roomID := uuid.New().String()
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs("BK-A1B2C3D4").
			WillReturnRows(adminPendingBookingRows("BK-A1B2C3D4", roomID, 50000))
		mock.ExpectExec(`INSERT INTO payment_events`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE rooms`).
			WithArgs(roomID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs("BK-A1B2C3D4").
			WillReturnRows(adminPendingBookingRows("BK-A1B2C3D4", roomID, 50000))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("BK-A1B2C3D4").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postVerify(handler, "BK-A1B2C3D4")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		gateway := &stubGateway{verifyResult: &services.VerifyResult{Status: "success", AmountMinor: 5000000}}
		handler, mock, cleanup := newAdminHandlerWithGateway(t, gateway)
		defer cleanup()

		roomID := uuid.New().String()
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs("BK-A1B2C3D4").
			WillReturnRows(adminPendingBookingRows("BK-A1B2C3D4", roomID, 50000))
		mock.ExpectExec(`INSERT INTO payment_events`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE rooms`).
			WithArgs(roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("BK-A1B2C3D4").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postVerify(handler, "BK-A1B2C3D4")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"confirmed"`)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingPaymentEvents(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mock, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		now := time.Now()
		expected := int64(5000000)
		match := true
		mock.ExpectQuery(`SELECT (.+) FROM payment_events WHERE booking_reference`).
			WithArgs("BK-A1B2C3D4").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_reference", "event_type", "event_source",
				"expected_amount", "received_amount", "amounts_match",
				"gateway_status", "raw_payload", "error_message", "created_at",
			}).AddRow(
				uuid.New().String(), "BK-A1B2C3D4", "initialize", "server",
				expected, nil, nil,
				"initialized", nil, nil, now.Add(-time.Minute),
			).AddRow(
				uuid.New().String(), "BK-A1B2C3D4", "verify", "server",
				expected, expected, match,
				"success", []byte(`{}`), nil, now,
			))

		router := gin.New()
		router.GET("/api/v1/admin/bookings/:reference/payment-events", handler.GetBookingPaymentEvents)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings/BK-A1B2C3D4/payment-events", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool `json:"success"`
			Events  []struct {
				EventType     string `json:"event_type"`
				GatewayStatus string `json:"gateway_status"`
			} `json:"events"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		require.Len(t, body.Events, 2)
		assert.Equal(t, "initialize", body.Events[0].EventType)
		assert.Equal(t, "success", body.Events[1].GatewayStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Store Error", func(t *testing.T) {
		handler, mock, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM payment_events WHERE booking_reference`).
			WithArgs("BK-A1B2C3D4").
			WillReturnError(assert.AnError)

		router := gin.New()
		router.GET("/api/v1/admin/bookings/:reference/payment-events", handler.GetBookingPaymentEvents)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings/BK-A1B2C3D4/payment-events", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTriggerAvailabilityReset(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mock, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		roomID := uuid.New().String()
		mock.ExpectQuery(`UPDATE rooms`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roomID))

		router := gin.New()
		router.POST("/api/v1/admin/jobs/reset-availability", handler.TriggerAvailabilityReset)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/jobs/reset-availability", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Message      string   `json:"message"`
			UpdatedRooms []string `json:"updated_rooms"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body.Message, "1 room(s)")
		assert.Equal(t, []string{roomID}, body.UpdatedRooms)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Store Error", func(t *testing.T) {
		handler, mock, cleanup := newAdminHandlerForTest(t)
		defer cleanup()

		mock.ExpectQuery(`UPDATE rooms`).
			WillReturnError(assert.AnError)

		router := gin.New()
		router.POST("/api/v1/admin/jobs/reset-availability", handler.TriggerAvailabilityReset)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/jobs/reset-availability", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "error")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDownloadBookingsCSV(t *testing.T) {
	handler, mock, cleanup := newAdminHandlerForTest(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE created_at`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_reference", "room_id", "guest_name", "guest_email", "guest_phone",
			"check_in_date", "check_out_date", "total_amount",
			"payment_status", "paid_at", "booking_status", "cancelled_at", "cancellation_reason",
			"created_at", "updated_at",
		}).AddRow(
			uuid.New().String(), "BK-11111111", uuid.New().String(),
			"Jane Doe", "jane@example.com", nil,
			now.AddDate(0, 0, 7), now.AddDate(0, 0, 9), 50000.0,
			"paid", now, "confirmed", nil, nil,
			now, now,
		))

	router := gin.New()
	router.GET("/api/v1/admin/reports/bookings.csv", handler.DownloadBookingsCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports/bookings.csv?from=2026-08-01&to=2026-08-31", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookings_20260801_20260831.csv")
	assert.Contains(t, w.Body.String(), "Booking Reference")
	assert.Contains(t, w.Body.String(), "BK-11111111")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRangeValidation(t *testing.T) {
	handler, _, cleanup := newAdminHandlerForTest(t)
	defer cleanup()

	router := gin.New()
	router.GET("/api/v1/admin/reports/bookings.csv", handler.DownloadBookingsCSV)

	t.Run("Invalid From Date", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports/bookings.csv?from=yesterday", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Inverted Range", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports/bookings.csv?from=2026-08-31&to=2026-08-01", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
