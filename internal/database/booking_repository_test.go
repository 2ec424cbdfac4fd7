package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitenest/hotel-backend/internal/models"
)

func TestCreateBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewBookingRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		booking := &models.Booking{
			BookingReference: "BK-A1B2C3D4",
			RoomID:           uuid.New().String(),
			GuestName:        "Jane Doe",
			GuestEmail:       "jane@example.com",
			CheckInDate:      now.AddDate(0, 0, 7),
			CheckOutDate:     now.AddDate(0, 0, 9),
			TotalAmount:      50000,
			PaymentStatus:    models.PaymentStatusPending,
			BookingStatus:    models.BookingStatusPending,
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs(
				sqlmock.AnyArg(), booking.BookingReference, booking.RoomID,
				booking.GuestName, booking.GuestEmail, nil,
				booking.CheckInDate, booking.CheckOutDate, booking.TotalAmount,
				string(models.PaymentStatusPending), string(models.BookingStatusPending),
			).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(now, now))

		err := repo.Create(booking)
		require.NoError(t, err)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, now, booking.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Reference", func(t *testing.T) {
		booking := &models.Booking{
			BookingReference: "BK-A1B2C3D4",
			RoomID:           uuid.New().String(),
			GuestName:        "Jane Doe",
			GuestEmail:       "jane@example.com",
			CheckInDate:      time.Now().AddDate(0, 0, 7),
			CheckOutDate:     time.Now().AddDate(0, 0, 9),
			TotalAmount:      50000,
			PaymentStatus:    models.PaymentStatusPending,
			BookingStatus:    models.BookingStatusPending,
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(booking)
		assert.ErrorIs(t, err, ErrDuplicateReference)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		booking := &models.Booking{
			BookingReference: "BK-FFFFFFFF",
			RoomID:           uuid.New().String(),
			GuestName:        "Jane Doe",
			GuestEmail:       "jane@example.com",
			PaymentStatus:    models.PaymentStatusPending,
			BookingStatus:    models.BookingStatusPending,
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("connection refused"))

		err := repo.Create(booking)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateReference)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingByReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewBookingRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		reference := "BK-A1B2C3D4"

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs(reference).
			WillReturnRows(bookingRows().AddRow(
				uuid.New().String(), reference, uuid.New().String(),
				"Jane Doe", "jane@example.com", nil,
				now.AddDate(0, 0, 7), now.AddDate(0, 0, 9), 50000.0,
				"pending", nil, "pending", nil, nil,
				now, now,
			))

		booking, err := repo.GetByReference(reference)
		require.NoError(t, err)
		assert.Equal(t, reference, booking.BookingReference)
		assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
		assert.Nil(t, booking.PaidAt)
		assert.Nil(t, booking.GuestPhone)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs("BK-999").
			WillReturnError(sql.ErrNoRows)

		booking, err := repo.GetByReference("BK-999")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Confirmed Booking", func(t *testing.T) {
		now := time.Now()
		reference := "BK-CONFIRMD"

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).
			WithArgs(reference).
			WillReturnRows(bookingRows().AddRow(
				uuid.New().String(), reference, uuid.New().String(),
				"Jane Doe", "jane@example.com", "+2348012345678",
				now.AddDate(0, 0, 7), now.AddDate(0, 0, 9), 50000.0,
				"paid", now, "confirmed", nil, nil,
				now, now,
			))

		booking, err := repo.GetByReference(reference)
		require.NoError(t, err)
		assert.True(t, booking.IsPaid())
		assert.True(t, booking.IsConfirmed())
		require.NotNil(t, booking.PaidAt)
		require.NotNil(t, booking.GuestPhone)
		assert.Equal(t, "+2348012345678", *booking.GuestPhone)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingsByGuestEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewBookingRepository(mockDB)

	t.Run("Multiple Bookings", func(t *testing.T) {
		now := time.Now()
		email := "jane@example.com"

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE guest_email`).
			WithArgs(email).
			WillReturnRows(bookingRows().
				AddRow(
					uuid.New().String(), "BK-22222222", uuid.New().String(),
					"Jane Doe", email, nil,
					now.AddDate(0, 0, 7), now.AddDate(0, 0, 9), 50000.0,
					"pending", nil, "pending", nil, nil,
					now, now,
				).
				AddRow(
					uuid.New().String(), "BK-11111111", uuid.New().String(),
					"Jane Doe", email, nil,
					now.AddDate(0, -1, 0), now.AddDate(0, -1, 2), 30000.0,
					"paid", now, "confirmed", nil, nil,
					now.AddDate(0, -1, -2), now,
				))

		bookings, err := repo.GetByGuestEmail(email)
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, "BK-22222222", bookings[0].BookingReference)
		assert.Equal(t, "BK-11111111", bookings[1].BookingReference)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Bookings", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE guest_email`).
			WithArgs("nobody@example.com").
			WillReturnRows(bookingRows())

		bookings, err := repo.GetByGuestEmail("nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, bookings)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConfirmPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewBookingRepository(mockDB)

	t.Run("Pending Booking Confirmed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("BK-A1B2C3D4").
			WillReturnResult(sqlmock.NewResult(0, 1))

		confirmed, err := repo.ConfirmPaid("BK-A1B2C3D4")
		require.NoError(t, err)
		assert.True(t, confirmed)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Confirmed Is A NoOp", func(t *testing.T) {
		// The pending guard means a second confirmation attempt
		// matches no rows.
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("BK-A1B2C3D4").
			WillReturnResult(sqlmock.NewResult(0, 0))

		confirmed, err := repo.ConfirmPaid("BK-A1B2C3D4")
		require.NoError(t, err)
		assert.False(t, confirmed)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("BK-A1B2C3D4").
			WillReturnError(fmt.Errorf("connection reset"))

		confirmed, err := repo.ConfirmPaid("BK-A1B2C3D4")
		assert.Error(t, err)
		assert.False(t, confirmed)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkPaymentFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewBookingRepository(mockDB)

	mock.ExpectExec(`UPDATE bookings`).
		WithArgs("BK-A1B2C3D4", "abandoned at checkout").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkPaymentFailed("BK-A1B2C3D4", "abandoned at checkout")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_reference", "room_id", "guest_name", "guest_email", "guest_phone",
		"check_in_date", "check_out_date", "total_amount",
		"payment_status", "paid_at", "booking_status", "cancelled_at", "cancellation_reason",
		"created_at", "updated_at",
	})
}

type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
