package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingValidate(t *testing.T) {
	base := Booking{
		CheckInDate:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Pending Unpaid Is Valid", func(t *testing.T) {
		b := base
		b.PaymentStatus = PaymentStatusPending
		b.BookingStatus = BookingStatusPending
		assert.NoError(t, b.Validate())
	})

	t.Run("Confirmed Requires Paid", func(t *testing.T) {
		b := base
		b.PaymentStatus = PaymentStatusPending
		b.BookingStatus = BookingStatusConfirmed
		assert.Error(t, b.Validate())

		b.PaymentStatus = PaymentStatusPaid
		assert.NoError(t, b.Validate())
	})

	t.Run("Zero Night Stay Is Invalid", func(t *testing.T) {
		b := base
		b.CheckOutDate = b.CheckInDate
		b.PaymentStatus = PaymentStatusPending
		b.BookingStatus = BookingStatusPending
		assert.Error(t, b.Validate())
	})
}

func TestAmountMinorUnits(t *testing.T) {
	cases := []struct {
		major float64
		minor int64
	}{
		{50000, 5000000},
		{123.45, 12345},
		{0.999, 100},
		{19.99, 1999},
	}

	for _, tc := range cases {
		b := Booking{TotalAmount: tc.major}
		assert.Equal(t, tc.minor, b.AmountMinorUnits(), "%v", tc.major)
	}
}

func TestNights(t *testing.T) {
	b := Booking{
		CheckInDate:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, b.Nights())
}
