package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/suitenest/hotel-backend/internal/database"
	"github.com/suitenest/hotel-backend/internal/models"
)

// bookingReportHeader is the column set shared by the CSV and Excel exports
var bookingReportHeader = []string{
	"Booking Reference",
	"Room ID",
	"Guest Name",
	"Guest Email",
	"Check In",
	"Check Out",
	"Nights",
	"Total Amount",
	"Payment Status",
	"Booking Status",
	"Created At",
}

// ReportService produces admin booking reports
type ReportService struct {
	bookingRepo *database.BookingRepository
}

// NewReportService creates a new ReportService
func NewReportService(bookingRepo *database.BookingRepository) *ReportService {
	return &ReportService{bookingRepo: bookingRepo}
}

// WriteBookingsCSV streams a CSV report of bookings created in
// [from, to) to the writer.
func (s *ReportService) WriteBookingsCSV(w io.Writer, from, to time.Time) error {
	bookings, err := s.bookingRepo.GetByDateRange(from, to)
	if err != nil {
		return fmt.Errorf("failed to load bookings for report: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(bookingReportHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i := range bookings {
		if err := cw.Write(bookingReportRow(&bookings[i])); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// GenerateBookingsExcel builds an .xlsx report of bookings created in
// [from, to) and returns the file contents.
func (s *ReportService) GenerateBookingsExcel(from, to time.Time) ([]byte, error) {
	bookings, err := s.bookingRepo.GetByDateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for report: %w", err)
	}

	f := excelize.NewFile()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, header := range bookingReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i := range bookings {
		row := bookingReportRow(&bookings[i])
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf []byte
	buffer, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	buf = buffer.Bytes()

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf, nil
}

// bookingReportRow renders one booking as report columns
func bookingReportRow(b *models.Booking) []string {
	return []string{
		b.BookingReference,
		b.RoomID,
		b.GuestName,
		b.GuestEmail,
		b.CheckInDate.Format("2006-01-02"),
		b.CheckOutDate.Format("2006-01-02"),
		strconv.Itoa(b.Nights()),
		strconv.FormatFloat(b.TotalAmount, 'f', 2, 64),
		string(b.PaymentStatus),
		string(b.BookingStatus),
		b.CreatedAt.Format(time.RFC3339),
	}
}
