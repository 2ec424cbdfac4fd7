package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/database"
)

// AvailabilityService runs the scheduled availability reset: rooms
// whose confirmed bookings have all checked out are flipped back to
// available. The job is idempotent and convergent, so a crash between
// read and write just means the next run retries the same set.
type AvailabilityService struct {
	roomRepo *database.RoomRepository
	logger   *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(roomRepo *database.RoomRepository, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// ResetResult reports what a reset run changed
type ResetResult struct {
	Message      string    `json:"message"`
	UpdatedRooms []string  `json:"updated_rooms,omitempty"`
	RanAt        time.Time `json:"ran_at"`
}

// ResetExpiredRooms releases rooms held by confirmed bookings whose
// check-out date has passed, excluding rooms still held by another
// confirmed stay. Re-running with no newly completed bookings produces
// an empty write set.
func (s *AvailabilityService) ResetExpiredRooms(now time.Time) (*ResetResult, error) {
	updated, err := s.roomRepo.ResetExpiredAvailability(now)
	if err != nil {
		return nil, fmt.Errorf("availability reset failed: %w", err)
	}

	if len(updated) == 0 {
		return &ResetResult{
			Message: "No rooms required an availability reset",
			RanAt:   now,
		}, nil
	}

	s.logger.WithFields(logrus.Fields{
		"count": len(updated),
		"rooms": updated,
	}).Info("Rooms released back to available")

	return &ResetResult{
		Message:      fmt.Sprintf("Released %d room(s) back to available", len(updated)),
		UpdatedRooms: updated,
		RanAt:        now,
	}, nil
}
