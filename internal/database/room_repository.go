package database

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/suitenest/hotel-backend/internal/models"
)

// RoomRepository handles database operations for the rooms table
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, room_number, category, price_per_night, discounted_price,
	   is_available, capacity, size_label, amenities, images,
	   created_at, updated_at`

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(roomID string) (*models.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE id = $1
	`

	return r.scanRoom(r.db.QueryRow(query, roomID))
}

// GetAll retrieves all rooms ordered by room number
func (r *RoomRepository) GetAll() ([]models.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		ORDER BY room_number
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRooms(rows)
}

// GetAvailable retrieves all rooms currently flagged available
func (r *RoomRepository) GetAvailable() ([]models.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE is_available = TRUE
		ORDER BY room_number
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRooms(rows)
}

// MarkUnavailableIfAvailable flips the availability flag to false only
// if the room is still available. Returns true if this call won the
// flag; false means another confirmed booking got there first. This
// conditional write is the double-booking guard: confirmation must
// never trust an earlier read of the flag.
func (r *RoomRepository) MarkUnavailableIfAvailable(roomID string) (bool, error) {
	query := `
		UPDATE rooms
		SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1
		  AND is_available = TRUE
	`

	result, err := r.db.Exec(query, roomID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// ResetExpiredAvailability flips rooms back to available when every
// confirmed booking referencing them has checked out. The join runs on
// the explicit room_id foreign key. The is_available guard keeps the
// statement idempotent: a re-run with no newly completed bookings
// writes nothing and returns an empty set.
func (r *RoomRepository) ResetExpiredAvailability(now time.Time) ([]string, error) {
	query := `
		UPDATE rooms
		SET is_available = TRUE, updated_at = NOW()
		WHERE is_available = FALSE
		  AND id IN (
			SELECT room_id FROM bookings
			WHERE booking_status = 'confirmed'
			  AND check_out_date <= $1
		  )
		  AND id NOT IN (
			SELECT room_id FROM bookings
			WHERE booking_status = 'confirmed'
			  AND check_out_date > $1
		  )
		RETURNING id
	`

	rows, err := r.db.Query(query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updated := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}

	return updated, rows.Err()
}

// scanRoom scans a single room
func (r *RoomRepository) scanRoom(row scanner) (*models.Room, error) {
	room := &models.Room{}
	var discountedPrice sql.NullFloat64

	err := row.Scan(
		&room.ID, &room.RoomNumber, &room.Category, &room.PricePerNight, &discountedPrice,
		&room.IsAvailable, &room.Capacity, &room.SizeLabel,
		pq.Array((*[]string)(&room.Amenities)), pq.Array((*[]string)(&room.Images)),
		&room.CreatedAt, &room.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if discountedPrice.Valid {
		room.DiscountedPrice = &discountedPrice.Float64
	}

	return room, nil
}

// scanRooms scans multiple rooms from rows
func (r *RoomRepository) scanRooms(rows *sql.Rows) ([]models.Room, error) {
	rooms := []models.Room{}

	for rows.Next() {
		var room models.Room
		var discountedPrice sql.NullFloat64

		err := rows.Scan(
			&room.ID, &room.RoomNumber, &room.Category, &room.PricePerNight, &discountedPrice,
			&room.IsAvailable, &room.Capacity, &room.SizeLabel,
			pq.Array((*[]string)(&room.Amenities)), pq.Array((*[]string)(&room.Images)),
			&room.CreatedAt, &room.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		if discountedPrice.Valid {
			room.DiscountedPrice = &discountedPrice.Float64
		}

		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
