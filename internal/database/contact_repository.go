package database

import (
	"github.com/google/uuid"
	"github.com/suitenest/hotel-backend/internal/models"
)

// ContactRepository handles database operations for contact form messages
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create persists a contact message. The stored row, not the
// notification email, is the durable record of the submission.
func (r *ContactRepository) Create(msg *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	return r.db.QueryRow(
		query,
		msg.ID, msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message,
	).Scan(&msg.CreatedAt)
}
