package models

import "time"

// ContactMessage represents a submitted contact form message. The row
// itself is the durable record of intent; the notification email sent
// afterwards is best-effort.
type ContactMessage struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ContactRequest represents the contact form payload
type ContactRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required"`
	Phone   *string `json:"phone,omitempty"`
	Subject string  `json:"subject" binding:"required"`
	Message string  `json:"message" binding:"required"`
}
