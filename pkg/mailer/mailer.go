package mailer

// Message is a single outbound email
type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// Mailer defines the interface for sending notification emails.
// Delivery is best-effort throughout the codebase: callers log a send
// failure and continue, because the database row behind the email is
// the durable record.
type Mailer interface {
	Send(msg Message) error

	// GetName returns the name of the mailer implementation
	GetName() string
}
