package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/suitenest/hotel-backend/internal/database"
	"github.com/suitenest/hotel-backend/internal/models"
	"github.com/suitenest/hotel-backend/pkg/mailer"
	"github.com/suitenest/hotel-backend/pkg/validator"
)

const (
	minMessageLength = 10
	maxMessageLength = 5000
)

// ContactService handles contact form submissions: validation, rate
// limiting, durable storage, and a best-effort notification email.
type ContactService struct {
	contactRepo *database.ContactRepository
	rateLimiter *RateLimitService
	mail        mailer.Mailer
	recipient   string
	emails      *validator.EmailValidator
	logger      *logrus.Logger
}

// NewContactService creates a new ContactService
func NewContactService(
	contactRepo *database.ContactRepository,
	rateLimiter *RateLimitService,
	mail mailer.Mailer,
	recipient string,
	logger *logrus.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		rateLimiter: rateLimiter,
		mail:        mail,
		recipient:   recipient,
		emails:      validator.NewEmailValidator(),
		logger:      logger,
	}
}

// Submit validates, rate-limits and stores a contact message. The
// stored row is the durable record of intent; the notification email
// is best-effort and its failure never fails the submission.
func (s *ContactService) Submit(req *models.ContactRequest, clientIP string) (*models.ContactMessage, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if err := s.rateLimiter.CheckContactRateLimit(clientIP); err != nil {
		return nil, err
	}

	email, _ := s.emails.Validate(req.Email)

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Phone:   req.Phone,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	if err := s.contactRepo.Create(msg); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	if err := s.rateLimiter.RecordContactRequest(clientIP); err != nil {
		// The message is already stored; a limiter bookkeeping failure
		// should not undo a successful submission.
		s.logger.WithError(err).Warn("Failed to record contact request for rate limiting")
	}

	s.relayEmail(msg)

	return msg, nil
}

// validate applies the contact form field rules
func (s *ContactService) validate(req *models.ContactRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}

	if _, err := s.emails.Validate(req.Email); err != nil {
		return &ValidationError{Field: "email", Message: err.Error()}
	}

	if strings.TrimSpace(req.Subject) == "" {
		return &ValidationError{Field: "subject", Message: "Subject is required"}
	}

	length := utf8.RuneCountInString(strings.TrimSpace(req.Message))
	if length < minMessageLength {
		return &ValidationError{Field: "message", Message: fmt.Sprintf("Message is too short, minimum %d characters", minMessageLength)}
	}
	if length > maxMessageLength {
		return &ValidationError{Field: "message", Message: fmt.Sprintf("Message is too long, maximum %d characters", maxMessageLength)}
	}

	return nil
}

// relayEmail forwards the message to the configured recipient.
// Failure is logged and swallowed on purpose.
func (s *ContactService) relayEmail(msg *models.ContactMessage) {
	if s.recipient == "" {
		return
	}

	err := s.mail.Send(mailer.Message{
		To:      s.recipient,
		Subject: fmt.Sprintf("Contact form: %s", msg.Subject),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
		ReplyTo: msg.Email,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"message_id": msg.ID,
			"mailer":     s.mail.GetName(),
		}).Error("Contact notification email failed")
	}
}
