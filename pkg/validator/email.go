package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email address cannot be empty")

	// ErrInvalidEmail indicates the email address is not syntactically valid
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrEmailTooLong indicates the email address exceeds 254 characters
	ErrEmailTooLong = errors.New("email address is too long")
)

// emailRegex is a pragmatic syntactic check, not a full RFC 5322 parser.
// The gateway and email relay both re-validate on their side.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// EmailValidator handles email address validation
type EmailValidator struct{}

// NewEmailValidator creates a new email validator instance
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{}
}

// Validate validates an email address and returns the sanitized
// (trimmed, lowercased) form.
func (v *EmailValidator) Validate(email string) (string, error) {
	sanitized := strings.ToLower(strings.TrimSpace(email))

	if sanitized == "" {
		return "", ErrEmptyEmail
	}

	if len(sanitized) > 254 {
		return "", ErrEmailTooLong
	}

	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}

	return sanitized, nil
}
