package services

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/suitenest/hotel-backend/internal/config"
	"github.com/suitenest/hotel-backend/internal/database"
)

// RateLimitService bounds contact-form abuse per source IP over a
// sliding window. State lives in the database rather than a
// process-local map so the limit holds across instances and restarts.
type RateLimitService struct {
	db          database.DB
	maxRequests int
	window      time.Duration
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:          db,
		maxRequests: cfg.MaxRequests,
		window:      time.Duration(cfg.WindowMinutes) * time.Minute,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// RetryAfterSeconds returns the wait in whole seconds, suitable for a
// Retry-After header. Never negative.
func (e *RateLimitError) RetryAfterSeconds() string {
	secs := int(time.Until(e.RetryAfter).Seconds())
	if secs < 0 {
		secs = 0
	}
	return strconv.Itoa(secs)
}

// CheckContactRateLimit returns a RateLimitError when the IP has
// reached MaxRequests within Window. The window slides: as soon as
// the oldest counted request ages out, a new request is admitted.
func (s *RateLimitService) CheckContactRateLimit(ip string) error {
	if ip == "" {
		return nil
	}

	count, oldest, err := s.getRequestCount(ip)
	if err != nil {
		return fmt.Errorf("failed to check contact rate limit: %w", err)
	}

	if count >= s.maxRequests {
		retryAfter := oldest.Add(s.window)
		return &RateLimitError{
			Message:    fmt.Sprintf("Too many contact requests from this address. Please try again after %s", retryAfter.Format("15:04:05")),
			RetryAfter: retryAfter,
		}
	}

	return nil
}

// getRequestCount returns the number of requests inside the window and
// the timestamp of the oldest one (which determines when the window
// next admits a request).
func (s *RateLimitService) getRequestCount(ip string) (int, time.Time, error) {
	windowStart := time.Now().Add(-s.window)

	query := `
		SELECT COUNT(*), COALESCE(MIN(created_at), NOW())
		FROM contact_rate_limits
		WHERE identifier = $1
		  AND created_at > $2
	`

	var count int
	var oldest time.Time

	err := s.db.QueryRow(query, ip, windowStart).Scan(&count, &oldest)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, err
	}

	return count, oldest, nil
}

// RecordContactRequest records a contact submission for rate limiting
func (s *RateLimitService) RecordContactRequest(ip string) error {
	if ip == "" {
		return nil
	}

	query := `
		INSERT INTO contact_rate_limits (identifier, created_at)
		VALUES ($1, NOW())
	`

	_, err := s.db.Exec(query, ip)
	if err != nil {
		return fmt.Errorf("failed to record contact request: %w", err)
	}

	return nil
}

// CleanupExpired removes rate limit rows that have aged out of the
// window. Run periodically; the table stays bounded by traffic volume.
func (s *RateLimitService) CleanupExpired() (int64, error) {
	cutoff := time.Now().Add(-s.window)

	query := `
		DELETE FROM contact_rate_limits
		WHERE created_at < $1
	`

	result, err := s.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
