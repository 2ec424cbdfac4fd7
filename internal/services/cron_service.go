package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron            *cron.Cron
	availabilitySvc *AvailabilityService
	rateLimitSvc    *RateLimitService
	logger          *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(
	availabilitySvc *AvailabilityService,
	rateLimitSvc *RateLimitService,
	logger *logrus.Logger,
) *CronService {
	return &CronService{
		cron:            cron.New(cron.WithSeconds()),
		availabilitySvc: availabilitySvc,
		rateLimitSvc:    rateLimitSvc,
		logger:          logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// Job 1: Availability reset hourly on the hour.
	// Cron format: second minute hour day month weekday
	_, err := s.cron.AddFunc("0 0 * * * *", s.availabilityResetJob)
	if err != nil {
		return fmt.Errorf("failed to schedule availability reset job: %w", err)
	}
	s.logger.Info("Scheduled: Availability reset (hourly)")

	// Job 2: Rate limit cleanup daily at 3 AM.
	_, err = s.cron.AddFunc("0 0 3 * * *", s.rateLimitCleanupJob)
	if err != nil {
		return fmt.Errorf("failed to schedule rate limit cleanup job: %w", err)
	}
	s.logger.Info("Scheduled: Rate limit cleanup (daily at 3:00 AM)")

	s.cron.Start()
	s.logger.Info("Cron service started")

	return nil
}

// Stop stops all cron jobs and waits for running jobs to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// availabilityResetJob releases rooms whose confirmed stays have ended
func (s *CronService) availabilityResetJob() {
	startTime := time.Now()

	result, err := s.availabilitySvc.ResetExpiredRooms(startTime)
	if err != nil {
		s.logger.WithError(err).Error("Availability reset job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"updated":     len(result.UpdatedRooms),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Availability reset job completed")
}

// rateLimitCleanupJob prunes aged-out rate limit rows
func (s *CronService) rateLimitCleanupJob() {
	startTime := time.Now()

	removed, err := s.rateLimitSvc.CleanupExpired()
	if err != nil {
		s.logger.WithError(err).Error("Rate limit cleanup job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"removed":     removed,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Rate limit cleanup job completed")
}

// RunAvailabilityResetNow runs the availability reset immediately and
// returns its result (admin manual trigger).
func (s *CronService) RunAvailabilityResetNow() (*ResetResult, error) {
	s.logger.Info("Running availability reset now (manual trigger)")
	return s.availabilitySvc.ResetExpiredRooms(time.Now())
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
