package scheduler

import (
	"context"
	"fmt"
	"time"

	"retailorders/internal/logger"

	"github.com/robfig/cron/v3"
)

// ResetTokenPurger removes password reset tokens that have expired.
type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	purger  ResetTokenPurger
	timeout time.Duration
}

// New creates a Scheduler. Specs accept an optional seconds field and
// descriptors such as @hourly.
func New(purger ResetTokenPurger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		purger:  purger,
		timeout: time.Minute,
	}
}

// Start registers the purge job on spec and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.purgeResetTokens); err != nil {
		return fmt.Errorf("failed to schedule reset token purge %q: %w", spec, err)
	}
	s.cron.Start()
	logger.Info("scheduler started", "purge_schedule", spec)
	return nil
}

// Stop stops scheduling and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.purger.PurgeExpiredResetTokens(ctx)
	if err != nil {
		logger.Error("failed to purge reset tokens", "error", err)
		return
	}
	if n > 0 {
		logger.Info("expired reset tokens purged", "count", n)
	}
}
