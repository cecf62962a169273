package usecase

import (
	"context"
	"time"

	"NewsCredibility/internal/ports"
)

// Scheduler wires the cron-like driver with the headline refresh job.
type Scheduler struct {
	driver    ports.Scheduler
	headlines *Headlines
	targets   []HeadlineTarget
}

// NewScheduler returns a helper to start/stop recurring headline refreshes.
func NewScheduler(driver ports.Scheduler, headlines *Headlines, targets []HeadlineTarget) *Scheduler {
	return &Scheduler{driver: driver, headlines: headlines, targets: targets}
}

// Start registers the refresh job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.headlines == nil || len(s.targets) == 0 {
		return nil
	}

	job := func(trigger time.Time) {
		s.RefreshAll(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// RefreshAll refreshes every configured target; failures are logged by Refresh.
func (s *Scheduler) RefreshAll(ctx context.Context, trigger time.Time) {
	s.headlines.logger.Info("headline refresh triggered", "at", trigger.Format(time.RFC3339), "targets", len(s.targets))
	for _, target := range s.targets {
		if ctx.Err() != nil {
			return
		}
		_, _ = s.headlines.Refresh(ctx, target)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
