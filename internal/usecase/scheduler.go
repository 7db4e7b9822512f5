package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mfluker/aod-dashboard/internal/ports"
)

// Scheduler wires the cron-like driver with the backfill and projections use cases.
type Scheduler struct {
	driver      ports.Scheduler
	backfill    *Backfill
	projections *Projections
	logger      *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, backfill *Backfill, projections *Projections, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, backfill: backfill, projections: projections, logger: logger}
}

// Start registers the weekly job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.backfill == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// RunOnce performs one scheduled pass. Projections are skipped when the
// backfill could not authenticate.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	log := s.logger.With("trigger", trigger.Format(time.RFC3339))

	result, err := s.backfill.Run(ctx)
	switch {
	case errors.Is(err, ErrCredentialsInvalid):
		log.Error("scheduled backfill aborted", "reason", result.Reason)
		return
	case err != nil:
		log.Error("scheduled backfill failed", "error", err)
	default:
		log.Info("scheduled backfill done", "status", string(result.Status),
			"calls_added", result.CallsAdded, "roi_added", result.ROIAdded)
	}

	if s.projections == nil || ctx.Err() != nil {
		return
	}
	proj, err := s.projections.AppendIfNeeded(ctx)
	if err != nil {
		log.Error("scheduled projections failed", "error", err)
		return
	}
	log.Info("scheduled projections done", "week", proj.Week.String(), "skipped", proj.Skipped)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
