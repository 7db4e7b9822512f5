package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

// JobsSnapshot stores the job-status listing for a week.
type JobsSnapshot struct {
	source ports.JobStatusSource
	store  ports.SnapshotStore
	logger *slog.Logger
	clock  func() time.Time
}

// NewJobsSnapshot constructs the use case. A nil clock uses time.Now.
func NewJobsSnapshot(source ports.JobStatusSource, store ports.SnapshotStore, logger *slog.Logger, clock func() time.Time) *JobsSnapshot {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &JobsSnapshot{source: source, store: store, logger: logger, clock: clock}
}

// Run fetches the listing and replaces the week in the jobs dataset. It
// returns the number of rows stored; an empty listing stores nothing.
func (j *JobsSnapshot) Run(ctx context.Context, week domain.Week) (int, error) {
	if j.source == nil || j.store == nil {
		return 0, errors.New("jobs snapshot is not configured")
	}

	rows, err := j.source.FetchJobStatus(ctx, week)
	if err != nil {
		return 0, fmt.Errorf("fetch jobs %s: %w", week, err)
	}
	if len(rows) == 0 {
		j.logger.Warn("job status listing was empty", "week", week.String())
		return 0, nil
	}

	ds, err := j.store.Load(ctx, domain.DomainJobs)
	if err != nil {
		return 0, fmt.Errorf("load jobs: %w", err)
	}
	ds.Upsert(week, domain.ModeNone, stamp(domain.NewRecords(week, domain.ModeNone, rows), j.clock()))
	if err := j.store.Save(ctx, ds); err != nil {
		return 0, fmt.Errorf("save jobs: %w", err)
	}
	j.logger.Info("jobs saved", "week", week.String(), "rows", len(rows))
	return len(rows), nil
}
