package ports

import (
	"context"
	"time"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// CredentialStatus is the outcome of checking the stored session cookies.
type CredentialStatus struct {
	Valid   bool
	Reason  string
	Expires time.Time
}

// CredentialChecker verifies the stored session before any network fetch.
type CredentialChecker interface {
	Check(now time.Time) CredentialStatus
}

// WeeklyReportSource pulls the per-week reports the backfill needs. An empty
// result with a nil error means the upstream had no rows for the week.
type WeeklyReportSource interface {
	FetchConversion(ctx context.Context, week domain.Week, mode domain.Mode) ([]domain.Row, error)
	FetchROI(ctx context.Context, week domain.Week) ([]domain.Row, error)
}

// ProjectionSource pulls point-in-time reports that are not parameterized by week.
type ProjectionSource interface {
	FetchLocationRankings(ctx context.Context, metric string) ([]domain.Row, error)
	FetchFutureAppointments(ctx context.Context) ([]domain.Row, error)
}

// JobStatusSource pulls job-status listings for a week.
type JobStatusSource interface {
	FetchJobStatus(ctx context.Context, week domain.Week) ([]domain.Row, error)
}

// SnapshotStore persists whole datasets. Save overwrites the stored dataset.
type SnapshotStore interface {
	Load(ctx context.Context, d domain.Domain) (domain.Dataset, error)
	Save(ctx context.Context, ds domain.Dataset) error
	Backup(ctx context.Context, d domain.Domain, tag string) (string, error)
}

// RunRecord is the journal entry written after a backfill run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Reason     string
	Missing    int
	CallsAdded int
	ROIAdded   int
	Weeks      []RunWeek
}

// RunWeek is the journal entry for one week processed in a run.
type RunWeek struct {
	Week     domain.Week
	Status   string
	Warnings []string
}

// RunJournal keeps an audit trail of backfill runs.
type RunJournal interface {
	RecordRun(ctx context.Context, run RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
