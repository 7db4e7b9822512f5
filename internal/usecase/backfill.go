package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfluker/aod-dashboard/internal/coverage"
	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

// ErrCredentialsInvalid is wrapped by every CredentialError.
var ErrCredentialsInvalid = errors.New("session credentials invalid")

// CredentialError aborts a run before any fetch is attempted.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCredentialsInvalid, e.Reason)
}

func (e *CredentialError) Unwrap() error { return ErrCredentialsInvalid }

// RunStatus is the overall outcome of a backfill run.
type RunStatus string

const (
	StatusUpToDate           RunStatus = "up_to_date"
	StatusCompleted          RunStatus = "completed"
	StatusCredentialsInvalid RunStatus = "credentials_invalid"
)

// WarningKind classifies a per-week problem that did not stop the run.
type WarningKind string

const (
	WarningEmpty      WarningKind = "empty"
	WarningFailed     WarningKind = "failed"
	WarningSuspicious WarningKind = "suspicious"
)

// Report names used in warnings.
const (
	ReportInbound  = "conversion-inbound"
	ReportOutbound = "conversion-outbound"
	ReportROI      = "roi"
)

// moneyFields must all read as zero for an ROI row to be flagged.
var moneyFields = []string{"Amount Invested", "Revenue"}

// Warning describes one soft failure for one report of one week.
type Warning struct {
	Week   domain.Week
	Report string
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	msg := fmt.Sprintf("%s %s: %s", w.Week.String(), w.Report, w.Kind)
	if w.Detail != "" {
		msg += ": " + w.Detail
	}
	return msg
}

// WeekOutcome is what a run did for one missing week.
type WeekOutcome struct {
	Week     domain.Week
	CallRows int
	ROIRows  int
	Warnings []Warning
}

// Status is "ok" when every report returned rows, "partial" otherwise.
func (o WeekOutcome) Status() string {
	if len(o.Warnings) == 0 {
		return "ok"
	}
	for _, w := range o.Warnings {
		if w.Kind != WarningSuspicious {
			return "partial"
		}
	}
	return "flagged"
}

// BackfillResult is the typed summary of a reconciliation.
type BackfillResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Reason     string
	Missing    []domain.Week
	Weeks      []WeekOutcome
	CallsAdded int
	ROIAdded   int
	Sample     []domain.Record
	Warnings   []Warning
}

// Changed reports whether any rows were merged.
func (r BackfillResult) Changed() bool {
	return r.CallsAdded+r.ROIAdded > 0
}

// BackfillDeps wires the driven adapters into the backfill engine.
type BackfillDeps struct {
	Credentials   ports.CredentialChecker
	Reports       ports.WeeklyReportSource
	Store         ports.SnapshotStore
	Journal       ports.RunJournal
	Notifier      ports.Notifier
	Logger        *slog.Logger
	Location      *time.Location
	LookbackWeeks int
	SampleSize    int
	Clock         func() time.Time
	NewID         func() string
}

// Backfill finds the weeks missing from the call-center dataset and fetches
// them, along with ROI, one week at a time.
type Backfill struct {
	credentials ports.CredentialChecker
	reports     ports.WeeklyReportSource
	store       ports.SnapshotStore
	journal     ports.RunJournal
	notifier    ports.Notifier
	logger      *slog.Logger
	loc         *time.Location
	lookback    int
	sampleSize  int
	clock       func() time.Time
	newID       func() string
}

// NewBackfill constructs the engine.
func NewBackfill(deps BackfillDeps) *Backfill {
	b := &Backfill{
		credentials: deps.Credentials,
		reports:     deps.Reports,
		store:       deps.Store,
		journal:     deps.Journal,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		loc:         deps.Location,
		lookback:    deps.LookbackWeeks,
		sampleSize:  deps.SampleSize,
		clock:       deps.Clock,
		newID:       deps.NewID,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.lookback <= 0 {
		b.lookback = coverage.DefaultLookbackWeeks
	}
	if b.sampleSize <= 0 {
		b.sampleSize = 3
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

// Run loads the calls and ROI snapshots, reconciles them, saves both whole
// files when anything changed and then records and announces the run.
func (b *Backfill) Run(ctx context.Context) (BackfillResult, error) {
	if b.store == nil {
		return BackfillResult{}, fmt.Errorf("snapshot store is not configured")
	}

	calls, err := b.store.Load(ctx, domain.DomainCalls)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("load calls: %w", err)
	}
	roi, err := b.store.Load(ctx, domain.DomainROI)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("load roi: %w", err)
	}

	newCalls, newROI, result, err := b.Reconcile(ctx, calls, roi)
	if err != nil && !errors.Is(err, ErrCredentialsInvalid) {
		return result, err
	}

	if result.Changed() {
		if saveErr := b.store.Save(ctx, newCalls); saveErr != nil {
			return result, fmt.Errorf("save calls: %w", saveErr)
		}
		if saveErr := b.store.Save(ctx, newROI); saveErr != nil {
			return result, fmt.Errorf("save roi: %w", saveErr)
		}
		b.logger.Info("snapshots saved", "calls_rows", newCalls.Len(), "roi_rows", newROI.Len())
	}

	b.record(ctx, result)
	b.announce(ctx, result)
	return result, err
}

// Reconcile is the storage-free core of Run. It returns the merged datasets;
// on a credential failure, an up-to-date dataset or cancellation the inputs
// come back unchanged.
func (b *Backfill) Reconcile(ctx context.Context, calls, roi domain.Dataset) (domain.Dataset, domain.Dataset, BackfillResult, error) {
	now := b.clock()
	result := BackfillResult{RunID: b.newID(), StartedAt: now}
	finish := func() BackfillResult {
		result.FinishedAt = b.clock()
		return result
	}

	if b.credentials != nil {
		status := b.credentials.Check(now)
		if !status.Valid {
			result.Status = StatusCredentialsInvalid
			result.Reason = status.Reason
			b.logger.Error("credential check failed", "reason", status.Reason)
			return calls, roi, finish(), &CredentialError{Reason: status.Reason}
		}
		b.logger.Info("credentials valid", "reason", status.Reason)
	}

	today := domain.Date(now.In(b.loc))
	// A week whose inbound or outbound export failed stays missing until both land.
	result.Missing = coverage.MissingWeeks(calls, today, b.lookback, domain.ModeInbound, domain.ModeOutbound)
	if len(result.Missing) == 0 {
		result.Status = StatusUpToDate
		result.Reason = "already up to date"
		b.logger.Info("all data is up to date")
		return calls, roi, finish(), nil
	}
	if b.reports == nil {
		return calls, roi, finish(), fmt.Errorf("report source is not configured")
	}

	b.logger.Info("missing weeks found", "count", len(result.Missing),
		"first", result.Missing[0].String(), "last", result.Missing[len(result.Missing)-1].String())

	workCalls, workROI := calls.Clone(), roi.Clone()
	for i, week := range result.Missing {
		if err := ctx.Err(); err != nil {
			b.logger.Warn("backfill interrupted", "week", week.String(), "error", err)
			return calls, roi, finish(), err
		}
		b.logger.Info("fetching week", "n", i+1, "of", len(result.Missing), "week", week.String())

		outcome := WeekOutcome{Week: week}
		for _, mode := range []domain.Mode{domain.ModeInbound, domain.ModeOutbound} {
			records, warn := b.fetchCalls(ctx, week, mode, now)
			if warn != nil {
				outcome.Warnings = append(outcome.Warnings, *warn)
				continue
			}
			workCalls.Upsert(week, mode, records)
			outcome.CallRows += len(records)
			result.Sample = b.appendSample(result.Sample, records)
		}

		records, warns := b.fetchROI(ctx, week, now)
		outcome.Warnings = append(outcome.Warnings, warns...)
		if len(records) > 0 {
			workROI.Upsert(week, domain.ModeNone, records)
			outcome.ROIRows = len(records)
			result.Sample = b.appendSample(result.Sample, records)
		}

		for _, w := range outcome.Warnings {
			b.logger.Warn("week warning", "week", week.String(), "report", w.Report, "kind", string(w.Kind), "detail", w.Detail)
		}
		result.CallsAdded += outcome.CallRows
		result.ROIAdded += outcome.ROIRows
		result.Warnings = append(result.Warnings, outcome.Warnings...)
		result.Weeks = append(result.Weeks, outcome)
	}

	if err := ctx.Err(); err != nil {
		return calls, roi, finish(), err
	}

	result.Status = StatusCompleted
	if result.ROIAdded == 0 {
		b.logger.Warn("no new ROI rows were added for the missing weeks")
	}
	b.logger.Info("backfill finished", "weeks", len(result.Weeks), "calls_added", result.CallsAdded,
		"roi_added", result.ROIAdded, "warnings", len(result.Warnings))
	return workCalls, workROI, finish(), nil
}

func (b *Backfill) fetchCalls(ctx context.Context, week domain.Week, mode domain.Mode, now time.Time) ([]domain.Record, *Warning) {
	report := ReportInbound
	if mode == domain.ModeOutbound {
		report = ReportOutbound
	}

	rows, err := b.reports.FetchConversion(ctx, week, mode)
	if err != nil {
		return nil, &Warning{Week: week, Report: report, Kind: WarningFailed, Detail: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &Warning{Week: week, Report: report, Kind: WarningEmpty, Detail: "no rows returned"}
	}
	return stamp(domain.NewRecords(week, mode, rows), now), nil
}

func (b *Backfill) fetchROI(ctx context.Context, week domain.Week, now time.Time) ([]domain.Record, []Warning) {
	rows, err := b.reports.FetchROI(ctx, week)
	if err != nil {
		return nil, []Warning{{Week: week, Report: ReportROI, Kind: WarningFailed, Detail: err.Error()}}
	}
	if len(rows) == 0 {
		return nil, []Warning{{Week: week, Report: ReportROI, Kind: WarningEmpty,
			Detail: "ROI data could not be retrieved; check authentication or the report page"}}
	}

	records := stamp(domain.NewRecords(week, domain.ModeNone, rows), now)
	var warns []Warning
	for i := range records {
		if SuspiciousROI(records[i].Row) {
			records[i].Confidence = domain.ConfidenceUnconfirmed
			warns = append(warns, Warning{Week: week, Report: ReportROI, Kind: WarningSuspicious,
				Detail: "Amount Invested and Revenue are both zero; kept as unconfirmed"})
		}
	}
	return records, warns
}

// SuspiciousROI reports whether every money field is present and reads as zero.
// Unparsable values are not treated as zero.
func SuspiciousROI(row domain.Row) bool {
	for _, name := range moneyFields {
		raw, ok := row.Get(name)
		if !ok {
			return false
		}
		v, err := domain.ParseAmount(raw)
		if err != nil || v != 0 {
			return false
		}
	}
	return true
}

func stamp(records []domain.Record, at time.Time) []domain.Record {
	for i := range records {
		records[i].FetchedAt = at
	}
	return records
}

func (b *Backfill) appendSample(sample, records []domain.Record) []domain.Record {
	for _, rec := range records {
		if len(sample) >= b.sampleSize {
			break
		}
		sample = append(sample, rec)
	}
	return sample
}

func (b *Backfill) record(ctx context.Context, result BackfillResult) {
	if b.journal == nil {
		return
	}
	run := ports.RunRecord{
		ID:         result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Status:     string(result.Status),
		Reason:     result.Reason,
		Missing:    len(result.Missing),
		CallsAdded: result.CallsAdded,
		ROIAdded:   result.ROIAdded,
	}
	for _, w := range result.Weeks {
		rw := ports.RunWeek{Week: w.Week, Status: w.Status()}
		for _, warn := range w.Warnings {
			rw.Warnings = append(rw.Warnings, warn.String())
		}
		run.Weeks = append(run.Weeks, rw)
	}
	if err := b.journal.RecordRun(ctx, run); err != nil {
		b.logger.Warn("failed to record run", "run_id", result.RunID, "error", err)
	}
}

func (b *Backfill) announce(ctx context.Context, result BackfillResult) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.PublishDigest(ctx, BuildDigest(result)); err != nil {
		b.logger.Warn("failed to publish digest", "run_id", result.RunID, "error", err)
	}
}

// BuildDigest renders the run summary sent to the notifier.
func BuildDigest(result BackfillResult) string {
	var sb strings.Builder
	switch result.Status {
	case StatusCredentialsInvalid:
		fmt.Fprintf(&sb, "Backfill aborted: %s\nRefresh canvas_cookies.json and re-run.\n", result.Reason)
		return sb.String()
	case StatusUpToDate:
		sb.WriteString("Backfill: all data is up to date.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Backfill completed: %d week(s), %d call row(s), %d ROI row(s)\n",
		len(result.Weeks), result.CallsAdded, result.ROIAdded)
	for _, w := range result.Weeks {
		fmt.Fprintf(&sb, "- %s: %s (calls %d, roi %d)\n", w.Week.String(), w.Status(), w.CallRows, w.ROIRows)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintf(&sb, "Warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w.String())
		}
	}
	return sb.String()
}
