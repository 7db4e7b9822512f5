package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

// ErrWeekNotFound is returned when no dataset holds the requested week.
var ErrWeekNotFound = errors.New("week not found in any dataset")

// previewFields are the ROI columns shown before a removal.
var previewFields = []string{"Amount Invested", "# of Leads", "Revenue"}

// WeekPreview describes what a removal would delete.
type WeekPreview struct {
	Week     domain.Week
	CallRows int
	ROIRows  []domain.Row
}

// Empty reports whether neither dataset holds the week.
func (p WeekPreview) Empty() bool {
	return p.CallRows == 0 && len(p.ROIRows) == 0
}

// RemovalResult reports a completed removal.
type RemovalResult struct {
	Preview     WeekPreview
	Backups     []string
	CallsBefore int
	CallsAfter  int
	ROIBefore   int
	ROIAfter    int
}

// WeekRemover deletes one week from the calls and ROI datasets so the next
// backfill refetches it.
type WeekRemover struct {
	store  ports.SnapshotStore
	logger *slog.Logger
}

// NewWeekRemover constructs the removal utility.
func NewWeekRemover(store ports.SnapshotStore, logger *slog.Logger) *WeekRemover {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeekRemover{store: store, logger: logger}
}

// Preview counts the rows a removal of week would delete.
func (r *WeekRemover) Preview(ctx context.Context, week domain.Week) (WeekPreview, error) {
	calls, roi, err := r.load(ctx)
	if err != nil {
		return WeekPreview{}, err
	}
	return preview(week, calls, roi), nil
}

// Remove backs up both datasets and then deletes week from each. Nothing is
// written when the week is absent everywhere.
func (r *WeekRemover) Remove(ctx context.Context, week domain.Week) (RemovalResult, error) {
	calls, roi, err := r.load(ctx)
	if err != nil {
		return RemovalResult{}, err
	}
	result := RemovalResult{
		Preview:     preview(week, calls, roi),
		CallsBefore: calls.Len(),
		ROIBefore:   roi.Len(),
	}
	if result.Preview.Empty() {
		return result, fmt.Errorf("%w: %s", ErrWeekNotFound, week)
	}

	tag := strings.ReplaceAll(week.StartString(), "/", "-")
	for _, d := range []domain.Domain{domain.DomainROI, domain.DomainCalls} {
		path, err := r.store.Backup(ctx, d, tag)
		if err != nil {
			return result, fmt.Errorf("backup %s: %w", d, err)
		}
		if path != "" {
			result.Backups = append(result.Backups, path)
		}
	}

	roi.RemoveWeek(week)
	calls.RemoveWeek(week)
	if err := r.store.Save(ctx, roi); err != nil {
		return result, fmt.Errorf("save roi: %w", err)
	}
	if err := r.store.Save(ctx, calls); err != nil {
		return result, fmt.Errorf("save calls: %w", err)
	}
	result.CallsAfter, result.ROIAfter = calls.Len(), roi.Len()

	r.logger.Info("week removed", "week", week.String(),
		"calls_before", result.CallsBefore, "calls_after", result.CallsAfter,
		"roi_before", result.ROIBefore, "roi_after", result.ROIAfter)
	return result, nil
}

func (r *WeekRemover) load(ctx context.Context) (domain.Dataset, domain.Dataset, error) {
	calls, err := r.store.Load(ctx, domain.DomainCalls)
	if err != nil {
		return domain.Dataset{}, domain.Dataset{}, fmt.Errorf("load calls: %w", err)
	}
	roi, err := r.store.Load(ctx, domain.DomainROI)
	if err != nil {
		return domain.Dataset{}, domain.Dataset{}, fmt.Errorf("load roi: %w", err)
	}
	return calls, roi, nil
}

func preview(week domain.Week, calls, roi domain.Dataset) WeekPreview {
	p := WeekPreview{Week: week, CallRows: len(calls.SelectWeek(week))}
	for _, rec := range roi.SelectWeek(week) {
		var row domain.Row
		for _, name := range previewFields {
			row = row.Set(name, rec.Row.Value(name))
		}
		p.ROIRows = append(p.ROIRows, row)
	}
	return p
}
