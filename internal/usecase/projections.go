package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfluker/aod-dashboard/internal/coverage"
	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

// Ranking metrics understood by the projection source.
const (
	MetricRPA   = "rpa"
	MetricSales = "sales"
)

// ProjectionDomains are the datasets written by a projections snapshot.
var ProjectionDomains = []domain.Domain{domain.DomainRankingsRPA, domain.DomainRankingsSales, domain.DomainAppointments}

// ProjectionsDeps wires the driven adapters into the projections snapshot.
type ProjectionsDeps struct {
	Source   ports.ProjectionSource
	Store    ports.SnapshotStore
	Logger   *slog.Logger
	Location *time.Location
	Clock    func() time.Time
}

// ProjectionResult reports what a projections snapshot did for one week.
type ProjectionResult struct {
	Week     domain.Week
	Skipped  bool
	Rows     map[domain.Domain]int
	Failures map[domain.Domain]string
}

// Projections snapshots location rankings and the appointment pipeline,
// tagged with the most recent complete week.
type Projections struct {
	source ports.ProjectionSource
	store  ports.SnapshotStore
	logger *slog.Logger
	loc    *time.Location
	clock  func() time.Time
}

// NewProjections constructs the snapshot use case.
func NewProjections(deps ProjectionsDeps) *Projections {
	p := &Projections{
		source: deps.Source,
		store:  deps.Store,
		logger: deps.Logger,
		loc:    deps.Location,
		clock:  deps.Clock,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.loc == nil {
		p.loc = time.Local
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

// CurrentWeek is the week projections are tagged with.
func (p *Projections) CurrentWeek() domain.Week {
	return coverage.MostRecentCompleteWeek(domain.Date(p.clock().In(p.loc)))
}

// AppendIfNeeded fetches the current projections unless every projection
// dataset already holds the current week.
func (p *Projections) AppendIfNeeded(ctx context.Context) (ProjectionResult, error) {
	week := p.CurrentWeek()
	result := ProjectionResult{Week: week, Rows: map[domain.Domain]int{}}

	covered := true
	for _, d := range ProjectionDomains {
		ds, err := p.store.Load(ctx, d)
		if err != nil {
			return result, fmt.Errorf("load %s: %w", d, err)
		}
		n := len(ds.SelectWeek(week))
		result.Rows[d] = n
		if n == 0 {
			covered = false
		}
	}
	if covered {
		result.Skipped = true
		p.logger.Info("projections already exist", "week", week.String())
		return result, nil
	}
	return p.Fetch(ctx, week)
}

// Fetch pulls all three projection reports and replaces the week in each
// dataset that came back non-empty. A failed or empty report leaves its
// dataset untouched.
func (p *Projections) Fetch(ctx context.Context, week domain.Week) (ProjectionResult, error) {
	result := ProjectionResult{Week: week, Rows: map[domain.Domain]int{}, Failures: map[domain.Domain]string{}}
	if p.source == nil || p.store == nil {
		return result, errors.New("projections are not configured")
	}
	now := p.clock()

	fetchers := []struct {
		domain domain.Domain
		fetch  func() ([]domain.Row, error)
	}{
		{domain.DomainRankingsRPA, func() ([]domain.Row, error) { return p.source.FetchLocationRankings(ctx, MetricRPA) }},
		{domain.DomainRankingsSales, func() ([]domain.Row, error) { return p.source.FetchLocationRankings(ctx, MetricSales) }},
		{domain.DomainAppointments, func() ([]domain.Row, error) { return p.source.FetchFutureAppointments(ctx) }},
	}

	for _, f := range fetchers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rows, err := f.fetch()
		if err != nil {
			result.Failures[f.domain] = err.Error()
			p.logger.Warn("projection fetch failed", "dataset", string(f.domain), "error", err)
			continue
		}
		if len(rows) == 0 {
			result.Failures[f.domain] = "no rows returned"
			p.logger.Warn("projection data was empty, not saved", "dataset", string(f.domain))
			continue
		}

		ds, err := p.store.Load(ctx, f.domain)
		if err != nil {
			return result, fmt.Errorf("load %s: %w", f.domain, err)
		}
		ds.Upsert(week, domain.ModeNone, stamp(domain.NewRecords(week, domain.ModeNone, rows), now))
		if err := p.store.Save(ctx, ds); err != nil {
			return result, fmt.Errorf("save %s: %w", f.domain, err)
		}
		result.Rows[f.domain] = len(rows)
		p.logger.Info("projection saved", "dataset", string(f.domain), "new_rows", len(rows), "total_rows", ds.Len())
	}
	return result, nil
}
