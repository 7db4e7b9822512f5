// Package app is the composition root: it builds every service from the
// configuration once and hands them to the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mfluker/aod-dashboard/internal/config"
	"github.com/mfluker/aod-dashboard/internal/dashboard"
	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/infrastructure/canvas"
	"github.com/mfluker/aod-dashboard/internal/infrastructure/scheduler"
	"github.com/mfluker/aod-dashboard/internal/infrastructure/snapshot"
	"github.com/mfluker/aod-dashboard/internal/infrastructure/storage"
	"github.com/mfluker/aod-dashboard/internal/infrastructure/telegram"
	"github.com/mfluker/aod-dashboard/internal/logging"
	"github.com/mfluker/aod-dashboard/internal/ports"
	"github.com/mfluker/aod-dashboard/internal/report"
	"github.com/mfluker/aod-dashboard/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	Config      config.Config
	Logger      *slog.Logger
	Credentials canvas.Checker
	Canvas      *canvas.Client
	Store       *snapshot.Store
	Reports     *report.Registry
	Backfill    *usecase.Backfill
	Projections *usecase.Projections
	Jobs        *usecase.JobsSnapshot
	Remover     *usecase.WeekRemover
	Scheduler   *usecase.Scheduler

	journal *storage.SQLiteJournal
}

// New builds the application. A missing or unreadable cookie file is not an
// error here; the credential check reports it before any fetch.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{Config: cfg, Logger: baseLogger}

	a.Credentials = canvas.Checker{Path: cfg.Canvas.CookieFile, Required: cfg.Canvas.RequiredCookies}
	cookies, err := canvas.LoadCookies(cfg.Canvas.CookieFile)
	if err != nil {
		baseLogger.Warn("session cookies not loaded", "path", cfg.Canvas.CookieFile, "error", err)
	}
	client, err := canvas.NewClient(canvas.OptionsFromConfig(cfg.Canvas, cookies, baseLogger.With("component", "canvas")))
	if err != nil {
		return nil, fmt.Errorf("canvas client: %w", err)
	}
	a.Canvas = client

	a.Reports = report.NewRegistry()
	canvas.RegisterReports(a.Reports, client)

	a.Store = snapshot.NewStore(cfg.Snapshots.Dir)

	var journal ports.RunJournal
	if cfg.Journal.Path != "" {
		j, err := storage.OpenJournal(ctx, cfg.Journal.Path)
		if err != nil {
			baseLogger.Warn("run journal unavailable", "path", cfg.Journal.Path, "error", err)
		} else {
			a.journal = j
			journal = j
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	loc := cfg.Backfill.Location()
	a.Backfill = usecase.NewBackfill(usecase.BackfillDeps{
		Credentials:   a.Credentials,
		Reports:       client,
		Store:         a.Store,
		Journal:       journal,
		Notifier:      notifier,
		Logger:        baseLogger.With("component", "backfill"),
		Location:      loc,
		LookbackWeeks: cfg.Backfill.LookbackWeeks,
	})
	a.Projections = usecase.NewProjections(usecase.ProjectionsDeps{
		Source:   client,
		Store:    a.Store,
		Logger:   baseLogger.With("component", "projections"),
		Location: loc,
	})
	a.Jobs = usecase.NewJobsSnapshot(client, a.Store, baseLogger.With("component", "jobs"), nil)
	a.Remover = usecase.NewWeekRemover(a.Store, baseLogger.With("component", "remove-week"))

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(),
		baseLogger.With("component", "scheduler"))
	a.Scheduler = usecase.NewScheduler(driver, a.Backfill, a.Projections, baseLogger.With("component", "watch"))

	return a, nil
}

// Journal returns the run journal, or an error when it could not be opened.
func (a *Application) Journal() (ports.RunJournal, error) {
	if a.journal == nil {
		return nil, errors.New("run journal is not available; check journal.path")
	}
	return a.journal, nil
}

// LastCompleteWeek is the most recent fully elapsed Sunday to Saturday week.
func (a *Application) LastCompleteWeek() domain.Week {
	return a.Projections.CurrentWeek()
}

// LoadDashboard reads every dataset the weekly report needs.
func (a *Application) LoadDashboard(ctx context.Context) (dashboard.Datasets, error) {
	var data dashboard.Datasets
	targets := []struct {
		d   domain.Domain
		dst *domain.Dataset
	}{
		{domain.DomainCalls, &data.Calls},
		{domain.DomainROI, &data.ROI},
		{domain.DomainJobs, &data.Jobs},
		{domain.DomainRankingsRPA, &data.RankingsRPA},
		{domain.DomainRankingsSales, &data.RankingsSales},
		{domain.DomainAppointments, &data.Appointments},
	}
	for _, t := range targets {
		ds, err := a.Store.Load(ctx, t.d)
		if err != nil {
			return data, fmt.Errorf("load %s: %w", t.d, err)
		}
		*t.dst = ds
	}
	return data, nil
}

// Close releases the journal database.
func (a *Application) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}
