// Package commands contains the weeklyops CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/app"
	"github.com/mfluker/aod-dashboard/internal/config"
	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/logging"
	"github.com/mfluker/aod-dashboard/pkg/console"
)

// env is shared by every command. The application is built lazily so that
// commands like "cookies check" work without a reachable journal.
type env struct {
	cfgFile  string
	verbose  bool
	quiet    bool
	noColor  bool
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	cfg      config.Config
	logger   *slog.Logger
	printer  *console.Printer
	app      *app.Application
	buildApp func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.Application, error)
}

// Execute runs the CLI and releases the application afterwards.
func Execute(ctx context.Context) error {
	e := &env{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, buildApp: app.New}
	err := newRootCommand(e).ExecuteContext(ctx)
	if e.app != nil {
		if cerr := e.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "weeklyops",
		Short: "Weekly operations snapshots from Canvas",
		Long: `weeklyops keeps the weekly call-center, ROI, job-status and projection
snapshots in sync with the Canvas business-management site.

Example usage:
  weeklyops cookies check          # Verify the exported session cookies
  weeklyops backfill               # Fetch every missing week
  weeklyops report --week 06/29/2025
  weeklyops remove-week 06/29/2025 07/05/2025`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init()
		},
	}

	root.PersistentFlags().StringVar(&e.cfgFile, "config", os.Getenv("WEEKLYOPS_CONFIG"), "config file")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVarP(&e.quiet, "quiet", "q", false, "only print errors")
	root.PersistentFlags().BoolVar(&e.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newBackfillCommand(e),
		newCookiesCommand(e),
		newRemoveWeekCommand(e),
		newProjectionsCommand(e),
		newJobsCommand(e),
		newReportCommand(e),
		newHistoryCommand(e),
		newWatchCommand(e),
		newFetchCommand(e),
	)
	return root
}

func (e *env) init() error {
	e.cfg = config.LoadFrom(e.cfgFile)
	level := e.cfg.Logging.Level
	if e.verbose {
		level = "debug"
	}
	e.logger = logging.NewWithWriter(e.errOut, level)
	e.printer = console.NewWithWriters(e.out, e.errOut, !e.noColor && console.ResolveColors(), e.quiet)
	return nil
}

func (e *env) application(ctx context.Context) (*app.Application, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := e.buildApp(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}
	e.app = a
	return a, nil
}

// weekFlag resolves a --week value, defaulting to the last complete week. Both
// a start date and the "start|end" value printed by --list-weeks are accepted.
func (e *env) weekFlag(a *app.Application, start string) (domain.Week, error) {
	if start == "" {
		return a.LastCompleteWeek(), nil
	}
	var w domain.Week
	if strings.Contains(start, "|") {
		parsed, err := domain.ParseWeekKey(start)
		if err != nil {
			return domain.Week{}, err
		}
		w = parsed
	} else {
		d, err := domain.ParseDate(start)
		if err != nil {
			return domain.Week{}, err
		}
		w = domain.NewWeek(d)
	}
	if !w.IsSundayAligned() {
		return domain.Week{}, fmt.Errorf("%w: %s does not start on a Sunday", domain.ErrInvalidWeek, start)
	}
	return w, nil
}

var errInvalidCookies = errors.New("cookie check failed")
