package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCommand(e *env) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run backfill and projections on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := e.application(ctx)
			if err != nil {
				return err
			}
			if now {
				a.Scheduler.RunOnce(ctx, time.Now())
			}
			if err := a.Scheduler.Start(ctx); err != nil {
				return err
			}
			e.printer.Info("Watching with schedule %q (%s); press Ctrl+C to stop",
				e.cfg.Scheduler.CronExpression, e.cfg.Scheduler.Location())

			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return a.Scheduler.Stop(stopCtx)
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately before waiting for the schedule")
	return cmd
}
