package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent backfill runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}
			journal, err := a.Journal()
			if err != nil {
				return err
			}
			runs, err := journal.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				e.printer.Info("No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.StartedAt.Local().Format(time.DateTime),
					r.Status,
					strconv.Itoa(r.Missing),
					strconv.Itoa(r.CallsAdded),
					strconv.Itoa(r.ROIAdded),
					r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
					r.Reason,
				})
			}
			e.printer.Table([]string{"Started", "Status", "Missing", "Calls", "ROI", "Took", "Reason"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}
