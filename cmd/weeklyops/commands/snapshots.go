package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/usecase"
)

func newProjectionsCommand(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "projections",
		Short: "Snapshot location rankings and future appointments for the last complete week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}
			var result usecase.ProjectionResult
			if force {
				result, err = a.Projections.Fetch(cmd.Context(), a.Projections.CurrentWeek())
			} else {
				result, err = a.Projections.AppendIfNeeded(cmd.Context())
			}
			if err != nil {
				return err
			}

			if result.Skipped {
				e.printer.Success("Projections data for week %s already exists", result.Week)
			}
			rows := make([][]string, 0, len(usecase.ProjectionDomains))
			for _, d := range usecase.ProjectionDomains {
				note := result.Failures[d]
				rows = append(rows, []string{string(d), strconv.Itoa(result.Rows[d]), note})
			}
			e.printer.Table([]string{"Dataset", "Rows", "Note"}, rows)
			for d, reason := range result.Failures {
				e.printer.Warning("%s not saved: %s", d, reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "refetch even when the week is already stored")
	return cmd
}

func newJobsCommand(e *env) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Snapshot the job-status listing for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}
			week, err := e.weekFlag(a, start)
			if err != nil {
				return err
			}
			n, err := a.Jobs.Run(cmd.Context(), week)
			if err != nil {
				return err
			}
			if n == 0 {
				e.printer.Warning("No jobs returned for %s", week)
				return nil
			}
			e.printer.Success("Saved %d job row(s) for %s", n, week)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "week", "", "week start date MM/DD/YYYY (default: last complete week)")
	return cmd
}
