package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/usecase"
)

var errCancelled = errors.New("cancelled, no changes made")

func newRemoveWeekCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove-week <week_start> <week_end>",
		Short:   "Delete one week from the call-center and ROI snapshots so it is refetched",
		Example: "  weeklyops remove-week 12/07/2025 12/13/2025",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := domain.ParseWeek(args[0], args[1])
			if err != nil {
				return err
			}
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}

			preview, err := a.Remover.Preview(cmd.Context(), week)
			if err != nil {
				return err
			}
			if preview.Empty() {
				e.printer.Error("Week %s not found in any data", week)
				return fmt.Errorf("%w: %s", usecase.ErrWeekNotFound, week)
			}
			printPreview(e, preview)

			if !yes && !confirm(e, "Delete this week from ALL data sources? (yes/no): ") {
				e.printer.Warning("Cancelled - no changes made")
				return errCancelled
			}

			result, err := a.Remover.Remove(cmd.Context(), week)
			if err != nil {
				return err
			}
			e.printer.Header("Backups saved")
			for _, path := range result.Backups {
				e.printer.Print("  %s", path)
			}
			e.printer.Print("ROI: %d -> %d rows", result.ROIBefore, result.ROIAfter)
			e.printer.Print("Calls: %d -> %d rows", result.CallsBefore, result.CallsAfter)
			e.printer.Success("Week %s has been removed from all data sources", week)
			e.printer.Print("Next: refresh the cookies if needed and run 'weeklyops backfill' to refetch it.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func printPreview(e *env, preview usecase.WeekPreview) {
	e.printer.Header(fmt.Sprintf("Week %s", preview.Week))
	if len(preview.ROIRows) == 0 {
		e.printer.Print("ROI data: not found (already removed)")
	} else {
		rows := make([][]string, 0, len(preview.ROIRows))
		for _, r := range preview.ROIRows {
			rows = append(rows, []string{r.Value("Amount Invested"), r.Value("# of Leads"), r.Value("Revenue")})
		}
		e.printer.Print("ROI data: %d row(s)", len(preview.ROIRows))
		e.printer.Table([]string{"Amount Invested", "# of Leads", "Revenue"}, rows)
	}
	if preview.CallRows == 0 {
		e.printer.Print("Call center data: not found (already removed)")
	} else {
		e.printer.Print("Call center data: %d row(s), removed to keep data consistent", preview.CallRows)
	}
}

func confirm(e *env, prompt string) bool {
	fmt.Fprint(e.out, prompt)
	answer, err := bufio.NewReader(e.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
