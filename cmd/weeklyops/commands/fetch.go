package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/report"
)

func newFetchCommand(e *env) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "fetch <report>",
		Short: "Fetch one report and print it without saving",
		Long:  "Fetch one report by name and print its rows. Nothing is written to the snapshots.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}
			fetcher, err := a.Reports.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(a.Reports.Names(), ", "))
			}
			week, err := e.weekFlag(a, start)
			if err != nil {
				return err
			}

			rows, err := fetcher.Fetch(cmd.Context(), report.Request{Week: week})
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				e.printer.Warning("%s returned no rows for %s", fetcher.Name(), week)
				return nil
			}
			header, body := tabulate(rows)
			e.printer.Table(header, body)
			e.printer.Success("%d row(s)", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "week", "", "week start date MM/DD/YYYY (default: last complete week)")
	return cmd
}

// tabulate lays out rows under the union of their column names, in first-seen order.
func tabulate(rows []domain.Row) ([]string, [][]string) {
	var header []string
	seen := map[string]bool{}
	for _, r := range rows {
		for _, name := range r.Names() {
			if !seen[name] {
				seen[name] = true
				header = append(header, name)
			}
		}
	}
	body := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(header))
		for j, name := range header {
			line[j] = r.Value(name)
		}
		body[i] = line
	}
	return header, body
}
