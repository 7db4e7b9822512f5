package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/usecase"
	"github.com/mfluker/aod-dashboard/pkg/console"
)

func newBackfillCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fetch every week missing from the call-center and ROI snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.Backfill.Run(cmd.Context())
			printBackfill(e.printer, result)
			if errors.Is(err, usecase.ErrCredentialsInvalid) {
				e.printer.Print("")
				printRefreshSteps(e.printer, e.cfg.Canvas.CookieFile)
			}
			return err
		},
	}
}

func printBackfill(p *console.Printer, result usecase.BackfillResult) {
	switch result.Status {
	case usecase.StatusCredentialsInvalid:
		p.Error("Invalid or expired cookies: %s", result.Reason)
		return
	case usecase.StatusUpToDate:
		p.Success("All data is up to date!")
		return
	case "":
		return
	}

	p.Header(fmt.Sprintf("Backfill %s", result.RunID))
	rows := make([][]string, 0, len(result.Weeks))
	for _, w := range result.Weeks {
		status := w.Status()
		tone := console.ToneGood
		switch status {
		case "partial":
			tone = console.ToneBad
		case "flagged":
			tone = console.ToneWarn
		}
		rows = append(rows, []string{
			w.Week.String(),
			p.Color(status, tone),
			strconv.Itoa(w.CallRows),
			strconv.Itoa(w.ROIRows),
		})
	}
	p.Table([]string{"Week", "Status", "Call rows", "ROI rows"}, rows)

	for _, w := range result.Warnings {
		p.Warning("%s", w.String())
	}
	p.Success("Added %d call row(s) and %d ROI row(s) across %d week(s)",
		result.CallsAdded, result.ROIAdded, len(result.Weeks))
	if len(result.Sample) > 0 {
		p.Print("Sample: %s", sampleLine(result))
	}
}

func sampleLine(result usecase.BackfillResult) string {
	parts := make([]string, 0, len(result.Sample))
	for _, rec := range result.Sample {
		label := rec.Week.StartString()
		if rec.Mode != "" {
			label += " " + string(rec.Mode)
		}
		parts = append(parts, fmt.Sprintf("%s (%d cols)", label, len(rec.Row)))
	}
	return strings.Join(parts, ", ")
}
