package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/dashboard"
	"github.com/mfluker/aod-dashboard/pkg/console"
)

func newReportCommand(e *env) *cobra.Command {
	var (
		start      string
		franchisee string
		listWeeks  bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the weekly report from the stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd.Context())
			if err != nil {
				return err
			}
			data, err := a.LoadDashboard(cmd.Context())
			if err != nil {
				return err
			}

			if listWeeks {
				opts := dashboard.WeekOptions(data.Calls)
				rows := make([][]string, len(opts))
				for i, o := range opts {
					rows[i] = []string{o.Label, o.Value}
				}
				e.printer.Table([]string{"Week", "Value"}, rows)
				return nil
			}

			week, err := e.weekFlag(a, start)
			if err != nil {
				return err
			}
			if !data.Calls.Coverage().Has(week) {
				e.printer.Warning("No call-center data stored for %s; run 'weeklyops backfill' first", week)
			}
			printReport(e.printer, dashboard.Build(data, week, franchisee))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "week", "", "week start date MM/DD/YYYY or a --list-weeks value (default: last complete week)")
	cmd.Flags().StringVar(&franchisee, "franchisee", dashboard.AllFranchisees, "filter job status by franchisee")
	cmd.Flags().BoolVar(&listWeeks, "list-weeks", false, "list the weeks available for reporting")
	return cmd
}

func printReport(p *console.Printer, r dashboard.Report) {
	p.Header(fmt.Sprintf("Weekly report: %s (%s)", r.Week.Label(), r.Franchisee))

	printMetrics(p, "Call center", r.CallCenter)
	printMetrics(p, "Marketing", r.Marketing)
	printMetrics(p, "Finance", r.Finance)

	if len(r.TopSales) > 0 || len(r.TopRPA) > 0 {
		p.Header(fmt.Sprintf("Location rankings (%s)", r.RankingsWeek))
		printRankings(p, "Total Sales", r.TopSales)
		printRankings(p, "Revenue per Appointment", r.TopRPA)
	}

	if r.Appointments > 0 {
		p.Header(fmt.Sprintf("Future appointments: %d", r.Appointments))
		rows := make([][]string, len(r.ByLocation))
		for i, lc := range r.ByLocation {
			rows[i] = []string{lc.Location, strconv.Itoa(lc.Count)}
		}
		p.Table([]string{"Location", "Appointments"}, rows)
	}

	p.Header("Job status")
	rows := make([][]string, 0, len(r.JobStatus))
	for _, sc := range r.JobStatus {
		line := []string{sc.Status}
		for _, t := range dashboard.OrderTypes {
			line = append(line, strconv.Itoa(sc.ByType[t]))
		}
		line = append(line, strconv.Itoa(sc.Total), strconv.Itoa(sc.LastWeek))
		rows = append(rows, line)
	}
	header := append([]string{"Status"}, dashboard.OrderTypes...)
	p.Table(append(header, "Total", "1 Wk Ago"), rows)

	var found []string
	for _, ref := range r.References {
		if ref.Found {
			found = append(found, ref.Label+" ("+ref.Week.StartString()+")")
		}
	}
	if len(found) > 0 {
		p.Print("Comparable weeks on file: %v", found)
	}
}

func printMetrics(p *console.Printer, title string, metrics []dashboard.Metric) {
	p.Header(title)
	rows := make([][]string, len(metrics))
	for i, m := range metrics {
		rows[i] = []string{m.Label, m.Display(), m.PreviousDisplay(), p.Color(m.Change(), tone(m.Band()))}
	}
	p.Table([]string{"Metric", "This week", "1 Wk Ago", "Change"}, rows)
}

func printRankings(p *console.Printer, label string, rankings []dashboard.Ranking) {
	if len(rankings) == 0 {
		return
	}
	rows := make([][]string, len(rankings))
	for i, rk := range rankings {
		rows[i] = []string{"#" + strconv.Itoa(rk.Rank), rk.Location, rk.Value}
	}
	p.Table([]string{"Rank", "Location", label}, rows)
}

func tone(b dashboard.Band) console.Tone {
	switch {
	case b.Positive():
		return console.ToneGood
	case b.Negative():
		return console.ToneBad
	case b == dashboard.BandAmber:
		return console.ToneWarn
	default:
		return console.ToneNeutral
	}
}

