package dashboard

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// Column names read from the scraped reports.
const (
	ColRep           = "Call Center Rep"
	ColTouches       = "Outbound Communication Count"
	ColBooked        = "Total Booked"
	ColInboundRate   = "Inbound Rate Value"
	ColCostPerAppt   = "Cost Per Appt"
	ColAmount        = "Amount Invested"
	ColLeads         = "# of Leads"
	ColRevenue       = "Revenue"
	ColRevenuePerApt = "Revenue Per Appt"
	ColAppts         = "# of Appts"

	totalsRep = "Totals"
)

// Format selects how a metric value is displayed.
type Format int

const (
	FormatCount Format = iota
	FormatMoney
	FormatPercent
)

// Metric is one headline number and its value one week earlier.
type Metric struct {
	Label    string
	Format   Format
	Current  *float64
	Previous *float64
}

// Delta is the week-over-week change in percent.
func (m Metric) Delta() (float64, bool) {
	if m.Current == nil {
		return 0, false
	}
	return DeltaPercent(*m.Current, m.Previous)
}

// Change renders the delta as "↑12.5%".
func (m Metric) Change() string {
	if m.Current == nil {
		return "–"
	}
	return ChangeText(*m.Current, m.Previous)
}

// Band is the color bucket of the delta.
func (m Metric) Band() Band {
	return BandFor(m.Delta())
}

// Display renders the current value.
func (m Metric) Display() string { return m.Format.render(m.Current) }

// PreviousDisplay renders last week's value.
func (m Metric) PreviousDisplay() string {
	if m.Previous == nil || *m.Previous == 0 {
		return "–"
	}
	return m.Format.render(m.Previous)
}

func (f Format) render(v *float64) string {
	if v == nil {
		return "–"
	}
	switch f {
	case FormatMoney:
		if *v < 0 {
			return "-$" + thousands(-*v)
		}
		return "$" + thousands(*v)
	case FormatPercent:
		return strconv.FormatFloat(*v, 'f', 1, 64) + "%"
	default:
		return strconv.Itoa(int(*v))
	}
}

// thousands renders v with two decimals and comma grouping.
func thousands(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// CallCenterMetrics reads the outbound Totals row of week and prev: touches
// (the outbound proxy) and design appointments booked. The inbound rate comes
// from the inbound Totals row.
func CallCenterMetrics(calls domain.Dataset, week, prev domain.Week) []Metric {
	cur := totalsRow(calls, week, domain.ModeOutbound)
	old := totalsRow(calls, prev, domain.ModeOutbound)
	curIn := totalsRow(calls, week, domain.ModeInbound)
	oldIn := totalsRow(calls, prev, domain.ModeInbound)
	return []Metric{
		{Label: "touches – proxy", Format: FormatCount, Current: number(cur, ColTouches), Previous: number(old, ColTouches)},
		{Label: "design appointments booked", Format: FormatCount, Current: number(cur, ColBooked), Previous: number(old, ColBooked)},
		{Label: "inbound help rate", Format: FormatPercent, Current: number(curIn, ColInboundRate), Previous: number(oldIn, ColInboundRate)},
	}
}

// MarketingMetrics reads the ROI totals of week and prev.
func MarketingMetrics(roi domain.Dataset, week, prev domain.Week) []Metric {
	return roiMetrics(roi, week, prev, []metricSpec{
		{"Cost Per Appt", ColCostPerAppt, FormatMoney},
		{"Amount Invested", ColAmount, FormatMoney},
		{"Leads Generated", ColLeads, FormatCount},
	})
}

// FinanceMetrics reads the revenue side of the ROI totals.
func FinanceMetrics(roi domain.Dataset, week, prev domain.Week) []Metric {
	return roiMetrics(roi, week, prev, []metricSpec{
		{"Revenue", ColRevenue, FormatMoney},
		{"Revenue Per Appt", ColRevenuePerApt, FormatMoney},
		{"Appointments", ColAppts, FormatCount},
	})
}

type metricSpec struct {
	label  string
	column string
	format Format
}

func roiMetrics(roi domain.Dataset, week, prev domain.Week, specs []metricSpec) []Metric {
	cur := firstRow(roi.SelectWeek(week))
	old := firstRow(roi.SelectWeek(prev))
	out := make([]Metric, len(specs))
	for i, s := range specs {
		out[i] = Metric{Label: s.label, Format: s.format, Current: number(cur, s.column), Previous: number(old, s.column)}
	}
	return out
}

func totalsRow(calls domain.Dataset, week domain.Week, mode domain.Mode) domain.Row {
	for _, rec := range calls.Select(week, mode) {
		if strings.TrimSpace(rec.Row.Value(ColRep)) == totalsRep {
			return rec.Row
		}
	}
	return nil
}

func firstRow(records []domain.Record) domain.Row {
	if len(records) == 0 {
		return nil
	}
	return records[0].Row
}

// number parses the named cell. Missing or unparsable cells yield nil.
func number(row domain.Row, column string) *float64 {
	raw, ok := row.Get(column)
	if !ok {
		return nil
	}
	v, err := domain.ParseAmount(raw)
	if err != nil {
		return nil
	}
	return &v
}
