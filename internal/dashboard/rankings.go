package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// TopN is the number of locations shown per ranking.
const TopN = 5

const (
	colLocation = "Location"
	colRank     = "Rank"
)

// RPAColumns are the header spellings the RPA ranking has used.
var RPAColumns = []string{"Revenue per Appointment", "Revenue Per Appointment", "RPA"}

// SalesColumns are the header spellings of the sales ranking value.
var SalesColumns = []string{"Sales", "Total Sales"}

// Ranking is one location in a top-N list.
type Ranking struct {
	Rank     int
	Location string
	Value    string
}

// SnapshotWeek picks the week of a point-in-time dataset to show next to
// selected: selected itself when present, otherwise the latest earlier week,
// otherwise the latest week overall.
func SnapshotWeek(ds domain.Dataset, selected domain.Week) (domain.Week, bool) {
	weeks := ds.Coverage().Weeks()
	for i := len(weeks) - 1; i >= 0; i-- {
		if !selected.Before(weeks[i]) {
			return weeks[i], true
		}
	}
	return ds.Latest()
}

// TopLocations ranks the rows of week by their Rank column, or by row order
// when the table has none. Total rows are excluded.
func TopLocations(ds domain.Dataset, week domain.Week, valueColumns []string, n int) []Ranking {
	records := ds.SelectWeek(week)
	out := make([]Ranking, 0, len(records))
	for i, rec := range records {
		loc := strings.TrimSpace(rec.Row.Value(colLocation))
		if loc == "" || isTotal(loc) {
			continue
		}
		rank := i + 1
		if raw, ok := rec.Row.Get(colRank); ok {
			if v, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#")); err == nil {
				rank = v
			}
		}
		out = append(out, Ranking{Rank: rank, Location: loc, Value: firstValue(rec.Row, valueColumns)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LocationCount is the number of future appointments at one location.
type LocationCount struct {
	Location string
	Count    int
}

// AppointmentsByLocation counts the appointment rows of week per location,
// busiest first, keeping at most limit locations. The total covers every row.
func AppointmentsByLocation(ds domain.Dataset, week domain.Week, limit int) (int, []LocationCount) {
	records := ds.SelectWeek(week)
	counts := map[string]int{}
	for _, rec := range records {
		loc := strings.TrimSpace(rec.Row.Value(colLocation))
		if loc == "" {
			loc = "Unknown"
		}
		counts[loc]++
	}

	out := make([]LocationCount, 0, len(counts))
	for loc, c := range counts {
		out = append(out, LocationCount{Location: loc, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return len(records), out
}

func isTotal(location string) bool {
	return strings.Contains(strings.ToLower(location), "total")
}

func firstValue(row domain.Row, columns []string) string {
	for _, c := range columns {
		if v, ok := row.Get(c); ok {
			return v
		}
	}
	return ""
}
