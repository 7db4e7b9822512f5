package dashboard

import (
	"sort"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// AllFranchisees selects every franchisee.
const AllFranchisees = "All"

// StatusOrder is the pipeline order of job statuses.
var StatusOrder = []string{
	"Measurement Appointment Scheduled",
	"Measurement Approved",
	"Submitted to Manufacturing Partner",
	"Order Shipped",
	"Order Received",
	"Install Scheduled",
	"Installed",
	"Complete",
}

// OrderTypes are the job order classes, in display order.
var OrderTypes = []string{"New", "Claim", "Reorder"}

// StatusCount is the number of distinct jobs in one status, split by order type.
type StatusCount struct {
	Status   string
	ByType   map[string]int
	Total    int
	LastWeek int
}

// JobStatusCounts counts distinct job IDs per status for week, filtered by
// franchisee. Every status in StatusOrder is present, zero-filled. LastWeek
// carries the prior week's total for the same status.
func JobStatusCounts(jobs domain.Dataset, week, prev domain.Week, franchisee string) []StatusCount {
	current := countJobs(jobs.SelectWeek(week), franchisee)
	previous := countJobs(jobs.SelectWeek(prev), franchisee)

	out := make([]StatusCount, 0, len(StatusOrder))
	for _, status := range StatusOrder {
		sc := StatusCount{Status: status, ByType: map[string]int{}}
		for _, t := range OrderTypes {
			n := len(current[status][t])
			sc.ByType[t] = n
			sc.Total += n
		}
		for _, ids := range previous[status] {
			sc.LastWeek += len(ids)
		}
		out = append(out, sc)
	}
	return out
}

// Franchisees lists the distinct franchisees of week, sorted, after AllFranchisees.
func Franchisees(jobs domain.Dataset, week domain.Week) []string {
	seen := map[string]bool{}
	var names []string
	for _, rec := range jobs.SelectWeek(week) {
		name := rec.Row.Value("Franchisee")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{AllFranchisees}, names...)
}

// countJobs maps status -> order type -> set of job IDs.
func countJobs(records []domain.Record, franchisee string) map[string]map[string]map[string]bool {
	out := map[string]map[string]map[string]bool{}
	for _, rec := range records {
		row := rec.Row
		if franchisee != "" && franchisee != AllFranchisees && row.Value("Franchisee") != franchisee {
			continue
		}
		status, kind := row.Value("Status"), row.Value("Order Type")
		if out[status] == nil {
			out[status] = map[string]map[string]bool{}
		}
		if out[status][kind] == nil {
			out[status][kind] = map[string]bool{}
		}
		out[status][kind][row.Value("ID")] = true
	}
	return out
}
