package dashboard

import "github.com/mfluker/aod-dashboard/internal/domain"

// appointmentLocations caps the appointment pipeline list.
const appointmentLocations = 10

// Datasets is everything the weekly report reads.
type Datasets struct {
	Calls         domain.Dataset
	ROI           domain.Dataset
	Jobs          domain.Dataset
	RankingsRPA   domain.Dataset
	RankingsSales domain.Dataset
	Appointments  domain.Dataset
}

// Report is the computed content of the weekly report for one week.
type Report struct {
	Week         domain.Week
	Franchisee   string
	References   []Reference
	CallCenter   []Metric
	Marketing    []Metric
	Finance      []Metric
	TopSales     []Ranking
	TopRPA       []Ranking
	RankingsWeek domain.Week
	Appointments int
	ByLocation   []LocationCount
	JobStatus    []StatusCount
}

// Build computes the report for week. Metrics whose previous week is missing
// carry a nil Previous and a neutral band.
func Build(data Datasets, week domain.Week, franchisee string) Report {
	if franchisee == "" {
		franchisee = AllFranchisees
	}
	r := Report{
		Week:       week,
		Franchisee: franchisee,
		References: ReferenceWeeks(week, data.Calls.Coverage()),
	}

	prev := week.Prev()
	r.CallCenter = CallCenterMetrics(data.Calls, week, prev)
	r.Marketing = MarketingMetrics(data.ROI, week, prev)
	r.Finance = FinanceMetrics(data.ROI, week, prev)
	r.JobStatus = JobStatusCounts(data.Jobs, week, prev, franchisee)

	if w, ok := SnapshotWeek(data.RankingsSales, week); ok {
		r.RankingsWeek = w
		r.TopSales = TopLocations(data.RankingsSales, w, SalesColumns, TopN)
	}
	if w, ok := SnapshotWeek(data.RankingsRPA, week); ok {
		if r.RankingsWeek.IsZero() {
			r.RankingsWeek = w
		}
		r.TopRPA = TopLocations(data.RankingsRPA, w, RPAColumns, TopN)
	}
	if w, ok := SnapshotWeek(data.Appointments, week); ok {
		r.Appointments, r.ByLocation = AppointmentsByLocation(data.Appointments, w, appointmentLocations)
	}
	return r
}
