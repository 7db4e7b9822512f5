package domain

import "time"

// Domain names one snapshot dataset.
type Domain string

const (
	DomainCalls         Domain = "calls"
	DomainROI           Domain = "roi"
	DomainJobs          Domain = "jobs"
	DomainRankingsRPA   Domain = "rankings_rpa"
	DomainRankingsSales Domain = "rankings_sales"
	DomainAppointments  Domain = "appointments"
)

// Domains lists every dataset the store knows about.
func Domains() []Domain {
	return []Domain{DomainCalls, DomainROI, DomainJobs, DomainRankingsRPA, DomainRankingsSales, DomainAppointments}
}

// Mode discriminates the two conversion reports within the calls dataset.
type Mode string

const (
	ModeNone     Mode = ""
	ModeInbound  Mode = "inbound"
	ModeOutbound Mode = "outbound"
)

// Confidence marks whether a row's values are trusted as scraped.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	// ConfidenceUnconfirmed flags rows that look like a silent scrape failure
	// (e.g. every monetary field is zero) but were kept anyway.
	ConfidenceUnconfirmed Confidence = "unconfirmed"
)

// Field is one named cell of a scraped table row.
type Field struct {
	Name  string
	Value string
}

// Row keeps the upstream column order of a scraped table row.
type Row []Field

// Get returns the value of the named column.
func (r Row) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the named column or an empty string.
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Set overwrites the named column or appends it.
func (r Row) Set(name, value string) Row {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Name: name, Value: value})
}

// Names lists the column names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Clone copies the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Record is one row of a dataset tagged with the week it belongs to.
type Record struct {
	Week       Week
	Mode       Mode
	FetchedAt  time.Time
	Confidence Confidence
	Row        Row
}

// NewRecords tags scraped rows with their week and mode.
func NewRecords(week Week, mode Mode, rows []Row) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Week:       week,
			Mode:       mode,
			Confidence: ConfidenceConfirmed,
			Row:        row.Clone(),
		})
	}
	return records
}
