package domain

import "sort"

// Coverage is the set of weeks present in a dataset.
type Coverage map[string]Week

// Has reports whether week is covered.
func (c Coverage) Has(week Week) bool {
	_, ok := c[week.Key()]
	return ok
}

// Add marks week as covered.
func (c Coverage) Add(week Week) {
	c[week.Key()] = week
}

// Weeks returns the covered weeks in chronological order.
func (c Coverage) Weeks() []Week {
	weeks := make([]Week, 0, len(c))
	for _, w := range c {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

// Dataset is the arrival-ordered collection of records for one domain.
// Rows are never edited in place: a week is either appended or replaced whole.
type Dataset struct {
	Domain  Domain
	Records []Record
}

// NewDataset builds an empty dataset for d.
func NewDataset(d Domain) Dataset {
	return Dataset{Domain: d}
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// Empty reports whether the dataset has no records.
func (d Dataset) Empty() bool { return len(d.Records) == 0 }

// Clone copies the dataset so the copy can be mutated independently.
func (d Dataset) Clone() Dataset {
	out := Dataset{Domain: d.Domain, Records: make([]Record, len(d.Records))}
	for i, rec := range d.Records {
		rec.Row = rec.Row.Clone()
		out.Records[i] = rec
	}
	return out
}

// Coverage derives the set of weeks from the records. It is recomputed on every
// call and never cached.
func (d Dataset) Coverage() Coverage {
	cov := Coverage{}
	for _, rec := range d.Records {
		cov.Add(rec.Week)
	}
	return cov
}

// CoverageOf is the set of weeks that hold records in every one of modes. With
// no modes it is the same as Coverage.
func (d Dataset) CoverageOf(modes ...Mode) Coverage {
	if len(modes) == 0 {
		return d.Coverage()
	}
	seen := map[string]map[Mode]bool{}
	weeks := Coverage{}
	for _, rec := range d.Records {
		key := rec.Week.Key()
		if seen[key] == nil {
			seen[key] = map[Mode]bool{}
		}
		seen[key][rec.Mode] = true
		weeks[key] = rec.Week
	}
	cov := Coverage{}
	for key, w := range weeks {
		complete := true
		for _, m := range modes {
			if !seen[key][m] {
				complete = false
				break
			}
		}
		if complete {
			cov.Add(w)
		}
	}
	return cov
}

// Earliest returns the week with the earliest start date.
func (d Dataset) Earliest() (Week, bool) {
	var (
		earliest Week
		found    bool
	)
	for _, rec := range d.Records {
		if !found || rec.Week.Start.Before(earliest.Start) {
			earliest = rec.Week
			found = true
		}
	}
	return earliest, found
}

// Latest returns the week with the latest end date.
func (d Dataset) Latest() (Week, bool) {
	var (
		latest Week
		found  bool
	)
	for _, rec := range d.Records {
		if !found || rec.Week.End.After(latest.End) {
			latest = rec.Week
			found = true
		}
	}
	return latest, found
}

// Select returns the records of week in the given mode.
func (d Dataset) Select(week Week, mode Mode) []Record {
	var out []Record
	for _, rec := range d.Records {
		if rec.Week.Equal(week) && rec.Mode == mode {
			out = append(out, rec)
		}
	}
	return out
}

// SelectWeek returns every record of week regardless of mode.
func (d Dataset) SelectWeek(week Week) []Record {
	var out []Record
	for _, rec := range d.Records {
		if rec.Week.Equal(week) {
			out = append(out, rec)
		}
	}
	return out
}

// Upsert replaces the generation of rows stored under (week, mode) with records.
// It returns the number of rows that were dropped.
func (d *Dataset) Upsert(week Week, mode Mode, records []Record) int {
	kept := d.Records[:0:0]
	removed := 0
	for _, rec := range d.Records {
		if rec.Week.Equal(week) && rec.Mode == mode {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	for _, rec := range records {
		rec.Week = week
		rec.Mode = mode
		kept = append(kept, rec)
	}
	d.Records = kept
	return removed
}

// RemoveWeek drops every record of week, across all modes.
func (d *Dataset) RemoveWeek(week Week) int {
	kept := d.Records[:0:0]
	removed := 0
	for _, rec := range d.Records {
		if rec.Week.Equal(week) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	d.Records = kept
	return removed
}
