// Package coverage computes which Sunday–Saturday weeks a dataset should hold
// and which of them it is missing.
package coverage

import (
	"time"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// DefaultLookbackWeeks is how far back an empty dataset starts its scan.
const DefaultLookbackWeeks = 12

// AlignToSunday moves t back to the Sunday on or before it.
func AlignToSunday(t time.Time) time.Time {
	d := domain.Date(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// MostRecentCompleteWeek returns the latest week that has fully elapsed before
// ref. The Sunday strictly before ref is treated as too recent and one more
// week is stepped back, so a reference date on a Sunday yields the week ending
// eight days earlier.
func MostRecentCompleteWeek(ref time.Time) domain.Week {
	d := domain.Date(ref)
	back := int(d.Weekday())
	if back == 0 {
		back = 7
	}
	return domain.NewWeek(d.AddDate(0, 0, -back-7))
}

// MissingWeeks walks every week from the earliest one in ds (or lookbackWeeks
// before today when ds is empty) through MostRecentCompleteWeek(today) and
// returns, in chronological order, the ones ds does not cover. Interior gaps
// are reported as well as trailing ones. When modes are given a week only
// counts as covered once it holds records for each of them.
func MissingWeeks(ds domain.Dataset, today time.Time, lookbackWeeks int, modes ...domain.Mode) []domain.Week {
	if lookbackWeeks <= 0 {
		lookbackWeeks = DefaultLookbackWeeks
	}

	from := domain.Date(today).AddDate(0, 0, -7*lookbackWeeks)
	if earliest, ok := ds.Earliest(); ok {
		from = earliest.Start
	}

	return MissingBetween(ds.CoverageOf(modes...), AlignToSunday(from), MostRecentCompleteWeek(today))
}

// MissingBetween lists the weeks from the one starting on start through last
// (inclusive) that cov does not contain.
func MissingBetween(cov domain.Coverage, start time.Time, last domain.Week) []domain.Week {
	var missing []domain.Week
	for w := domain.NewWeek(AlignToSunday(start)); !w.Start.After(last.Start); w = w.Next() {
		if !cov.Has(w) {
			missing = append(missing, w)
		}
	}
	return missing
}
