package dashboard

import (
	"sort"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// Reference is a comparison week relative to the selected week.
type Reference struct {
	Label     string
	WeeksBack int
	Week      domain.Week
	Found     bool
}

// ReferenceOffsets are the comparison points offered on the report, in order.
var ReferenceOffsets = []struct {
	Label     string
	WeeksBack int
}{
	{"1 week ago", 1},
	{"1 month ago", 4},
	{"3 months ago", 13},
	{"6 months ago", 26},
	{"1 year ago", 52},
}

// ReferenceWeeks resolves each offset against the weeks actually present in
// available. An offset whose week is absent is returned with Found unset.
func ReferenceWeeks(selected domain.Week, available domain.Coverage) []Reference {
	refs := make([]Reference, 0, len(ReferenceOffsets))
	for _, off := range ReferenceOffsets {
		w := selected.WeeksBack(off.WeeksBack)
		refs = append(refs, Reference{
			Label:     off.Label,
			WeeksBack: off.WeeksBack,
			Week:      w,
			Found:     available.Has(w),
		})
	}
	return refs
}

// PreviousWeek returns the week before selected when available holds it.
func PreviousWeek(selected domain.Week, available domain.Coverage) (domain.Week, bool) {
	prev := selected.Prev()
	return prev, available.Has(prev)
}

// WeekOption is one entry of the week picker.
type WeekOption struct {
	Label string
	Value string
}

// WeekOptions lists the weeks of ds newest first, labeled like "June 8 – 14, 2025"
// and valued by Week.Key.
func WeekOptions(ds domain.Dataset) []WeekOption {
	weeks := ds.Coverage().Weeks()
	sort.Slice(weeks, func(i, j int) bool { return weeks[j].Before(weeks[i]) })

	opts := make([]WeekOption, len(weeks))
	for i, w := range weeks {
		opts[i] = WeekOption{Label: w.Label(), Value: w.Key()}
	}
	return opts
}
