package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the MM/DD/YYYY form Canvas and the snapshot files use.
const DateLayout = "01/02/2006"

// ErrInvalidWeek is returned when a week's bounds are not six days apart.
var ErrInvalidWeek = errors.New("invalid week")

// Week is a Sunday-to-Saturday calendar interval. Both bounds are dates at
// midnight UTC; the wall-clock part of any input is discarded.
type Week struct {
	Start time.Time
	End   time.Time
}

// Date strips the clock from t, keeping the calendar date as seen in t's location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewWeek builds the week starting on start.
func NewWeek(start time.Time) Week {
	s := Date(start)
	return Week{Start: s, End: s.AddDate(0, 0, 6)}
}

// ParseDate reads a MM/DD/YYYY string.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// ParseWeek reads week bounds in MM/DD/YYYY form.
func ParseWeek(start, end string) (Week, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Week{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Week{}, err
	}
	w := Week{Start: s, End: e}
	if !e.Equal(s.AddDate(0, 0, 6)) {
		return Week{}, fmt.Errorf("%w: %s", ErrInvalidWeek, w)
	}
	return w, nil
}

// ParseWeekKey reads the "start|end" form produced by Key.
func ParseWeekKey(key string) (Week, error) {
	start, end, ok := strings.Cut(key, "|")
	if !ok {
		return Week{}, fmt.Errorf("%w: key %q", ErrInvalidWeek, key)
	}
	return ParseWeek(start, end)
}

// StartString renders the start date as MM/DD/YYYY.
func (w Week) StartString() string { return w.Start.Format(DateLayout) }

// EndString renders the end date as MM/DD/YYYY.
func (w Week) EndString() string { return w.End.Format(DateLayout) }

// Key is the canonical identity of the week.
func (w Week) Key() string { return w.StartString() + "|" + w.EndString() }

func (w Week) String() string { return w.StartString() + " – " + w.EndString() }

// IsZero reports whether the week is unset.
func (w Week) IsZero() bool { return w.Start.IsZero() }

// Equal compares calendar bounds.
func (w Week) Equal(other Week) bool {
	return w.Start.Equal(other.Start) && w.End.Equal(other.End)
}

// Before orders weeks by start date.
func (w Week) Before(other Week) bool { return w.Start.Before(other.Start) }

// Next returns the following week.
func (w Week) Next() Week { return NewWeek(w.Start.AddDate(0, 0, 7)) }

// Prev returns the preceding week.
func (w Week) Prev() Week { return NewWeek(w.Start.AddDate(0, 0, -7)) }

// WeeksBack returns the week n weeks earlier.
func (w Week) WeeksBack(n int) Week { return NewWeek(w.Start.AddDate(0, 0, -7*n)) }

// IsSundayAligned reports whether the week starts on a Sunday.
func (w Week) IsSundayAligned() bool { return w.Start.Weekday() == time.Sunday }

// Label renders the week the way the dashboard selector shows it, e.g.
// "June 8 – 14, 2025" or "June 29 – July 5, 2025".
func (w Week) Label() string {
	switch {
	case w.Start.Year() != w.End.Year():
		return w.Start.Format("January 2, 2006") + " – " + w.End.Format("January 2, 2006")
	case w.Start.Month() != w.End.Month():
		return w.Start.Format("January 2") + " – " + w.End.Format("January 2, 2006")
	default:
		return fmt.Sprintf("%s %d – %d, %d", w.Start.Format("January"), w.Start.Day(), w.End.Day(), w.End.Year())
	}
}

// FileToken renders the week for use in file names, e.g. "06-08-2025_06-14-2025".
func (w Week) FileToken() string {
	return w.Start.Format("01-02-2006") + "_" + w.End.Format("01-02-2006")
}
