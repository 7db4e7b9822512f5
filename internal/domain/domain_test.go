package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWeek(t *testing.T, start string) Week {
	t.Helper()
	s, err := ParseDate(start)
	require.NoError(t, err)
	return NewWeek(s)
}

func TestParseWeek(t *testing.T) {
	t.Parallel()

	w, err := ParseWeek("06/08/2025", "06/14/2025")
	require.NoError(t, err)
	assert.Equal(t, "06/08/2025|06/14/2025", w.Key())
	assert.True(t, w.IsSundayAligned())
	assert.Equal(t, "June 8 – 14, 2025", w.Label())
	assert.Equal(t, "06-08-2025_06-14-2025", w.FileToken())

	_, err = ParseWeek("06/08/2025", "06/15/2025")
	assert.True(t, errors.Is(err, ErrInvalidWeek))

	_, err = ParseWeek("2025-06-08", "06/14/2025")
	assert.Error(t, err)

	fromKey, err := ParseWeekKey(w.Key())
	require.NoError(t, err)
	assert.True(t, fromKey.Equal(w))
}

func TestWeekLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start string
		want  string
	}{
		{"06/08/2025", "June 8 – 14, 2025"},
		{"06/29/2025", "June 29 – July 5, 2025"},
		{"12/28/2025", "December 28, 2025 – January 3, 2026"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mustWeek(t, tc.start).Label(), tc.start)
	}
}

func TestNewWeekDropsClock(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EST", -5*3600)
	w := NewWeek(time.Date(2025, time.June, 8, 23, 30, 0, 0, loc))
	assert.Equal(t, "06/08/2025", w.StartString())
	assert.Equal(t, "06/14/2025", w.EndString())
	assert.Equal(t, "06/15/2025", w.Next().StartString())
	assert.Equal(t, "06/01/2025", w.Prev().StartString())
	assert.Equal(t, "05/11/2025", w.WeeksBack(4).StartString())
}

func TestRowSetAndGet(t *testing.T) {
	t.Parallel()

	row := Row{{Name: "Revenue", Value: "$10"}}
	row = row.Set("Revenue", "$20").Set("Amount Invested", "$5")

	assert.Equal(t, []string{"Revenue", "Amount Invested"}, row.Names())
	assert.Equal(t, "$20", row.Value("Revenue"))
	_, ok := row.Get("missing")
	assert.False(t, ok)
}

func TestDatasetUpsertReplacesGeneration(t *testing.T) {
	t.Parallel()

	w1 := mustWeek(t, "06/08/2025")
	w2 := mustWeek(t, "06/15/2025")

	ds := NewDataset(DomainCalls)
	ds.Upsert(w1, ModeInbound, NewRecords(w1, ModeInbound, []Row{{{Name: "Call Center Rep", Value: "A"}}}))
	ds.Upsert(w1, ModeOutbound, NewRecords(w1, ModeOutbound, []Row{{{Name: "Call Center Rep", Value: "A"}}}))
	ds.Upsert(w2, ModeInbound, NewRecords(w2, ModeInbound, []Row{{{Name: "Call Center Rep", Value: "B"}}}))
	require.Equal(t, 3, ds.Len())

	removed := ds.Upsert(w1, ModeInbound, NewRecords(w1, ModeInbound, []Row{
		{{Name: "Call Center Rep", Value: "C"}},
		{{Name: "Call Center Rep", Value: "Totals"}},
	}))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 4, ds.Len())
	assert.Len(t, ds.Select(w1, ModeInbound), 2)
	assert.Len(t, ds.Select(w1, ModeOutbound), 1)

	assert.Equal(t, 3, ds.RemoveWeek(w1))
	assert.Equal(t, 1, ds.Len())
	assert.False(t, ds.Coverage().Has(w1))
	assert.True(t, ds.Coverage().Has(w2))
}

func TestDatasetCoverageAndBounds(t *testing.T) {
	t.Parallel()

	ds := NewDataset(DomainROI)
	_, ok := ds.Earliest()
	assert.False(t, ok)

	for _, start := range []string{"06/22/2025", "06/08/2025", "06/22/2025"} {
		w := mustWeek(t, start)
		ds.Records = append(ds.Records, NewRecords(w, ModeNone, []Row{{}})...)
	}

	cov := ds.Coverage()
	assert.Equal(t, 2, len(cov))
	weeks := cov.Weeks()
	assert.Equal(t, "06/08/2025", weeks[0].StartString())
	assert.Equal(t, "06/22/2025", weeks[1].StartString())

	earliest, ok := ds.Earliest()
	require.True(t, ok)
	assert.Equal(t, "06/08/2025", earliest.StartString())
	latest, ok := ds.Latest()
	require.True(t, ok)
	assert.Equal(t, "06/28/2025", latest.EndString())
}

func TestDatasetCoverageOf(t *testing.T) {
	t.Parallel()

	both, inboundOnly := mustWeek(t, "06/08/2025"), mustWeek(t, "06/15/2025")
	ds := NewDataset(DomainCalls)
	ds.Upsert(both, ModeInbound, NewRecords(both, ModeInbound, []Row{{}}))
	ds.Upsert(both, ModeOutbound, NewRecords(both, ModeOutbound, []Row{{}}))
	ds.Upsert(inboundOnly, ModeInbound, NewRecords(inboundOnly, ModeInbound, []Row{{}}))

	cov := ds.CoverageOf(ModeInbound, ModeOutbound)
	assert.True(t, cov.Has(both))
	assert.False(t, cov.Has(inboundOnly))
	assert.Len(t, ds.CoverageOf(ModeInbound), 2)
	assert.Len(t, ds.CoverageOf(), 2)
}

func TestDatasetCloneIsIndependent(t *testing.T) {
	t.Parallel()

	w := mustWeek(t, "06/08/2025")
	ds := NewDataset(DomainROI)
	ds.Upsert(w, ModeNone, NewRecords(w, ModeNone, []Row{{{Name: "Revenue", Value: "1"}}}))

	cp := ds.Clone()
	cp.Records[0].Row.Set("Revenue", "2")
	cp.RemoveWeek(w)

	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "1", ds.Records[0].Row.Value("Revenue"))
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"$1,234.50": 1234.5,
		"12.5%":     12.5,
		"(300)":     -300,
		"-$40":      -40,
		" ":         0,
		"-":         0,
		"nan":       0,
		"$0.00":     0,
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	_, err := ParseAmount("twelve")
	assert.Error(t, err)
}
