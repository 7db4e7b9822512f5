package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	journal, err := OpenJournal(context.Background(), filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })
	return journal
}

func TestJournalRecordsAndListsRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	journal := openTestJournal(t)

	start, err := domain.ParseDate("06/22/2025")
	require.NoError(t, err)
	w1 := domain.NewWeek(start)
	w2 := w1.Next()
	base := time.Date(2025, 7, 7, 6, 0, 0, 0, time.UTC)

	require.NoError(t, journal.RecordRun(ctx, ports.RunRecord{
		ID:         "run-1",
		StartedAt:  base,
		FinishedAt: base.Add(time.Minute),
		Status:     "completed",
		Missing:    2,
		CallsAdded: 14,
		ROIAdded:   1,
		Weeks: []ports.RunWeek{
			{Week: w1, Status: "ok"},
			{Week: w2, Status: "partial", Warnings: []string{"roi: empty result"}},
		},
	}))
	require.NoError(t, journal.RecordRun(ctx, ports.RunRecord{
		ID:         "run-2",
		StartedAt:  base.Add(500 * time.Millisecond),
		FinishedAt: base.Add(time.Second),
		Status:     "credentials_invalid",
		Reason:     "Cookie file is empty",
	}))

	runs, err := journal.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "Cookie file is empty", runs[0].Reason)
	assert.Empty(t, runs[0].Weeks)

	first := runs[1]
	assert.Equal(t, "completed", first.Status)
	assert.True(t, first.StartedAt.Equal(base))
	assert.Equal(t, 2, first.Missing)
	assert.Equal(t, 14, first.CallsAdded)
	assert.Equal(t, 1, first.ROIAdded)
	require.Len(t, first.Weeks, 2)
	assert.True(t, first.Weeks[0].Week.Equal(w1))
	assert.Empty(t, first.Weeks[0].Warnings)
	assert.Equal(t, []string{"roi: empty result"}, first.Weeks[1].Warnings)

	limited, err := journal.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-2", limited[0].ID)
}

func TestJournalRejectsDuplicateRunID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	journal := openTestJournal(t)
	run := ports.RunRecord{ID: "dup", StartedAt: time.Now(), FinishedAt: time.Now(), Status: "up_to_date"}

	require.NoError(t, journal.RecordRun(ctx, run))
	assert.Error(t, journal.RecordRun(ctx, run))
}

func TestJournalEmpty(t *testing.T) {
	t.Parallel()

	runs, err := openTestJournal(t).RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
