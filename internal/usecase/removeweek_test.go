package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/logging"
)

func seededStore(t *testing.T) *memoryStore {
	t.Helper()
	store := newMemoryStore()
	store.put(callsDataset(t, "06/15/2025", "06/22/2025"))

	roi := domain.NewDataset(domain.DomainROI)
	for _, s := range []string{"06/15/2025", "06/22/2025"} {
		w := week(t, s)
		roi.Upsert(w, domain.ModeNone, domain.NewRecords(w, domain.ModeNone, []domain.Row{{
			{Name: "Amount Invested", Value: "$0.00"},
			{Name: "# of Leads", Value: "0"},
			{Name: "Revenue", Value: "$0.00"},
			{Name: "Cost Per Appt", Value: "$0.00"},
		}}))
	}
	store.put(roi)
	return store
}

func TestWeekRemoverPreview(t *testing.T) {
	t.Parallel()

	remover := NewWeekRemover(seededStore(t), logging.Discard())
	p, err := remover.Preview(context.Background(), week(t, "06/22/2025"))
	require.NoError(t, err)

	assert.Equal(t, 2, p.CallRows)
	require.Len(t, p.ROIRows, 1)
	assert.Equal(t, []string{"Amount Invested", "# of Leads", "Revenue"}, p.ROIRows[0].Names())
}

func TestWeekRemoverRemove(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	remover := NewWeekRemover(store, logging.Discard())
	ctx := context.Background()
	w := week(t, "06/22/2025")

	result, err := remover.Remove(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, []string{"roi_backup_06-22-2025", "calls_backup_06-22-2025"}, result.Backups)
	assert.Equal(t, 4, result.CallsBefore)
	assert.Equal(t, 2, result.CallsAfter)
	assert.Equal(t, 2, result.ROIBefore)
	assert.Equal(t, 1, result.ROIAfter)

	for _, d := range []domain.Domain{domain.DomainCalls, domain.DomainROI} {
		ds, err := store.Load(ctx, d)
		require.NoError(t, err)
		assert.False(t, ds.Coverage().Has(w), d)
		assert.True(t, ds.Coverage().Has(week(t, "06/15/2025")), d)
	}
}

func TestWeekRemoverWeekNotFound(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	_, err := NewWeekRemover(store, logging.Discard()).Remove(context.Background(), week(t, "01/05/2025"))
	require.ErrorIs(t, err, ErrWeekNotFound)
	assert.Empty(t, store.backups)
	assert.Zero(t, store.saveCount(domain.DomainCalls))
}

func TestWeekRemoverThenBackfillRefetches(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()
	_, err := NewWeekRemover(store, logging.Discard()).Remove(ctx, week(t, "06/22/2025"))
	require.NoError(t, err)

	engine := newTestBackfill(&fakeReports{}, validCredentials)
	engine.store = store
	result, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"06/22/2025", "06/29/2025"}, weekStarts(result.Missing))
}
