package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

func week(t *testing.T, start string) domain.Week {
	t.Helper()
	d, err := domain.ParseDate(start)
	require.NoError(t, err)
	return domain.NewWeek(d)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "Master_Data"))
	ds, err := store.Load(context.Background(), domain.DomainROI)
	require.NoError(t, err)
	assert.Equal(t, domain.DomainROI, ds.Domain)
	assert.True(t, ds.Empty())
}

func TestSaveThenLoadKeepsRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(t.TempDir())
	fetched := time.Date(2025, 7, 7, 6, 0, 0, 0, time.UTC)

	ds := domain.NewDataset(domain.DomainCalls)
	w := week(t, "06/29/2025")
	ds.Upsert(w, domain.ModeInbound, domain.NewRecords(w, domain.ModeInbound, []domain.Row{
		{{Name: "Call Center Rep", Value: "Alice"}, {Name: "Total Booked", Value: "3"}},
	}))
	ds.Upsert(w, domain.ModeOutbound, []domain.Record{{
		FetchedAt:  fetched,
		Confidence: domain.ConfidenceUnconfirmed,
		Row:        domain.Row{{Name: "Call Center Rep", Value: "Totals"}},
	}})

	require.NoError(t, store.Save(ctx, ds))

	path, err := store.Path(domain.DomainCalls)
	require.NoError(t, err)
	assert.Equal(t, "all_call_center_data.parquet", filepath.Base(path))

	loaded, err := store.Load(ctx, domain.DomainCalls)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	first := loaded.Records[0]
	assert.True(t, first.Week.Equal(w))
	assert.Equal(t, domain.ModeInbound, first.Mode)
	assert.Equal(t, domain.ConfidenceConfirmed, first.Confidence)
	assert.Equal(t, []string{"Call Center Rep", "Total Booked"}, first.Row.Names())

	second := loaded.Records[1]
	assert.Equal(t, domain.ModeOutbound, second.Mode)
	assert.Equal(t, domain.ConfidenceUnconfirmed, second.Confidence)
	assert.True(t, second.FetchedAt.Equal(fetched))
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	store := NewStore(dir)

	ds := domain.NewDataset(domain.DomainROI)
	for _, start := range []string{"06/15/2025", "06/22/2025"} {
		w := week(t, start)
		ds.Upsert(w, domain.ModeNone, domain.NewRecords(w, domain.ModeNone, []domain.Row{{{Name: "Revenue", Value: "$1"}}}))
	}
	require.NoError(t, store.Save(ctx, ds))

	ds.RemoveWeek(week(t, "06/15/2025"))
	require.NoError(t, store.Save(ctx, ds))

	loaded, err := store.Load(ctx, domain.DomainROI)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "06/22/2025", loaded.Records[0].Week.StartString())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	store := NewStore(dir)

	path, err := store.Backup(ctx, domain.DomainROI, "20250707")
	require.NoError(t, err)
	assert.Empty(t, path, "nothing to back up yet")

	ds := domain.NewDataset(domain.DomainROI)
	w := week(t, "06/29/2025")
	ds.Upsert(w, domain.ModeNone, domain.NewRecords(w, domain.ModeNone, []domain.Row{{{Name: "Revenue", Value: "$10"}}}))
	require.NoError(t, store.Save(ctx, ds))

	path, err = store.Backup(ctx, domain.DomainROI, "20250707")
	require.NoError(t, err)
	assert.Equal(t, "all_roi_data_backup_20250707.parquet", filepath.Base(path))

	original, err := os.ReadFile(filepath.Join(dir, "all_roi_data.parquet"))
	require.NoError(t, err)
	copied, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, copied)
}

func TestUnknownDomain(t *testing.T) {
	t.Parallel()

	_, err := NewStore(t.TempDir()).Load(context.Background(), domain.Domain("weather"))
	assert.Error(t, err)
}
