package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfluker/aod-dashboard/internal/config"
	"github.com/mfluker/aod-dashboard/internal/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Canvas.CookieFile = filepath.Join(dir, "missing_cookies.json")
	cfg.Canvas.DiagnosticsDir = ""
	cfg.Snapshots.Dir = filepath.Join(dir, "data")
	cfg.Journal.Path = filepath.Join(dir, "data", "runs.db")
	return cfg
}

func TestNewWithoutCookies(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	status := a.Credentials.Check(a.LastCompleteWeek().End)
	assert.False(t, status.Valid)
	assert.Contains(t, status.Reason, "Cookie file not found at:")

	assert.Equal(t, []string{
		"appointments", "conversion-inbound", "conversion-outbound", "jobs", "rankings-rpa", "rankings-sales", "roi",
	}, a.Reports.Names())

	journal, err := a.Journal()
	require.NoError(t, err)
	runs, err := journal.RecentRuns(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	data, err := a.LoadDashboard(ctx)
	require.NoError(t, err)
	assert.True(t, data.Calls.Empty())
	assert.True(t, data.Appointments.Empty())
}

func TestRunAbortsOnMissingCookies(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	result, err := a.Backfill.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, "credentials_invalid", string(result.Status))

	journal, err := a.Journal()
	require.NoError(t, err)
	runs, err := journal.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "credentials_invalid", runs[0].Status)
}

func TestJournalDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Path = ""
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	_, err = a.Journal()
	assert.Error(t, err)
	assert.NoError(t, a.Close())
}
