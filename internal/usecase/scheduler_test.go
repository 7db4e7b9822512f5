package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/logging"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

type manualDriver struct {
	mu      sync.Mutex
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

func (d *manualDriver) fire(at time.Time) {
	d.mu.Lock()
	job := d.job
	d.mu.Unlock()
	job(at)
}

func TestSchedulerRunsBackfillThenProjections(t *testing.T) {
	t.Parallel()

	reports := &fakeReports{}
	store := newMemoryStore()
	store.put(callsDataset(t, "06/29/2025"))

	engine := newTestBackfill(reports, validCredentials)
	engine.store = store
	driver := &manualDriver{}
	s := NewScheduler(driver, engine, newTestProjections(reports, store), logging.Discard())

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	driver.fire(referenceNow)

	assert.Equal(t, []string{"rankings rpa", "rankings sales", "appointments"}, reports.Requests())
	assert.Equal(t, 1, store.saveCount(domain.DomainAppointments))

	require.NoError(t, s.Stop(ctx))
	assert.True(t, driver.stopped)
}

func TestSchedulerSkipsProjectionsWithoutCredentials(t *testing.T) {
	t.Parallel()

	reports := &fakeReports{}
	store := newMemoryStore()
	engine := newTestBackfill(reports, fakeChecker{status: ports.CredentialStatus{Reason: "Cookie file is empty"}})
	engine.store = store

	s := NewScheduler(nil, engine, newTestProjections(reports, store), logging.Discard())
	s.RunOnce(context.Background(), referenceNow)
	assert.Empty(t, reports.Requests())
	require.NoError(t, s.Start(context.Background()), "nil driver is a no-op")
}
