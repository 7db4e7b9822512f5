package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/logging"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

var referenceNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func week(t *testing.T, start string) domain.Week {
	t.Helper()
	d, err := domain.ParseDate(start)
	require.NoError(t, err)
	return domain.NewWeek(d)
}

type fakeChecker struct {
	status ports.CredentialStatus
}

func (f fakeChecker) Check(time.Time) ports.CredentialStatus { return f.status }

var validCredentials = fakeChecker{status: ports.CredentialStatus{Valid: true, Reason: "Cookies are valid"}}

type fakeReports struct {
	mu         sync.Mutex
	requests   []string
	conversion func(domain.Week, domain.Mode) ([]domain.Row, error)
	roi        func(domain.Week) ([]domain.Row, error)
	rankings   func(string) ([]domain.Row, error)
	appts      func() ([]domain.Row, error)
	jobs       func(domain.Week) ([]domain.Row, error)
}

func (f *fakeReports) log(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, fmt.Sprintf(format, args...))
}

func (f *fakeReports) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeReports) FetchConversion(_ context.Context, w domain.Week, mode domain.Mode) ([]domain.Row, error) {
	f.log("conversion %s %s", mode, w.StartString())
	if f.conversion != nil {
		return f.conversion(w, mode)
	}
	return []domain.Row{{
		{Name: "Call Center Rep", Value: "Totals"},
		{Name: "Outbound Communication Count", Value: "40"},
		{Name: "Total Booked", Value: "6"},
	}}, nil
}

func (f *fakeReports) FetchROI(_ context.Context, w domain.Week) ([]domain.Row, error) {
	f.log("roi %s", w.StartString())
	if f.roi != nil {
		return f.roi(w)
	}
	return []domain.Row{{
		{Name: "Amount Invested", Value: "$1,000.00"},
		{Name: "Revenue", Value: "$5,000.00"},
		{Name: "# of Leads", Value: "10"},
	}}, nil
}

func (f *fakeReports) FetchLocationRankings(_ context.Context, metric string) ([]domain.Row, error) {
	f.log("rankings %s", metric)
	if f.rankings != nil {
		return f.rankings(metric)
	}
	return []domain.Row{{{Name: "Location", Value: "Boston"}, {Name: "Value", Value: "$1,200"}}}, nil
}

func (f *fakeReports) FetchFutureAppointments(context.Context) ([]domain.Row, error) {
	f.log("appointments")
	if f.appts != nil {
		return f.appts()
	}
	return []domain.Row{{{Name: "Location", Value: "Boston"}, {Name: "Appointments", Value: "4"}}}, nil
}

func (f *fakeReports) FetchJobStatus(_ context.Context, w domain.Week) ([]domain.Row, error) {
	f.log("jobs %s", w.StartString())
	if f.jobs != nil {
		return f.jobs(w)
	}
	return []domain.Row{{{Name: "ID", Value: "C1"}, {Name: "Franchisee", Value: "Boston"}, {Name: "Status", Value: "Installed"}}}, nil
}

type memoryStore struct {
	mu       sync.Mutex
	datasets map[domain.Domain]domain.Dataset
	saves    map[domain.Domain]int
	backups  []string
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{datasets: map[domain.Domain]domain.Dataset{}, saves: map[domain.Domain]int{}}
}

func (m *memoryStore) Load(_ context.Context, d domain.Domain) (domain.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[d]
	if !ok {
		return domain.NewDataset(d), nil
	}
	return ds.Clone(), nil
}

func (m *memoryStore) Save(_ context.Context, ds domain.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.datasets[ds.Domain] = ds.Clone()
	m.saves[ds.Domain]++
	return nil
}

func (m *memoryStore) Backup(_ context.Context, d domain.Domain, tag string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[d]; !ok {
		return "", nil
	}
	path := fmt.Sprintf("%s_backup_%s", d, tag)
	m.backups = append(m.backups, path)
	return path, nil
}

func (m *memoryStore) put(ds domain.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[ds.Domain] = ds.Clone()
}

func (m *memoryStore) saveCount(d domain.Domain) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[d]
}

type memoryJournal struct {
	mu   sync.Mutex
	runs []ports.RunRecord
}

func (j *memoryJournal) RecordRun(_ context.Context, run ports.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, run)
	return nil
}

func (j *memoryJournal) RecentRuns(_ context.Context, limit int) ([]ports.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ports.RunRecord, 0, len(j.runs))
	for i := len(j.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.runs[i])
	}
	return out, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, digest)
	return n.err
}

var errUpstream = errors.New("canvas returned 502 Bad Gateway")

func newTestBackfill(reports *fakeReports, checker ports.CredentialChecker) *Backfill {
	ids := 0
	return NewBackfill(BackfillDeps{
		Credentials: checker,
		Reports:     reports,
		Logger:      logging.Discard(),
		Location:    time.UTC,
		Clock:       func() time.Time { return referenceNow },
		NewID: func() string {
			ids++
			return fmt.Sprintf("run-%d", ids)
		},
	})
}

// callsDataset builds a calls dataset holding one inbound and one outbound row
// for each week.
func callsDataset(t *testing.T, starts ...string) domain.Dataset {
	t.Helper()
	ds := domain.NewDataset(domain.DomainCalls)
	for _, s := range starts {
		w := week(t, s)
		for _, mode := range []domain.Mode{domain.ModeInbound, domain.ModeOutbound} {
			ds.Upsert(w, mode, domain.NewRecords(w, mode, []domain.Row{
				{{Name: "Call Center Rep", Value: "Totals"}},
			}))
		}
	}
	return ds
}
