// Package snapshot keeps each dataset as one whole-file Parquet snapshot.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

var fileNames = map[domain.Domain]string{
	domain.DomainCalls:         "all_call_center_data",
	domain.DomainROI:           "all_roi_data",
	domain.DomainJobs:          "all_jobs_data",
	domain.DomainRankingsRPA:   "projections_rpa_data",
	domain.DomainRankingsSales: "projections_sales_data",
	domain.DomainAppointments:  "projections_appointments_data",
}

const extension = ".parquet"

type snapshotRow struct {
	WeekStart  string          `parquet:"week_start,zstd"`
	WeekEnd    string          `parquet:"week_end,zstd"`
	Mode       string          `parquet:"mode,zstd,optional"`
	FetchedAt  string          `parquet:"fetched_at,zstd,optional"`
	Confidence string          `parquet:"confidence,zstd,optional"`
	Fields     []snapshotField `parquet:"fields"`
}

type snapshotField struct {
	Name  string `parquet:"name,zstd"`
	Value string `parquet:"value,zstd"`
}

// Store reads and writes dataset snapshots under a single directory.
type Store struct {
	dir string
	now func() time.Time
}

var _ ports.SnapshotStore = (*Store)(nil)

// NewStore creates the directory lazily on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Path returns the snapshot file of d.
func (s *Store) Path(d domain.Domain) (string, error) {
	base, ok := fileNames[d]
	if !ok {
		return "", fmt.Errorf("unknown dataset %q", d)
	}
	return filepath.Join(s.dir, base+extension), nil
}

// Load reads the whole dataset. A missing file is an empty dataset.
func (s *Store) Load(ctx context.Context, d domain.Domain) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	path, err := s.Path(d)
	if err != nil {
		return domain.Dataset{}, err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return domain.NewDataset(d), nil
	}
	rows, err := parquet.ReadFile[snapshotRow](path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	ds := domain.NewDataset(d)
	ds.Records = make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := row.record()
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("read %s row %d: %w", filepath.Base(path), i, err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// Save overwrites the snapshot with ds. The file is replaced atomically.
func (s *Store) Save(ctx context.Context, ds domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(ds.Domain)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	rows := make([]snapshotRow, 0, len(ds.Records))
	for _, rec := range ds.Records {
		rows = append(rows, fromRecord(rec))
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := parquet.Write(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Backup copies the current snapshot of d next to it, suffixed with tag (or a
// timestamp when tag is empty). It returns "" when there is nothing to back up.
func (s *Store) Backup(ctx context.Context, d domain.Domain, tag string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.Path(d)
	if err != nil {
		return "", err
	}
	if tag == "" {
		tag = s.now().Format("20060102_150405")
	}

	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer src.Close()

	target := strings.TrimSuffix(path, extension) + "_backup_" + tag + extension
	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	return target, nil
}

func fromRecord(rec domain.Record) snapshotRow {
	row := snapshotRow{
		WeekStart:  rec.Week.StartString(),
		WeekEnd:    rec.Week.EndString(),
		Mode:       string(rec.Mode),
		Confidence: string(rec.Confidence),
		Fields:     make([]snapshotField, 0, len(rec.Row)),
	}
	if !rec.FetchedAt.IsZero() {
		row.FetchedAt = rec.FetchedAt.UTC().Format(time.RFC3339)
	}
	for _, f := range rec.Row {
		row.Fields = append(row.Fields, snapshotField{Name: f.Name, Value: f.Value})
	}
	return row
}

func (r snapshotRow) record() (domain.Record, error) {
	week, err := domain.ParseWeek(r.WeekStart, r.WeekEnd)
	if err != nil {
		return domain.Record{}, err
	}
	rec := domain.Record{
		Week:       week,
		Mode:       domain.Mode(r.Mode),
		Confidence: domain.Confidence(r.Confidence),
		Row:        make(domain.Row, 0, len(r.Fields)),
	}
	if rec.Confidence == "" {
		rec.Confidence = domain.ConfidenceConfirmed
	}
	if r.FetchedAt != "" {
		ts, err := time.Parse(time.RFC3339, r.FetchedAt)
		if err != nil {
			return domain.Record{}, fmt.Errorf("fetched_at: %w", err)
		}
		rec.FetchedAt = ts
	}
	for _, f := range r.Fields {
		rec.Row = append(rec.Row, domain.Field{Name: f.Name, Value: f.Value})
	}
	return rec, nil
}
