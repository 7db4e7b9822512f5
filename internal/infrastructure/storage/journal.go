package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS backfill_runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	missing     INTEGER NOT NULL DEFAULT 0,
	calls_added INTEGER NOT NULL DEFAULT 0,
	roi_added   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS backfill_run_weeks (
	run_id     TEXT NOT NULL REFERENCES backfill_runs(id),
	position   INTEGER NOT NULL,
	week_start TEXT NOT NULL,
	week_end   TEXT NOT NULL,
	status     TEXT NOT NULL,
	warnings   TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS backfill_runs_started_at ON backfill_runs(started_at);
`

// SQLiteJournal records backfill runs into a local SQLite file.
type SQLiteJournal struct {
	db *sql.DB
}

var _ ports.RunJournal = (*SQLiteJournal)(nil)

// OpenJournal opens (creating if needed) the journal at path and applies the schema.
func OpenJournal(ctx context.Context, path string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return NewSQLiteJournal(db), nil
}

// NewSQLiteJournal wires an already-migrated sql.DB.
func NewSQLiteJournal(db *sql.DB) *SQLiteJournal {
	return &SQLiteJournal{db: db}
}

// Close releases the database handle.
func (j *SQLiteJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordRun stores the run and its per-week outcomes in one transaction.
func (j *SQLiteJournal) RecordRun(ctx context.Context, run ports.RunRecord) error {
	if j.db == nil {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := sq.Insert("backfill_runs").
		Columns("id", "started_at", "finished_at", "status", "reason", "missing", "calls_added", "roi_added").
		Values(run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Status, run.Reason,
			run.Missing, run.CallsAdded, run.ROIAdded).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Weeks) > 0 {
		insert := sq.Insert("backfill_run_weeks").
			Columns("run_id", "position", "week_start", "week_end", "status", "warnings")
		for i, w := range run.Weeks {
			warnings := w.Warnings
			if warnings == nil {
				warnings = []string{}
			}
			encoded, err := json.Marshal(warnings)
			if err != nil {
				return fmt.Errorf("encode warnings: %w", err)
			}
			insert = insert.Values(run.ID, i, w.Week.StartString(), w.Week.EndString(), w.Status, string(encoded))
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build week insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert run weeks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their weeks.
func (j *SQLiteJournal) RecentRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query, args, err := sq.Select("id", "started_at", "finished_at", "status", "reason", "missing", "calls_added", "roi_added").
		From("backfill_runs").
		OrderBy("started_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build run query: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var (
		runs  []ports.RunRecord
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			run               ports.RunRecord
			started, finished string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Status, &run.Reason,
			&run.Missing, &run.CallsAdded, &run.ROIAdded); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		index[run.ID] = len(runs)
		runs = append(runs, run)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	if err := j.attachWeeks(ctx, runs, index, ids); err != nil {
		return nil, err
	}
	return runs, nil
}

func (j *SQLiteJournal) attachWeeks(ctx context.Context, runs []ports.RunRecord, index map[string]int, ids []string) error {
	query, args, err := sq.Select("run_id", "week_start", "week_end", "status", "warnings").
		From("backfill_run_weeks").
		Where(sq.Eq{"run_id": ids}).
		OrderBy("run_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build week query: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query run weeks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var runID, start, end, status, warnings string
		if err := rows.Scan(&runID, &start, &end, &status, &warnings); err != nil {
			return fmt.Errorf("scan run week: %w", err)
		}
		week, err := domain.ParseWeek(start, end)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		rw := ports.RunWeek{Week: week, Status: status}
		if err := json.Unmarshal([]byte(warnings), &rw.Warnings); err != nil {
			return fmt.Errorf("decode warnings: %w", err)
		}
		i := index[runID]
		runs[i].Weeks = append(runs[i].Weeks, rw)
	}
	return rows.Err()
}

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
