// Package history archives mapping runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"yashubustudio/ontomap/ontomap"
)

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is not in the archive.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	source_path  TEXT NOT NULL,
	target_path  TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	report_path  TEXT NOT NULL,
	threshold    REAL NOT NULL,
	model_id     TEXT NOT NULL,
	source_count INTEGER NOT NULL,
	target_count INTEGER NOT NULL,
	mapped       INTEGER NOT NULL,
	unknown      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	source_label   TEXT NOT NULL,
	mapping        TEXT NOT NULL,
	closest_target TEXT NOT NULL DEFAULT '',
	score          REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// Run is one archived pipeline execution.
type Run struct {
	ID          string
	StartedAt   time.Time
	SourcePath  string
	TargetPath  string
	OutputPath  string
	ReportPath  string
	Threshold   float64
	ModelID     string
	SourceCount int
	TargetCount int
	Mapped      int
	Unknown     int
	Mapping     *ontomap.Mapping
}

// NewRun builds an archive record from a finished job.
func NewRun(job ontomap.Job, res ontomap.JobResult, modelID string) Run {
	return Run{
		ID:          uuid.NewString(),
		StartedAt:   res.StartedAt,
		SourcePath:  job.SourcePath,
		TargetPath:  job.TargetPath,
		OutputPath:  res.OutputPath,
		ReportPath:  res.ReportPath,
		Threshold:   job.Threshold,
		ModelID:     modelID,
		SourceCount: res.SourceCount,
		TargetCount: res.TargetCount,
		Mapped:      res.Summary.Mapped,
		Unknown:     res.Summary.Unknown,
		Mapping:     res.Mapping,
	}
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and its results in one transaction. An empty ID is
// replaced with a fresh UUID; the stored ID is returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const insertRun = `INSERT INTO runs
		(id, started_at, source_path, target_path, output_path, report_path, threshold, model_id, source_count, target_count, mapped, unknown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertRun,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.SourcePath, run.TargetPath,
		run.OutputPath, run.ReportPath, run.Threshold, run.ModelID,
		run.SourceCount, run.TargetCount, run.Mapped, run.Unknown,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if run.Mapping != nil {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
			(run_id, position, source_label, mapping, closest_target, score) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("prepare results: %w", err)
		}
		defer stmt.Close()
		for i, row := range run.Mapping.Rows() {
			if _, err := stmt.ExecContext(ctx, run.ID, i, row.Source, row.Mapping, row.ClosestTarget, row.Score); err != nil {
				return "", fmt.Errorf("insert result %q: %w", row.Source, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns up to limit runs, newest first. Mapping is left nil.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, started_at, source_path, target_path, output_path, report_path, threshold, model_id, source_count, target_count, mapped, unknown
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// GetRun returns one run including its mapping.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		id, started_at, source_path, target_path, output_path, report_path, threshold, model_id, source_count, target_count, mapped, unknown
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return Run{}, err
	}
	run.Mapping, err = s.Results(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Results returns the mapping stored for a run, in original source order.
func (s *Store) Results(ctx context.Context, runID string) (*ontomap.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_label, mapping, closest_target, score
		FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	m := ontomap.NewMapping()
	for rows.Next() {
		var source string
		var r ontomap.Result
		if err := rows.Scan(&source, &r.Mapping, &r.ClosestTarget, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		m.Set(source, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var started string
	if err := sc.Scan(&run.ID, &started, &run.SourcePath, &run.TargetPath, &run.OutputPath, &run.ReportPath,
		&run.Threshold, &run.ModelID, &run.SourceCount, &run.TargetCount, &run.Mapped, &run.Unknown); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return run, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	run.StartedAt = t
	return run, nil
}
