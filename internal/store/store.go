// Package store keeps the history of program runs in SQLite: the source, the
// final status, every console line and the recorded drawing.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/surface/record"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed" // setup error or cancellation
)

type Run struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`
	Warnings   int        `json:"warnings"`
	Errors     int        `json:"errors"`
	Summary    string     `json:"summary,omitempty"`
}

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// Every pooled connection to ":memory:" would get its own empty database.
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    status TEXT NOT NULL,
    warnings INTEGER DEFAULT 0,
    errors INTEGER DEFAULT 0,
    summary TEXT DEFAULT '',
    drawing TEXT DEFAULT ''
);

CREATE TABLE IF NOT EXISTS console_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id),
    level TEXT NOT NULL,
    line INTEGER DEFAULT 0,
    text TEXT NOT NULL,
    timestamp TEXT NOT NULL
);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateRun(id, source string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, source, started_at, status) VALUES (?, ?, ?, ?)`,
		id, source, time.Now().UTC().Format(time.RFC3339Nano), StatusRunning,
	)
	return err
}

// FinishRun records the outcome of a run together with its drawing.
func (s *Store) FinishRun(id, status string, warnings, errs int, summary string, d record.Drawing) error {
	drawing, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding drawing: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, warnings = ?, errors = ?, summary = ?, drawing = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), status, warnings, errs, summary, string(drawing), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) RecordConsole(runID string, e console.Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO console_lines (run_id, level, line, text, timestamp) VALUES (?, ?, ?, ?, ?)`,
		runID, e.Level.String(), e.Line, e.Text, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, source, started_at, finished_at, status, warnings, errors, summary FROM runs ORDER BY started_at DESC, _rowid_ DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, source, started_at, finished_at, status, warnings, errors, summary FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// GetDrawing returns the recorded drawing of a finished run. A run that is
// still going has an empty drawing.
func (s *Store) GetDrawing(id string) (*record.Drawing, error) {
	var raw string
	err := s.db.QueryRow(`SELECT drawing FROM runs WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var d record.Drawing
	if raw == "" {
		return &d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decoding drawing of %s: %w", id, err)
	}
	return &d, nil
}

func (s *Store) QueryConsole(runID string) ([]console.Entry, error) {
	rows, err := s.db.Query(
		`SELECT level, line, text FROM console_lines WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []console.Entry{}
	for rows.Next() {
		var e console.Entry
		var level string
		if err := rows.Scan(&level, &e.Line, &e.Text); err != nil {
			return nil, err
		}
		if err := e.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var startedAt string
	var finishedAt sql.NullString
	if err := sc.Scan(&r.ID, &r.Source, &startedAt, &finishedAt, &r.Status, &r.Warnings, &r.Errors, &r.Summary); err != nil {
		return nil, err
	}
	var err error
	r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, err
		}
		r.FinishedAt = &t
	}
	return &r, nil
}

// ---------------------------------------------------------------------------
// Console sink
// ---------------------------------------------------------------------------

// ConsoleSink persists every entry of one run. Write failures are logged
// once; the run itself carries on.
func (s *Store) ConsoleSink(runID string) console.Sink {
	var once sync.Once
	return console.Func(func(e console.Entry) {
		if err := s.RecordConsole(runID, e); err != nil {
			once.Do(func() { log.Printf("store: recording console for run %s: %v", runID, err) })
		}
	})
}
