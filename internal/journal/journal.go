// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fixdates/internal/platform"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Journal persists every mtime rewrite so a run can be undone.
type Journal struct {
	db   *sql.DB
	path string

	stat    func(string) (os.FileInfo, error)
	chtimes func(string, time.Time, time.Time) error
}

// Run is one fix-mode invocation.
type Run struct {
	ID        string
	StartedAt time.Time
	Roots     []string
	DryRun    bool
	Entries   int
	UndoneAt  *time.Time
}

// Entry is one recorded rewrite.
type Entry struct {
	ID         int64
	RunID      string
	Path       string
	OldUnix    int64
	NewUnix    int64
	RecordedAt time.Time
}

// UndoResult reports what happened to one entry during Undo.
type UndoResult struct {
	Entry
	Restored bool
	// Skipped is set when the file's mtime no longer matches NewUnix.
	Skipped bool
	Err     error
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, platform.WrapFileError(err, dir, "create journal directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, path: path, stat: os.Stat, chtimes: os.Chtimes}
	if err := j.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// initTables creates necessary tables for the journal
func (j *Journal) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			roots TEXT NOT NULL DEFAULT '',
			dry_run BOOLEAN NOT NULL DEFAULT FALSE,
			undone_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			path TEXT NOT NULL,
			old_mtime INTEGER NOT NULL,
			new_mtime INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_run_id ON entries(run_id)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create journal tables: %w", err)
		}
	}
	return nil
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun registers a run before any entry is recorded for it.
func (j *Journal) BeginRun(runID string, roots []string, dryRun bool) error {
	_, err := j.db.Exec(`INSERT INTO runs (id, started_at, roots, dry_run) VALUES (?, ?, ?, ?)`,
		runID, time.Now().Unix(), strings.Join(roots, "\n"), dryRun)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", runID, err)
	}
	return nil
}

// Record stores one rewrite for runID.
func (j *Journal) Record(runID, path string, oldUnix, newUnix int64) error {
	_, err := j.db.Exec(`INSERT INTO entries (run_id, path, old_mtime, new_mtime, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		runID, path, oldUnix, newUnix, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record %s: %w", path, err)
	}
	return nil
}

// RunRecorder binds the journal to one run.
type RunRecorder struct {
	journal *Journal
	runID   string
}

// Recorder returns a recorder that files entries under runID.
func (j *Journal) Recorder(runID string) *RunRecorder {
	return &RunRecorder{journal: j, runID: runID}
}

// Record implements the reconciler's recorder hook.
func (r *RunRecorder) Record(path string, oldUnix, newUnix int64) error {
	return r.journal.Record(r.runID, path, oldUnix, newUnix)
}

// Runs lists recorded runs, newest first.
func (j *Journal) Runs() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT r.id, r.started_at, r.roots, r.dry_run, r.undone_at, COUNT(e.id)
		FROM runs r LEFT JOIN entries e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  int64
			roots    string
			undoneAt sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &started, &roots, &run.DryRun, &undoneAt, &run.Entries); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		if roots != "" {
			run.Roots = strings.Split(roots, "\n")
		}
		if undoneAt.Valid {
			t := time.Unix(undoneAt.Int64, 0)
			run.UndoneAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries returns the entries of runID in recording order.
func (j *Journal) Entries(runID string) ([]Entry, error) {
	var exists int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("look up run %s: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := j.db.Query(`SELECT id, run_id, path, old_mtime, new_mtime, recorded_at
		FROM entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			recorded int64
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Path, &e.OldUnix, &e.NewUnix, &recorded); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.RecordedAt = time.Unix(recorded, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Undo restores the recorded old mtimes of runID, newest entry first. An
// entry whose file has been modified since is skipped unless force is set.
// Access time is set to the same value as the restored mtime.
func (j *Journal) Undo(runID string, force bool) ([]UndoResult, error) {
	entries, err := j.Entries(runID)
	if err != nil {
		return nil, err
	}

	results := make([]UndoResult, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		res := UndoResult{Entry: e}

		info, err := j.stat(e.Path)
		if err != nil {
			res.Err = platform.WrapFileError(err, e.Path, "stat")
			results = append(results, res)
			continue
		}
		if info.ModTime().Unix() != e.NewUnix && !force {
			res.Skipped = true
			results = append(results, res)
			continue
		}

		old := time.Unix(e.OldUnix, 0)
		if err := j.chtimes(e.Path, old, old); err != nil {
			res.Err = platform.WrapFileError(err, e.Path, "set times on")
		} else {
			res.Restored = true
		}
		results = append(results, res)
	}

	if _, err := j.db.Exec(`UPDATE runs SET undone_at = ? WHERE id = ?`, time.Now().Unix(), runID); err != nil {
		return results, fmt.Errorf("mark run %s undone: %w", runID, err)
	}
	return results, nil
}
