// Package store persists resolved dom-module features in sqlite so that
// other tools can query component definitions without re-scanning.
package store

import (
	"database/sql"
	"domscan/internal/core/errors"
	"domscan/internal/engine/model"
	"domscan/internal/engine/polymer"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run summarizes one scan pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Documents  int
	Features   int
	Failures   int
}

// ModuleRow is a persisted dom-module.
type ModuleRow struct {
	Path         string
	Position     int
	ModuleID     string
	HasID        bool
	Comment      string
	Range        model.SourceRange
	WarningCount int
	RunID        string
	Slots        []model.Slot
	LocalIDs     []model.LocalID
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("store path %q is a directory, expected file", cleanPath))
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.CodeStorage, fmt.Sprintf("create store directory %q", dir))
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, fmt.Sprintf("open sqlite store %q", cleanPath))
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CodeStorage, fmt.Sprintf("ping sqlite store %q", cleanPath))
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CodeStorage, fmt.Sprintf("initialize sqlite schema %q", cleanPath))
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return errors.New(errors.CodeValidationError, "run id must not be empty")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(`
INSERT INTO runs (run_id, started_at_utc, finished_at_utc, document_count, feature_count, failure_count)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  finished_at_utc=excluded.finished_at_utc,
  document_count=excluded.document_count,
  feature_count=excluded.feature_count,
  failure_count=excluded.failure_count
`,
			run.ID,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.FinishedAt.UTC().Format(time.RFC3339Nano),
			run.Documents,
			run.Features,
			run.Failures,
		)
		return err
	})
}

func (s *Store) LoadRun(runID string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		run               Run
		started, finished string
	)
	err := s.db.QueryRow(`
SELECT run_id, started_at_utc, finished_at_utc, document_count, feature_count, failure_count
FROM runs WHERE run_id = ?`, runID).Scan(&run.ID, &started, &finished, &run.Documents, &run.Features, &run.Failures)
	if err == sql.ErrNoRows {
		return Run{}, errors.New(errors.CodeNotFound, fmt.Sprintf("run %q not found", runID))
	}
	if err != nil {
		return Run{}, errors.Wrap(err, errors.CodeStorage, "load run")
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
	return run, nil
}

// ReplaceDocument swaps every persisted module of path for modules.
func (s *Store) ReplaceDocument(runID, path string, modules []*polymer.DomModule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("replace document", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM dom_modules WHERE path = ?`, path); err != nil {
			_ = tx.Rollback()
			return err
		}
		for position, m := range modules {
			if err := insertModule(tx, runID, path, position, m); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

func insertModule(tx *sql.Tx, runID, path string, position int, m *polymer.DomModule) error {
	var moduleID, comment sql.NullString
	if id, ok := m.ID(); ok {
		moduleID = sql.NullString{String: id, Valid: true}
	}
	if text, ok := m.Comment(); ok {
		comment = sql.NullString{String: text, Valid: true}
	}
	r := m.Range()

	res, err := tx.Exec(`
INSERT INTO dom_modules (path, position, module_id, comment, start_line, start_col, end_line, end_col, warning_count, run_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, position, moduleID, comment,
		r.Start.Line, r.Start.Column, r.End.Line, r.End.Column,
		len(m.Warnings()), runID,
	)
	if err != nil {
		return err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, slot := range m.Slots() {
		r := slot.SourceRange
		if _, err := tx.Exec(`INSERT INTO slots (module_row, position, name, start_line, start_col, end_line, end_col) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rowID, i, slot.Name, r.Start.Line, r.Start.Column, r.End.Line, r.End.Column); err != nil {
			return err
		}
	}
	for i, local := range m.LocalIDs() {
		r := local.SourceRange
		if _, err := tx.Exec(`INSERT INTO local_ids (module_row, position, local_id, start_line, start_col, end_line, end_col) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rowID, i, local.ID, r.Start.Line, r.Start.Column, r.End.Line, r.End.Column); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteDocument(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("delete document", func() error {
		_, err := s.db.Exec(`DELETE FROM dom_modules WHERE path = ?`, path)
		return err
	})
}

// LookupModule returns every persisted module declaring id, ordered by path.
func (s *Store) LookupModule(id string) ([]ModuleRow, error) {
	return s.queryModules(`WHERE module_id = ? ORDER BY path, position`, id)
}

// ModulesForPath returns the persisted modules of one document in document order.
func (s *Store) ModulesForPath(path string) ([]ModuleRow, error) {
	return s.queryModules(`WHERE path = ? ORDER BY position`, path)
}

func (s *Store) queryModules(where string, arg any) ([]ModuleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
SELECT row_id, path, position, module_id, comment, start_line, start_col, end_line, end_col, warning_count, run_id
FROM dom_modules `+where, arg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "query modules")
	}

	var (
		out    []ModuleRow
		rowIDs []int64
	)
	for rows.Next() {
		var (
			rowID           int64
			row             ModuleRow
			moduleID, notes sql.NullString
		)
		if err := rows.Scan(&rowID, &row.Path, &row.Position, &moduleID, &notes,
			&row.Range.Start.Line, &row.Range.Start.Column, &row.Range.End.Line, &row.Range.End.Column,
			&row.WarningCount, &row.RunID); err != nil {
			_ = rows.Close()
			return nil, errors.Wrap(err, errors.CodeStorage, "scan module row")
		}
		row.Range.File = row.Path
		row.ModuleID, row.HasID = moduleID.String, moduleID.Valid
		row.Comment = notes.String
		out = append(out, row)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, errors.Wrap(err, errors.CodeStorage, "iterate module rows")
	}
	_ = rows.Close()

	for i, rowID := range rowIDs {
		slots, err := s.loadSlots(rowID, out[i].Path)
		if err != nil {
			return nil, err
		}
		localIDs, err := s.loadLocalIDs(rowID, out[i].Path)
		if err != nil {
			return nil, err
		}
		out[i].Slots = slots
		out[i].LocalIDs = localIDs
	}
	return out, nil
}

func (s *Store) loadSlots(rowID int64, path string) ([]model.Slot, error) {
	rows, err := s.db.Query(`SELECT name, start_line, start_col, end_line, end_col FROM slots WHERE module_row = ? ORDER BY position`, rowID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "query slots")
	}
	defer rows.Close()

	slots := []model.Slot{}
	for rows.Next() {
		var slot model.Slot
		if err := rows.Scan(&slot.Name,
			&slot.SourceRange.Start.Line, &slot.SourceRange.Start.Column,
			&slot.SourceRange.End.Line, &slot.SourceRange.End.Column); err != nil {
			return nil, errors.Wrap(err, errors.CodeStorage, "scan slot row")
		}
		slot.SourceRange.File = path
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *Store) loadLocalIDs(rowID int64, path string) ([]model.LocalID, error) {
	rows, err := s.db.Query(`SELECT local_id, start_line, start_col, end_line, end_col FROM local_ids WHERE module_row = ? ORDER BY position`, rowID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "query local ids")
	}
	defer rows.Close()

	ids := []model.LocalID{}
	for rows.Next() {
		var local model.LocalID
		if err := rows.Scan(&local.ID,
			&local.SourceRange.Start.Line, &local.SourceRange.Start.Column,
			&local.SourceRange.End.Line, &local.SourceRange.End.Column); err != nil {
			return nil, errors.Wrap(err, errors.CodeStorage, "scan local id row")
		}
		local.SourceRange.File = path
		ids = append(ids, local)
	}
	return ids, rows.Err()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return errors.Wrap(lastErr, errors.CodeStorage, op)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
