package store

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 2

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  started_at_utc TEXT NOT NULL,
  finished_at_utc TEXT NOT NULL,
  document_count INTEGER NOT NULL,
  feature_count INTEGER NOT NULL,
  failure_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS dom_modules (
  row_id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT NOT NULL,
  position INTEGER NOT NULL,
  module_id TEXT,
  comment TEXT,
  start_line INTEGER NOT NULL,
  start_col INTEGER NOT NULL,
  end_line INTEGER NOT NULL,
  end_col INTEGER NOT NULL,
  warning_count INTEGER NOT NULL DEFAULT 0,
  run_id TEXT NOT NULL,
  UNIQUE (path, position)
);
CREATE INDEX IF NOT EXISTS idx_dom_modules_module_id ON dom_modules(module_id);
CREATE TABLE IF NOT EXISTS slots (
  module_row INTEGER NOT NULL REFERENCES dom_modules(row_id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  start_line INTEGER NOT NULL,
  start_col INTEGER NOT NULL,
  PRIMARY KEY (module_row, position)
);
CREATE TABLE IF NOT EXISTS local_ids (
  module_row INTEGER NOT NULL REFERENCES dom_modules(row_id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  local_id TEXT NOT NULL,
  start_line INTEGER NOT NULL,
  start_col INTEGER NOT NULL,
  PRIMARY KEY (module_row, position)
);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE slots ADD COLUMN end_line INTEGER NOT NULL DEFAULT 0;
ALTER TABLE slots ADD COLUMN end_col INTEGER NOT NULL DEFAULT 0;
ALTER TABLE local_ids ADD COLUMN end_line INTEGER NOT NULL DEFAULT 0;
ALTER TABLE local_ids ADD COLUMN end_col INTEGER NOT NULL DEFAULT 0;
`,
	},
}

// EnsureSchema applies any migrations newer than the database's recorded version.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
