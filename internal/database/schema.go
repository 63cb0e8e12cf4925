package database

import "fmt"

var schema = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS pptx_runs (
			id          TEXT PRIMARY KEY,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			severity    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS pptx_files (
			id       SERIAL PRIMARY KEY,
			run_id   TEXT NOT NULL REFERENCES pptx_runs(id) ON DELETE CASCADE,
			source   TEXT NOT NULL,
			path     TEXT NOT NULL DEFAULT '',
			severity INTEGER NOT NULL DEFAULT 0,
			problems TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS pptx_records (
			id         SERIAL PRIMARY KEY,
			run_id     TEXT NOT NULL REFERENCES pptx_runs(id) ON DELETE CASCADE,
			source     TEXT NOT NULL,
			entry      TEXT NOT NULL DEFAULT '',
			kind       TEXT NOT NULL,
			target     TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT '',
			resolved   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS pptx_runs (
			id          TEXT PRIMARY KEY,
			started_at  TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			severity    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS pptx_files (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES pptx_runs(id) ON DELETE CASCADE,
			source   TEXT NOT NULL,
			path     TEXT NOT NULL DEFAULT '',
			severity INTEGER NOT NULL DEFAULT 0,
			problems TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS pptx_records (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES pptx_runs(id) ON DELETE CASCADE,
			source     TEXT NOT NULL,
			entry      TEXT NOT NULL DEFAULT '',
			kind       TEXT NOT NULL,
			target     TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT '',
			resolved   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// InitSchema creates the manifest tables if they do not exist.
func (s *Store) InitSchema() error {
	stmts, ok := schema[s.Driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.Driver)
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}
