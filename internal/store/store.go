// Package store persists saved systems and settings in a local SQLite
// database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database connection.
type Store struct {
	sql *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the database under dir and runs migrations.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "pirate-scout.db")
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &Store{sql: sqlDB, log: log}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	log.Debug().Str("path", path).Msg("database opened")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) migrate() error {
	version := 0
	s.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS saved_systems (
				name     TEXT PRIMARY KEY,
				record   TEXT NOT NULL,
				result   TEXT NOT NULL,
				score    REAL NOT NULL,
				saved_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_saved_systems_at ON saved_systems(saved_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		s.log.Debug().Msg("applied migration v1")
	}

	return nil
}
