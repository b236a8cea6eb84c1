// Package db persists simulation runs in SQLite: one row per run plus its
// colonization ledger and periodic empire snapshots.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"starlane/internal/logger"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d, err := setup(sqlDB)
	if err != nil {
		return nil, err
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// OpenMemory opens a private in-memory database. Every connection to
// ":memory:" is a separate database, so the pool is pinned to one.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return setup(sqlDB)
}

func setup(sqlDB *sql.DB) (*DB, error) {
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Version returns the applied schema version.
func (d *DB) Version() int {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	return version
}

func (d *DB) migrate() error {
	version := d.Version()

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				started_at  TEXT NOT NULL,
				finished_at TEXT,
				seed        INTEGER NOT NULL,
				ticks       INTEGER NOT NULL DEFAULT 0,
				stars       INTEGER NOT NULL,
				lanes       INTEGER NOT NULL,
				empires     INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS colonization_events (
				id        INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id    INTEGER NOT NULL REFERENCES runs(id),
				tick      INTEGER NOT NULL,
				fleet_id  INTEGER NOT NULL,
				empire_id INTEGER NOT NULL,
				body_id   INTEGER NOT NULL,
				node_id   INTEGER NOT NULL,
				colonists INTEGER NOT NULL,
				outcome   TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_colonization_run ON colonization_events(run_id, tick);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Debug("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS empire_snapshots (
				run_id     INTEGER NOT NULL REFERENCES runs(id),
				tick       INTEGER NOT NULL,
				empire_id  INTEGER NOT NULL,
				name       TEXT NOT NULL,
				systems    INTEGER NOT NULL,
				colonies   INTEGER NOT NULL,
				population INTEGER NOT NULL,
				fleets     INTEGER NOT NULL,
				PRIMARY KEY (run_id, tick, empire_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Debug("DB", "Applied migration v2 (empire snapshots)")
	}

	if version < 3 {
		_, err := d.sql.Exec(`
			ALTER TABLE runs ADD COLUMN params_json TEXT DEFAULT '{}';

			INSERT OR IGNORE INTO schema_version (version) VALUES (3);
		`)
		if err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
		logger.Debug("DB", "Applied migration v3 (run params)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
