package storage

import (
	"database/sql"
	"fmt"
)

// currentSchemaVersion is bumped with every entry appended to migrations.
const currentSchemaVersion = 2

// migrations[i] upgrades schema version i to i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		algorithm TEXT NOT NULL,
		operation TEXT NOT NULL,
		input_sha256 TEXT NOT NULL,
		input_len INTEGER NOT NULL,
		output_len INTEGER NOT NULL,
		error_code TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_history_algorithm ON history(algorithm);`,

	`ALTER TABLE history ADD COLUMN source TEXT NOT NULL DEFAULT 'cli';
	CREATE INDEX IF NOT EXISTS idx_history_source ON history(source);`,
}

func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	version, err := db.schemaVersion()
	if err != nil {
		return err
	}

	for v := version; v < currentSchemaVersion; v++ {
		stmt := migrations[v]
		next := v + 1
		err := db.WithTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("migration %d: %w", next, err)
			}
			if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, next)
			return err
		})
		if err != nil {
			return err
		}
		db.logger.Debug("Applied history migration", "version", next)
	}

	return nil
}

func (db *DB) schemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
