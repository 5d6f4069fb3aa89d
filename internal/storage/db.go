// Package storage is the persistence gateway: sqlite-backed analysis
// history plus user feedback. This is the one layer whose failures are
// allowed to surface to callers.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitDB opens (creating if needed) the history database under dataDir.
func InitDB(dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return OpenDB(filepath.Join(dataDir, "history.db"))
}

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS logs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at  TEXT NOT NULL,
		summary     TEXT NOT NULL,
		analysis    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		log_id          INTEGER NOT NULL,
		feedback_choice TEXT NOT NULL,
		feedback_text   TEXT,
		created_at      TEXT NOT NULL,
		FOREIGN KEY (log_id) REFERENCES logs(id)
	);
	`

	_, err := db.Exec(schema)
	return err
}
