// Package sqlite implements repository.DocumentRepository on SQLite.
//
// Documents live in one table keyed by name; every write also inserts a row
// into document_backups inside the same transaction, so a save and its
// backup either both land or neither does. modernc.org/sqlite is a pure Go
// driver, so the binary still cross-compiles without a C toolchain.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB connection pool.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time. A single connection turns
	// concurrent writers into a queue instead of SQLITE_BUSY errors, and
	// keeps ":memory:" databases from splitting across connections.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate is idempotent: every statement uses IF NOT EXISTS.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			name       TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS document_backups (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			body       BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_document_backups_name_created
			ON document_backups(name, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating document_backups table: %w", err)
	}
	return nil
}
