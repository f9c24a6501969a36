package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the local database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// The single-slot receipt table holds the most recent invoice only;
	// the slot check pins every write to the same row.
	schema := `
	CREATE TABLE IF NOT EXISTS receipt (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		invoice_id INTEGER NOT NULL,
		numero_factura TEXT NOT NULL,
		total REAL NOT NULL,
		payload TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
