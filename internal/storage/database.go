// Package storage handles data persistence: SQLite for ebook records and
// usage tracking, the filesystem for artifacts and previews.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 database/sql driver
)

// Schema is embedded in the binary — no migration files at runtime.
// Costs are stored as TEXT: decimal values round-trip exactly as strings,
// which REAL columns cannot guarantee.
const schema = `
CREATE TABLE IF NOT EXISTS ebooks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id  TEXT NOT NULL UNIQUE,
    title       TEXT NOT NULL,
    theme       TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT 'coloring',
    audience    TEXT NOT NULL DEFAULT 'children',
    page_count  INTEGER NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'draft',
    storage_ref TEXT NOT NULL DEFAULT '',
    preview_ref TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS token_usage (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id        TEXT NOT NULL,
    model             TEXT NOT NULL,
    prompt_tokens     INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    cost              TEXT NOT NULL DEFAULT '0',
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS image_usage (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id    TEXT NOT NULL,
    model         TEXT NOT NULL,
    input_images  INTEGER NOT NULL DEFAULT 0,
    output_images INTEGER NOT NULL DEFAULT 0,
    cost          TEXT NOT NULL DEFAULT '0',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ebooks_request_id ON ebooks(request_id);
CREATE INDEX IF NOT EXISTS idx_ebooks_status ON ebooks(status);
CREATE INDEX IF NOT EXISTS idx_token_usage_request_id ON token_usage(request_id);
CREATE INDEX IF NOT EXISTS idx_image_usage_request_id ON image_usage(request_id);
`

// NewDatabase opens the SQLite database, applies pragmas, and runs the
// embedded schema.
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	// WAL allows concurrent reads during writes; busy_timeout waits out
	// lock contention instead of failing immediately.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql).
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
