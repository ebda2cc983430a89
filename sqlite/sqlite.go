// Package sqlite stores crawled questions in SQLite so they can be
// re-exported without crawling again.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB is a SQLite database holding crawl runs and their questions.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB for the file at path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects to the database, applies connection pragmas and creates
// the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; a crawl saves through a single transaction.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database %s: %w", db.path, err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	// WAL is not available for in-memory databases.
	if db.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			search_url TEXT NOT NULL,
			started_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			search_url TEXT NOT NULL,
			position INTEGER NOT NULL,
			content_hash TEXT NOT NULL,
			year TEXT NOT NULL DEFAULT '',
			board TEXT NOT NULL DEFAULT '',
			enunciation TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			choice_a TEXT NOT NULL DEFAULT '',
			choice_b TEXT NOT NULL DEFAULT '',
			choice_c TEXT NOT NULL DEFAULT '',
			choice_d TEXT NOT NULL DEFAULT '',
			choice_e TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			UNIQUE (search_url, content_hash)
		);

		CREATE INDEX IF NOT EXISTS idx_questions_run_id ON questions(run_id);
		CREATE INDEX IF NOT EXISTS idx_questions_search_url ON questions(search_url);
	`

	_, err := db.db.Exec(schema)
	return err
}
