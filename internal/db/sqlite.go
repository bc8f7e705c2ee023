package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// The seq column keeps insertion order; AUTOINCREMENT never hands out a
// sequence number twice, even after the newest post is deleted.
const schema = `
CREATE TABLE IF NOT EXISTS posts (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    body TEXT NOT NULL DEFAULT ''
);`

type SQLite struct {
	path string
	conn *sql.DB
}

func NewSQLite(path string) *SQLite {
	return &SQLite{
		path: path,
	}
}

func (s *SQLite) InitDB() error {
	conn, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", s.path, err)
	}

	// A single connection keeps :memory: databases alive and serializes writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return fmt.Errorf("error creating schema: %w", err)
	}

	s.conn = conn
	dbLogger.Info().Str("path", s.path).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLite) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *SQLite) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRowContext(ctx, query, args...)
}

func (s *SQLite) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.ExecContext(ctx, query, args...)
}
