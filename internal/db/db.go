// Package db wraps the SQL connection used by the sqlite store driver.
package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"
)

type DB interface {
	InitDB() error

	Get() *sql.DB
	Close() error

	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}
