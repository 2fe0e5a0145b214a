package storage

import (
	"context"
	"database/sql"
)

// queryable is satisfied by both *sql.DB and *sql.Tx so entity queries can
// run standalone or inside an explicit transaction.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
