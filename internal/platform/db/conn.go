package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type contextKey string

// DBConnKey carries an explicit per-request connection or transaction.
// Repositories fall back to the shared pool when it is absent.
const DBConnKey contextKey = "db_conn"

// Conn is the subset of pgx operations repositories need. Both *pgxpool.Pool
// and pgx.Tx satisfy it.
type Conn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// WithConn returns a context carrying a request-scoped connection.
func WithConn(ctx context.Context, conn Conn) context.Context {
	return context.WithValue(ctx, DBConnKey, conn)
}

// ConnFromContext returns the request-scoped connection, or nil if none is set.
func ConnFromContext(ctx context.Context) Conn {
	c, _ := ctx.Value(DBConnKey).(Conn)
	return c
}
