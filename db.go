package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the contract for database access in WanderWise.
//
// Every call submits its SQL and arguments to the shared pool unchanged and
// hands back whatever the driver produced, errors included. Retrying,
// classifying and rendering failures is the caller's job.
//
// Depend on DB rather than *Pool so handlers and stores can be exercised
// with TestDB.
type DB interface {
	// Exec executes a query that does not return rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a query that returns rows, typically a SELECT.
	// The caller must close the returned Rows when done (use defer rows.Close()).
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes a query expected to return at most one row.
	// If no rows match, row.Scan() returns pgx.ErrNoRows.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// WithClient checks out one dedicated connection for fn, e.g. for a
	// multi-statement transaction, and returns it to the pool when fn
	// returns or panics. The Client must not be retained after fn returns.
	WithClient(ctx context.Context, fn func(Client) error) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases all pool resources.
	Close()
}

// Client is an exclusive lease on one pooled connection.
type Client interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// Begin starts a transaction on this connection.
	// The caller must call tx.Commit() or tx.Rollback() before fn returns.
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)

	Ping(ctx context.Context) error
}
