package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// releaser is a Client that can be handed back to its pool.
type releaser interface {
	Client
	Release()
}

type poolClient struct {
	conn *pgxpool.Conn
}

func (c *poolClient) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *poolClient) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *poolClient) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c *poolClient) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

func (c *poolClient) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return c.conn.BeginTx(ctx, txOptions)
}

func (c *poolClient) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *poolClient) Release() {
	c.conn.Release()
}

// runClient hands c to fn and releases it exactly once, including when fn
// panics. fn's error is returned as is.
func runClient(c releaser, fn func(Client) error) error {
	defer c.Release()
	return fn(c)
}
