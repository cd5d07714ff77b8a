package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// driver is the subset of *pgxpool.Pool the gateway forwards to.
type driver interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Acquire(ctx context.Context) (releaser, error)
	Ping(ctx context.Context) error
	Stat() *pgxpool.Stat
	Close()
}

// pgxDriver adapts *pgxpool.Pool to driver.
type pgxDriver struct {
	*pgxpool.Pool
}

var _ driver = pgxDriver{}

// Acquire checks out one connection, blocking while the pool is saturated
// until ctx is done.
func (d pgxDriver) Acquire(ctx context.Context) (releaser, error) {
	conn, err := d.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &poolClient{conn: conn}, nil
}

// Pool is the concrete implementation of DB backed by pgxpool.
// It wraps rather than embeds *pgxpool.Pool.
type Pool struct {
	pool driver
}

var _ DB = (*Pool)(nil)

func newPool(d driver) *Pool {
	return &Pool{pool: d}
}

// Stat returns a snapshot of pool statistics.
func (p *Pool) Stat() *pgxpool.Stat {
	return p.pool.Stat()
}

func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// WithClient acquires a dedicated connection, blocking while the pool is
// saturated until ctx is done, and releases it on every exit path.
func (p *Pool) WithClient(ctx context.Context, fn func(Client) error) error {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	return runClient(c, fn)
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() {
	p.pool.Close()
}
