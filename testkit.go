package pgdb

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotMocked is returned when a TestDB method is called without a
// corresponding Func field set.
var ErrNotMocked = errors.New("pgdb.TestDB: method not mocked (set the corresponding Func field)")

// TestDB is a mock DB implementation for unit tests.
type TestDB struct {
	ExecFunc       func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc      func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc   func(ctx context.Context, sql string, args ...any) pgx.Row
	WithClientFunc func(ctx context.Context, fn func(Client) error) error
	PingFunc       func(ctx context.Context) error
	CloseFunc      func()
}

var _ DB = (*TestDB)(nil)

func (t *TestDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, ErrNotMocked
}

func (t *TestDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return &ErrRows{ErrValue: ErrNotMocked}, ErrNotMocked
}

func (t *TestDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if t.QueryRowFunc != nil {
		return t.QueryRowFunc(ctx, sql, args...)
	}
	return &ErrRow{Err: ErrNotMocked}
}

// WithClient runs WithClientFunc when set. Otherwise it returns
// ErrNotMocked without calling fn.
func (t *TestDB) WithClient(ctx context.Context, fn func(Client) error) error {
	if t.WithClientFunc != nil {
		return t.WithClientFunc(ctx, fn)
	}
	return ErrNotMocked
}

func (t *TestDB) Ping(ctx context.Context) error {
	if t.PingFunc != nil {
		return t.PingFunc(ctx)
	}
	return nil
}

func (t *TestDB) Close() {
	if t.CloseFunc != nil {
		t.CloseFunc()
	}
}

// ClientFunc returns a WithClientFunc that hands c to fn, so TestDB can
// drive code that checks out a dedicated connection.
func ClientFunc(c *TestClient) func(ctx context.Context, fn func(Client) error) error {
	return func(_ context.Context, fn func(Client) error) error {
		return runClient(c, fn)
	}
}

// TestClient is a mock Client. Released reports how many times the
// connection was handed back.
type TestClient struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginFunc    func(ctx context.Context) (pgx.Tx, error)
	BeginTxFunc  func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	PingFunc     func(ctx context.Context) error

	Released int
}

var _ Client = (*TestClient)(nil)

func (c *TestClient) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if c.ExecFunc != nil {
		return c.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, ErrNotMocked
}

func (c *TestClient) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if c.QueryFunc != nil {
		return c.QueryFunc(ctx, sql, args...)
	}
	return &ErrRows{ErrValue: ErrNotMocked}, ErrNotMocked
}

func (c *TestClient) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if c.QueryRowFunc != nil {
		return c.QueryRowFunc(ctx, sql, args...)
	}
	return &ErrRow{Err: ErrNotMocked}
}

func (c *TestClient) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.BeginFunc != nil {
		return c.BeginFunc(ctx)
	}
	return nil, ErrNotMocked
}

func (c *TestClient) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if c.BeginTxFunc != nil {
		return c.BeginTxFunc(ctx, txOptions)
	}
	return nil, ErrNotMocked
}

func (c *TestClient) Ping(ctx context.Context) error {
	if c.PingFunc != nil {
		return c.PingFunc(ctx)
	}
	return nil
}

func (c *TestClient) Release() {
	c.Released++
}

// ErrRow is a pgx.Row whose Scan always fails with Err.
type ErrRow struct {
	Err error
}

func (r *ErrRow) Scan(...any) error {
	return r.Err
}

// NewRow returns a pgx.Row that scans values, in order, into its
// destinations.
func NewRow(values ...any) pgx.Row {
	return &memRow{values: values}
}

type memRow struct {
	values []any
}

func (r *memRow) Scan(dest ...any) error {
	return scanInto("pgdb.NewRow", r.values, dest)
}

// ErrRows is a pgx.Rows with no rows whose Err, Scan and Values report
// ErrValue.
type ErrRows struct {
	ErrValue error
}

func (r *ErrRows) Close()                                       {}
func (r *ErrRows) Err() error                                   { return r.ErrValue }
func (r *ErrRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *ErrRows) Conn() *pgx.Conn                              { return nil }
func (r *ErrRows) RawValues() [][]byte                          { return nil }
func (r *ErrRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *ErrRows) Next() bool                                   { return false }
func (r *ErrRows) Values() ([]any, error)                       { return nil, r.ErrValue }

func (r *ErrRows) Scan(...any) error {
	if r.ErrValue == nil {
		return errors.New("pgdb.ErrRows: Scan with nil ErrValue")
	}
	return r.ErrValue
}

// RowsBuilder assembles an in-memory result set.
type RowsBuilder struct {
	columns []string
	rows    [][]any
}

// NewRows starts a result set with the given column names.
func NewRows(columns []string) *RowsBuilder {
	return &RowsBuilder{columns: columns}
}

// AddRow appends one row. It panics when len(values) differs from the
// column count.
func (b *RowsBuilder) AddRow(values ...any) *RowsBuilder {
	if len(values) != len(b.columns) {
		panic(fmt.Sprintf("pgdb.RowsBuilder: row has %d values, want %d", len(values), len(b.columns)))
	}
	b.rows = append(b.rows, values)
	return b
}

// Build returns a cursor positioned before the first row.
func (b *RowsBuilder) Build() pgx.Rows {
	return &memRows{columns: b.columns, rows: b.rows, pos: -1}
}

type memRows struct {
	columns []string
	rows    [][]any
	pos     int
	done    bool
	err     error
}

func (r *memRows) Close()                        { r.done = true }
func (r *memRows) Err() error                    { return r.err }
func (r *memRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.rows))) }
func (r *memRows) Conn() *pgx.Conn               { return nil }
func (r *memRows) RawValues() [][]byte           { return nil }

func (r *memRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, name := range r.columns {
		fds[i].Name = name
	}
	return fds
}

func (r *memRows) Next() bool {
	if r.done || r.err != nil {
		return false
	}
	r.pos++
	if r.pos >= len(r.rows) {
		r.done = true
		return false
	}
	return true
}

func (r *memRows) current() ([]any, bool) {
	if r.done || r.pos < 0 || r.pos >= len(r.rows) {
		return nil, false
	}
	return r.rows[r.pos], true
}

func (r *memRows) Scan(dest ...any) error {
	row, ok := r.current()
	if !ok {
		return pgx.ErrNoRows
	}
	if err := scanInto("pgdb.RowsBuilder", row, dest); err != nil {
		r.err = err
		return err
	}
	return nil
}

func (r *memRows) Values() ([]any, error) {
	row, ok := r.current()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return row, nil
}

// scanInto copies values into dest pointers. A value must be assignable to
// the pointed-to type; nil zeroes the destination.
func scanInto(prefix string, values, dest []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("%s: %d scan targets for %d columns", prefix, len(dest), len(values))
	}
	for i, val := range values {
		ptr := reflect.ValueOf(dest[i])
		if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
			return fmt.Errorf("%s: column %d: scan target %T is not a non-nil pointer", prefix, i, dest[i])
		}
		target := ptr.Elem()
		if val == nil {
			target.SetZero()
			continue
		}
		v := reflect.ValueOf(val)
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("%s: column %d: cannot scan %T into %s", prefix, i, val, target.Type())
		}
		target.Set(v)
	}
	return nil
}
