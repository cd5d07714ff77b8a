package tours

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/wanderwise/pgdb"
)

const searchSQL = `SELECT id, slug, name, destination, summary, duration_days, price::text, currency
FROM tours
WHERE $1 = '' OR name ILIKE $1 OR destination ILIKE $1
ORDER BY lower(name), id
LIMIT $2 OFFSET $3`

const countSQL = `SELECT count(*)
FROM tours
WHERE $1 = '' OR name ILIKE $1 OR destination ILIKE $1`

// Store reads tours through the query gateway.
type Store struct {
	db pgdb.DB
}

// NewStore returns a Store backed by db.
func NewStore(db pgdb.DB) *Store {
	return &Store{db: db}
}

// Search returns one page of tours whose name or destination contains
// f.Query, case-insensitively.
func (s *Store) Search(ctx context.Context, f Filter) ([]Tour, error) {
	f = f.normalized()

	rows, err := s.db.Query(ctx, searchSQL, f.pattern(), f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("tours: search: %w", err)
	}
	defer rows.Close()

	var out []Tour
	for rows.Next() {
		var t Tour
		var price string
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.Destination, &t.Summary, &t.DurationDays, &price, &t.Currency); err != nil {
			return nil, fmt.Errorf("tours: scan: %w", err)
		}
		t.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("tours: parse price of %q: %w", t.Slug, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tours: search: %w", err)
	}

	return out, nil
}

// Count returns how many tours match f.Query, ignoring paging.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, countSQL, f.normalized().pattern()).Scan(&n); err != nil {
		return 0, fmt.Errorf("tours: count: %w", err)
	}
	return n, nil
}

// List runs Search and Count concurrently and combines them.
func (s *Store) List(ctx context.Context, f Filter) (*Listing, error) {
	f = f.normalized()

	var (
		found []Tour
		total int64
	)
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		found, err = s.Search(ctx, f)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		total, err = s.Count(ctx, f)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	if found == nil {
		found = []Tour{}
	}
	return &Listing{
		Query:  f.Query,
		Limit:  f.Limit,
		Offset: f.Offset,
		Total:  total,
		Tours:  found,
	}, nil
}
