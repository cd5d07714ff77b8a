package tours

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultLimit is the page size used when a Filter leaves Limit unset.
	DefaultLimit = 24
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// Tour is one bookable tour.
type Tour struct {
	ID           int64           `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Destination  string          `json:"destination"`
	Summary      string          `json:"summary"`
	DurationDays int             `json:"durationDays"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
}

// PriceLabel formats the price for display, e.g. "USD 2490.00".
func (t Tour) PriceLabel() string {
	return strings.TrimSpace(t.Currency) + " " + t.Price.StringFixed(2)
}

// Filter selects a page of tours. An empty Query matches every tour.
type Filter struct {
	Query  string
	Limit  int
	Offset int
}

func (f Filter) normalized() Filter {
	f.Query = strings.TrimSpace(f.Query)
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// pattern is the ILIKE argument for f.Query; empty means no filtering.
func (f Filter) pattern() string {
	if f.Query == "" {
		return ""
	}
	return "%" + escapeLike(f.Query) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Listing is one page of search results.
type Listing struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Total  int64  `json:"total"`
	Tours  []Tour `json:"tours"`
}
