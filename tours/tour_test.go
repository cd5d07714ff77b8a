package tours

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFilterNormalized(t *testing.T) {
	cases := []struct {
		name string
		in   Filter
		want Filter
	}{
		{name: "defaults", in: Filter{}, want: Filter{Limit: DefaultLimit}},
		{name: "trims-query", in: Filter{Query: "  alps \t"}, want: Filter{Query: "alps", Limit: DefaultLimit}},
		{name: "caps-limit", in: Filter{Limit: 1000}, want: Filter{Limit: MaxLimit}},
		{name: "negative-offset", in: Filter{Limit: 5, Offset: -3}, want: Filter{Limit: 5}},
		{name: "keeps-valid", in: Filter{Query: "japan", Limit: 10, Offset: 20}, want: Filter{Query: "japan", Limit: 10, Offset: 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.normalized())
		})
	}
}

func TestFilterPatternEscapesWildcards(t *testing.T) {
	require.Equal(t, "", Filter{}.pattern())
	require.Equal(t, "%kyoto%", Filter{Query: "kyoto"}.pattern())
	require.Equal(t, `%100\% fun\_trip%`, Filter{Query: "100% fun_trip"}.pattern())
	require.Equal(t, `%back\\slash%`, Filter{Query: `back\slash`}.pattern())
}

func TestTourPriceLabel(t *testing.T) {
	tour := Tour{Price: decimal.RequireFromString("3975.5"), Currency: "USD"}
	require.Equal(t, "USD 3975.50", tour.PriceLabel())
}
