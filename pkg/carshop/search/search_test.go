package search

import (
	"context"
	"testing"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func catalog() []dal.Vehicle {
	return []dal.Vehicle{
		{
			ID: "1", Name: "Atlas SUV", Specification: "SUV familial diesel", Type: "suv",
			Price:   decimal.NewFromInt(35_000_000),
			Options: []dal.Option{{ID: "gps", Name: "GPS"}, {ID: "roof", Name: "Toit ouvrant"}},
		},
		{
			ID: "2", Name: "Volt Scooter", Specification: "Scooter electrique urbain", Type: "scooter",
			Price:   decimal.NewFromInt(2_000_000),
			Options: []dal.Option{{ID: "box", Name: "Top case"}},
		},
		{
			ID: "3", Name: "Nova", Specification: "SUV electrique premium", Type: "suv",
			Price:   decimal.NewFromInt(50_000_000),
			Options: []dal.Option{{ID: "gps", Name: "GPS"}},
		},
		{
			ID: "4", Name: "Cargo Van", Specification: "Utilitaire", Type: "van",
			Price: decimal.NewFromInt(28_000_000),
		},
		{
			ID: "5", Name: "Breeze", Specification: "Citadine", Type: "city",
			Price:   decimal.NewFromInt(2_000_000),
			Options: []dal.Option{{ID: "heat", Name: "Sieges chauffants electrique"}},
		},
	}
}

func ids(vehicles []dal.Vehicle) []string {
	out := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, v.ID)
	}
	return out
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Query
	}{
		{name: "single", input: "SUV", want: Query{Terms: []string{"suv"}, Operator: OperatorNone}},
		{name: "or", input: "suv ou scooter", want: Query{Terms: []string{"suv", "scooter"}, Operator: OperatorOr}},
		{name: "and", input: "SUV et Electrique", want: Query{Terms: []string{"suv", "electrique"}, Operator: OperatorAnd}},
		{name: "or wins over and", input: "suv et diesel ou van", want: Query{Terms: []string{"suv et diesel", "van"}, Operator: OperatorOr}},
		{name: "empty", input: "", want: Query{Terms: []string{""}, Operator: OperatorNone}},
		{name: "connective needs spaces", input: "route", want: Query{Terms: []string{"route"}, Operator: OperatorNone}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseQuery(tc.input))
		})
	}
}

func TestApplyTextQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty matches all", query: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "or is a union", query: "suv ou scooter", want: []string{"1", "2", "3"}},
		{name: "and across fields", query: "suv et electrique", want: []string{"3"}},
		{name: "option names are searchable", query: "gps", want: []string{"1", "3"}},
		{name: "price is searchable", query: "2000000", want: []string{"2", "5"}},
		{name: "and needs every term", query: "scooter et diesel", want: []string{}},
		{name: "case insensitive", query: "NOVA", want: []string{"3"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Apply(context.Background(), catalog(), Filter{Query: tc.query})
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestApplyFacets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "price range excludes vehicles above max",
			filter: Filter{Query: "suv", Category: "suv", MinPrice: price(0), MaxPrice: price(40_000_000), OptionIDs: []string{"gps"}},
			want:   []string{"1"},
		},
		{
			name:   "bounds are inclusive",
			filter: Filter{MinPrice: price(2_000_000), MaxPrice: price(28_000_000)},
			want:   []string{"2", "4", "5"},
		},
		{
			name:   "category is case insensitive",
			filter: Filter{Category: "SUV"},
			want:   []string{"1", "3"},
		},
		{
			name:   "all selected options required",
			filter: Filter{OptionIDs: []string{"gps", "roof"}},
			want:   []string{"1"},
		},
		{
			name:   "facets and text combine",
			filter: Filter{Query: "electrique", Category: "suv"},
			want:   []string{"3"},
		},
		{
			name:   "min only",
			filter: Filter{MinPrice: price(30_000_000)},
			want:   []string{"1", "3"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Apply(context.Background(), catalog(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestApplySort(t *testing.T) {
	t.Parallel()

	asc, err := Apply(context.Background(), catalog(), Filter{Sort: SortPriceAsc})
	require.NoError(t, err)
	// 2 and 5 share a price and keep fetch order
	assert.Equal(t, []string{"2", "5", "4", "1", "3"}, ids(asc))

	desc, err := Apply(context.Background(), catalog(), Filter{Sort: SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "4", "2", "5"}, ids(desc))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	vehicles := catalog()
	_, err := Apply(context.Background(), vehicles, Filter{Sort: SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(vehicles))
}

func TestApplyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Apply(ctx, catalog(), Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchStats(t *testing.T) {
	t.Parallel()

	res, err := Search(context.Background(), catalog(), Filter{Category: "suv"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.Lowest.Equal(decimal.NewFromInt(35_000_000)))
	assert.True(t, res.Median.Equal(decimal.NewFromInt(50_000_000)))
	assert.True(t, res.Highest.Equal(decimal.NewFromInt(50_000_000)))

	empty, err := Search(context.Background(), catalog(), Filter{Query: "tractor"})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.True(t, empty.Highest.IsZero())
	assert.Empty(t, empty.Vehicles)
}

func TestSortOrderValid(t *testing.T) {
	t.Parallel()

	assert.True(t, SortNone.Valid())
	assert.True(t, SortPriceAsc.Valid())
	assert.True(t, SortPriceDesc.Valid())
	assert.False(t, SortOrder("name").Valid())
}
