package search

import (
	"context"
	"strings"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/shopspring/decimal"
)

// Filter combines the free-text query with the structured facets. A vehicle
// is kept only if it satisfies every facet that is set and the text query.
type Filter struct {
	Query     string
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	OptionIDs []string
	Sort      SortOrder
}

type predicate func(v dal.Vehicle) bool

// Apply runs the filter stages over vehicles and sorts the survivors. Without
// a sort order the fetch order is preserved.
func Apply(ctx context.Context, vehicles []dal.Vehicle, f Filter) ([]dal.Vehicle, error) {
	query := ParseQuery(f.Query)

	stream := generator(ctx, len(vehicles))
	stream = filterStage(ctx, stream, vehicles, categoryPredicate(f.Category))
	stream = filterStage(ctx, stream, vehicles, pricePredicate(f.MinPrice, f.MaxPrice))
	stream = filterStage(ctx, stream, vehicles, optionsPredicate(f.OptionIDs))
	stream = filterStage(ctx, stream, vehicles, query.Matches)

	matches := make([]dal.Vehicle, 0)
	for i := range stream {
		matches = append(matches, vehicles[i])
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.Sort == SortNone {
		return matches, nil
	}
	return MergeSort(matches, f.Sort), nil
}

// Search applies f and adds price statistics over the matches.
func Search(ctx context.Context, vehicles []dal.Vehicle, f Filter) (dal.SearchResult, error) {
	matches, err := Apply(ctx, vehicles, f)
	if err != nil {
		return dal.SearchResult{}, err
	}
	resp := findStats(matches)
	resp.Total = len(matches)
	resp.Vehicles = matches
	return resp, nil
}

func findStats(vehicles []dal.Vehicle) dal.SearchResult {
	if len(vehicles) == 0 {
		return dal.SearchResult{Lowest: decimal.Zero, Median: decimal.Zero, Highest: decimal.Zero}
	}
	sorted := MergeSort(vehicles, SortPriceAsc)
	length := len(sorted)
	return dal.SearchResult{
		Lowest:  sorted[0].Price,
		Median:  sorted[length/2].Price,
		Highest: sorted[length-1].Price,
	}
}

func generator(ctx context.Context, size int) <-chan int {
	intStream := make(chan int)
	go func() {
		defer close(intStream)
		for i := 0; i < size; i++ {
			select {
			case <-ctx.Done():
				return
			case intStream <- i:
			}
		}
	}()
	return intStream
}

// filterStage forwards indexes whose vehicle satisfies keep. A nil keep
// passes the stream through untouched.
func filterStage(ctx context.Context, intStream <-chan int, vehicles []dal.Vehicle, keep predicate) <-chan int {
	if keep == nil {
		return intStream
	}
	matches := make(chan int)
	go func() {
		defer close(matches)
		for i := range intStream {
			if !keep(vehicles[i]) {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case matches <- i:
			}
		}
	}()
	return matches
}

func categoryPredicate(category string) predicate {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil
	}
	return func(v dal.Vehicle) bool {
		return strings.EqualFold(v.Type, category)
	}
}

// bounds are inclusive
func pricePredicate(lower, upper *decimal.Decimal) predicate {
	if lower == nil && upper == nil {
		return nil
	}
	return func(v dal.Vehicle) bool {
		if lower != nil && v.Price.LessThan(*lower) {
			return false
		}
		if upper != nil && v.Price.GreaterThan(*upper) {
			return false
		}
		return true
	}
}

func optionsPredicate(ids []string) predicate {
	if len(ids) == 0 {
		return nil
	}
	return func(v dal.Vehicle) bool {
		return v.HasOptions(ids)
	}
}
