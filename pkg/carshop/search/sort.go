package search

import "github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"

// SortOrder selects the price ordering of search results.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "asc"
	SortPriceDesc SortOrder = "desc"
)

// Valid reports whether s is a known sort order.
func (s SortOrder) Valid() bool {
	return s == SortNone || s == SortPriceAsc || s == SortPriceDesc
}

// MergeSort returns vehicles ordered by price. Vehicles with equal prices
// keep their relative order.
func MergeSort(vehicles []dal.Vehicle, order SortOrder) []dal.Vehicle {
	less := func(a, b dal.Vehicle) bool { return a.Price.LessThan(b.Price) }
	if order == SortPriceDesc {
		less = func(a, b dal.Vehicle) bool { return a.Price.GreaterThan(b.Price) }
	}
	return mergeSort(vehicles, less)
}

func mergeSort(vehicles []dal.Vehicle, less func(a, b dal.Vehicle) bool) []dal.Vehicle {
	if len(vehicles) <= 1 {
		return append([]dal.Vehicle(nil), vehicles...)
	}

	middle := len(vehicles) / 2
	left := mergeSort(vehicles[:middle], less)
	right := mergeSort(vehicles[middle:], less)
	return merge(left, right, less)
}

func merge(left, right []dal.Vehicle, less func(a, b dal.Vehicle) bool) []dal.Vehicle {
	result := make([]dal.Vehicle, 0, len(left)+len(right))
	for len(left) > 0 && len(right) > 0 {
		// right goes first only when strictly smaller
		if less(right[0], left[0]) {
			result = append(result, right[0])
			right = right[1:]
		} else {
			result = append(result, left[0])
			left = left[1:]
		}
	}
	result = append(result, left...)
	return append(result, right...)
}
