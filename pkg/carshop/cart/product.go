package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownOption       = errors.New("option not offered on vehicle")
	ErrIncompatibleOptions = errors.New("options cannot be combined")
)

// Product is a vehicle together with the options selected for it. Two
// products are the same cart line when their IDs match.
type Product struct {
	ID        string          `json:"id"`
	VehicleID string          `json:"vehicle_id"`
	OptionIDs []string        `json:"option_ids,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image,omitempty"`
}

// NewProduct bundles vehicle with the selected options. The unit price is the
// vehicle price plus every selected option's price.
func NewProduct(vehicle dal.Vehicle, optionIDs []string) (Product, error) {
	ids := normalizeIDs(optionIDs)

	price := vehicle.Price
	selected := make([]dal.Option, 0, len(ids))
	for _, id := range ids {
		opt, ok := vehicle.Option(id)
		if !ok {
			return Product{}, fmt.Errorf("%w: %s", ErrUnknownOption, id)
		}
		selected = append(selected, opt)
		price = price.Add(opt.Price)
	}

	for i, a := range selected {
		for _, b := range selected[i+1:] {
			if incompatible(a, b) {
				return Product{}, fmt.Errorf("%w: %s and %s", ErrIncompatibleOptions, a.Name, b.Name)
			}
		}
	}

	product := Product{
		ID:        ProductID(vehicle.ID, ids),
		VehicleID: vehicle.ID,
		OptionIDs: ids,
		Name:      vehicle.Name,
		UnitPrice: price,
	}
	if len(vehicle.Images) > 0 {
		product.Image = vehicle.Images[0]
	}
	return product, nil
}

// ProductID derives the cart line identity of a vehicle/option bundle.
func ProductID(vehicleID string, optionIDs []string) string {
	ids := normalizeIDs(optionIDs)
	if len(ids) == 0 {
		return vehicleID
	}
	return vehicleID + "+" + strings.Join(ids, "+")
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// incompatibility may be declared on either side
func incompatible(a, b dal.Option) bool {
	for _, id := range a.IncompatibleWith {
		if id == b.ID {
			return true
		}
	}
	for _, id := range b.IncompatibleWith {
		if id == a.ID {
			return true
		}
	}
	return false
}
