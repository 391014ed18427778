package dal

import "github.com/shopspring/decimal"

// Vehicle defines a vehicle record as served by the vehicle service
type Vehicle struct {
	ID            string          `json:"id" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Specification string          `json:"specification"`
	Price         decimal.Decimal `json:"price" validate:"gt=0"`
	Images        []string        `json:"images"`
	Options       []Option        `json:"options" validate:"dive"`
	Propulsion    string          `json:"propulsion"`
	Type          string          `json:"type"`
	Stock         int             `json:"stock" validate:"gte=0"`
}

// Option defines a vehicle option. IncompatibleWith lists option ids that
// cannot be selected together with this one.
type Option struct {
	ID               string          `json:"id" validate:"required"`
	Name             string          `json:"name" validate:"required"`
	Price            decimal.Decimal `json:"price" validate:"gte=0"`
	IncompatibleWith []string        `json:"incompatibleWith"`
}

// Option returns the option with the given id.
func (v Vehicle) Option(id string) (Option, bool) {
	for _, opt := range v.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// HasOptions reports whether every id in ids is offered on the vehicle.
func (v Vehicle) HasOptions(ids []string) bool {
	for _, id := range ids {
		if _, ok := v.Option(id); !ok {
			return false
		}
	}
	return true
}

// InStock reports whether at least one unit is available.
func (v Vehicle) InStock() bool {
	return v.Stock > 0
}

// VehicleInput defines the admin payload used to create or update a vehicle
type VehicleInput struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Specification string          `json:"specification" validate:"max=4000"`
	Price         decimal.Decimal `json:"price" validate:"gt=0"`
	Propulsion    string          `json:"propulsion" validate:"required"`
	Type          string          `json:"type" validate:"required"`
	Stock         int             `json:"stock" validate:"gte=0"`
	OptionIDs     []string        `json:"option_ids"`
}

// SearchResult defines the catalog search response
type SearchResult struct {
	Total    int             `json:"total"`
	Lowest   decimal.Decimal `json:"lowest"`
	Median   decimal.Decimal `json:"median"`
	Highest  decimal.Decimal `json:"highest"`
	Vehicles []Vehicle       `json:"vehicles"`
}
