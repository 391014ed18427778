package dal

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distinguishes upfront and financed orders.
type OrderKind string

const (
	OrderKindCash   OrderKind = "cash"
	OrderKindCredit OrderKind = "credit"
)

// Valid reports whether k is a known order kind.
func (k OrderKind) Valid() bool {
	return k == OrderKindCash || k == OrderKindCredit
}

// Order defines an order record from the order service
type Order struct {
	ID             string          `json:"id" validate:"required"`
	CustomerID     string          `json:"customerId" validate:"required"`
	Kind           OrderKind       `json:"kind" validate:"oneof=cash credit"`
	Lines          []OrderLine     `json:"lines" validate:"dive"`
	Subtotal       decimal.Decimal `json:"subtotal" validate:"gte=0"`
	Tax            decimal.Decimal `json:"tax" validate:"gte=0"`
	Shipping       decimal.Decimal `json:"shipping" validate:"gte=0"`
	Total          decimal.Decimal `json:"total" validate:"gte=0"`
	DurationMonths int             `json:"durationMonths,omitempty"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	Address        Address         `json:"address"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// OrderLine defines one purchased vehicle/option bundle
type OrderLine struct {
	VehicleID string          `json:"vehicleId" validate:"required"`
	OptionIDs []string        `json:"optionIds"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	LineTotal decimal.Decimal `json:"lineTotal" validate:"gte=0"`
}

// OrderInput defines the order submitted to the order service
type OrderInput struct {
	CustomerID     string          `json:"customerId" validate:"required"`
	Kind           OrderKind       `json:"kind" validate:"oneof=cash credit"`
	Lines          []OrderLine     `json:"lines" validate:"min=1,dive"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Shipping       decimal.Decimal `json:"shipping"`
	Total          decimal.Decimal `json:"total"`
	DurationMonths int             `json:"durationMonths,omitempty"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	Address        Address         `json:"address"`
}
