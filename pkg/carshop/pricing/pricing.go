// Package pricing holds the storefront's money math: line totals, cart
// aggregation, tax and shipping, and credit financing.
package pricing

import "github.com/shopspring/decimal"

const (
	// DefaultTaxRate is the flat sales tax applied to every subtotal.
	DefaultTaxRate = 0.03
)

// Line is the pricing view of one cart entry.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns unitPrice × quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Totals is the aggregate of a set of lines.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// Aggregate sums line totals and quantities.
func Aggregate(lines []Line) Totals {
	totals := Totals{Subtotal: decimal.Zero}
	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.Add(LineTotal(line.UnitPrice, line.Quantity))
		totals.ItemCount += line.Quantity
	}
	return totals
}

// Summary is the checkout breakdown shown to the customer and sent with orders.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Calculator applies a fixed tax rate and a flat shipping fee.
type Calculator struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
}

// NewCalculator returns a calculator with the given tax rate and shipping fee.
func NewCalculator(taxRate, shipping float64) Calculator {
	return Calculator{
		TaxRate:  decimal.NewFromFloat(taxRate),
		Shipping: decimal.NewFromFloat(shipping),
	}
}

// DefaultCalculator charges 3% tax and free shipping.
func DefaultCalculator() Calculator {
	return NewCalculator(DefaultTaxRate, 0)
}

// Summarize computes tax and total for a non-negative subtotal.
func (c Calculator) Summarize(subtotal decimal.Decimal) Summary {
	tax := subtotal.Mul(c.TaxRate)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: c.Shipping,
		Total:    subtotal.Add(tax).Add(c.Shipping),
	}
}
