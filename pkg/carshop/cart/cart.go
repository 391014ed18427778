// Package cart implements the session cart: an insertion-ordered list of
// products with quantities that never drop below one.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/pricing"
	"github.com/shopspring/decimal"
)

// Entry is one product and its requested quantity.
type Entry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns unit price × quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return pricing.LineTotal(e.Product.UnitPrice, e.Quantity)
}

// Cart is not safe for concurrent use; the session store owns each cart and
// hands out copies.
type Cart struct {
	entries []Entry
}

// Add increments the quantity of an existing line for the same product or
// appends a new line with quantity 1.
func (c *Cart) Add(product Product) {
	for i := range c.entries {
		if c.entries[i].Product.ID == product.ID {
			c.entries[i].Quantity++
			return
		}
	}
	c.entries = append(c.entries, Entry{Product: product, Quantity: 1})
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			return
		}
	}
}

// UpdateQuantity replaces the quantity of productID. Quantities below 1 are
// ignored. It reports whether a line changed.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Contains reports whether productID has a line in the cart.
func (c *Cart) Contains(productID string) bool {
	for _, e := range c.entries {
		if e.Product.ID == productID {
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.entries = nil
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.entries)
}

// TotalItems returns the sum of all quantities.
func (c *Cart) TotalItems() int {
	return pricing.Aggregate(c.lines()).ItemCount
}

// TotalPrice returns the sum of all line totals.
func (c *Cart) TotalPrice() decimal.Decimal {
	return pricing.Aggregate(c.lines()).Subtotal
}

// Entries returns the lines in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clone returns a cart that shares no state with c.
func (c *Cart) Clone() Cart {
	out := Cart{entries: make([]Entry, len(c.entries))}
	for i, e := range c.entries {
		e.Product.OptionIDs = append([]string(nil), e.Product.OptionIDs...)
		out.entries[i] = e
	}
	return out
}

func (c *Cart) lines() []pricing.Line {
	lines := make([]pricing.Line, len(c.entries))
	for i, e := range c.entries {
		lines[i] = pricing.Line{UnitPrice: e.Product.UnitPrice, Quantity: e.Quantity}
	}
	return lines
}

func (c Cart) MarshalJSON() ([]byte, error) {
	entries := c.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Quantity < 1 {
			return fmt.Errorf("cart entry %s: quantity %d below 1", e.Product.ID, e.Quantity)
		}
	}
	c.entries = entries
	return nil
}
