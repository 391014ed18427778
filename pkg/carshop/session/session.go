// Package session keeps the per-visitor state the storefront owns: the
// cart and the financing selection.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/cart"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("session not found")

// Financing is the credit selection made during checkout.
type Financing struct {
	DurationMonths int             `json:"duration_months,omitempty"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// Session is the state owned by one browsing session.
type Session struct {
	ID        string    `json:"id"`
	Cart      cart.Cart `json:"cart"`
	Financing Financing `json:"financing"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty session.
func New(id string) *Session {
	return &Session{ID: id, Financing: Financing{InitialDeposit: decimal.Zero}}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	out := *s
	out.Cart = s.Cart.Clone()
	return &out
}

// Store owns sessions. Callers never hold a session across requests; they
// read a copy with Get or mutate through Update, which replaces the stored
// session wholesale.
type Store interface {
	// Get returns a copy of the session, or a new empty session when id is
	// unknown or expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Update applies fn to a copy of the session and saves the result. When
	// fn returns an error nothing is saved.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}
