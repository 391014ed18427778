// Package checkout turns a session cart into a priced summary, a credit
// simulation and finally an order submitted to the order service.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/auth"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/cart"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/pricing"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrOutOfStock       = errors.New("vehicle is out of stock")
	ErrInvalidOrderKind = errors.New("order kind must be cash or credit")
	ErrMissingAddress   = errors.New("customer has no delivery address")
)

type VehicleReader interface {
	Vehicle(ctx context.Context, id string) (dal.Vehicle, error)
}

type CustomerReader interface {
	Customer(ctx context.Context, token, id string) (dal.Customer, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, input dal.OrderInput) (dal.Order, error)
}

type Service struct {
	Vehicles  VehicleReader
	Customers CustomerReader
	Orders    OrderCreator

	calc          pricing.Calculator
	rates         pricing.RateTable
	maxConcurrent int
}

func NewService(vehicles VehicleReader, customers CustomerReader, orders OrderCreator, calc pricing.Calculator, rates pricing.RateTable, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if len(rates) == 0 {
		rates = pricing.DefaultRateTable()
	}

	return &Service{
		Vehicles:      vehicles,
		Customers:     customers,
		Orders:        orders,
		calc:          calc,
		rates:         rates,
		maxConcurrent: maxConcurrent,
	}
}

// Line is one priced cart entry.
type Line struct {
	ProductID string          `json:"product_id"`
	VehicleID string          `json:"vehicle_id"`
	OptionIDs []string        `json:"option_ids,omitempty"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Summary is the priced view of a cart.
type Summary struct {
	Lines     []Line `json:"lines"`
	ItemCount int    `json:"item_count"`
	pricing.Summary
}

// Summary prices the session cart.
func (s *Service) Summary(sess *session.Session) Summary {
	entries := sess.Cart.Entries()
	lines := make([]Line, len(entries))
	for i, e := range entries {
		lines[i] = lineFromEntry(e)
	}
	return Summary{
		Lines:     lines,
		ItemCount: sess.Cart.TotalItems(),
		Summary:   s.calc.Summarize(sess.Cart.TotalPrice()),
	}
}

func lineFromEntry(e cart.Entry) Line {
	return Line{
		ProductID: e.Product.ID,
		VehicleID: e.Product.VehicleID,
		OptionIDs: e.Product.OptionIDs,
		Name:      e.Product.Name,
		Image:     e.Product.Image,
		UnitPrice: e.Product.UnitPrice,
		Quantity:  e.Quantity,
		LineTotal: e.LineTotal(),
	}
}

// Durations lists the credit durations on offer.
func (s *Service) Durations() []int {
	return s.rates.Durations()
}

// plan rebuilds the credit simulation stored on the session against the
// current cart total. A stored deposit that no longer fits the total is
// dropped.
func (s *Service) plan(sess *session.Session) (*pricing.Plan, error) {
	principal := s.Summary(sess).Total

	months := sess.Financing.DurationMonths
	if _, err := s.rates.Rate(months); err != nil {
		months = s.rates.Durations()[0]
	}
	plan, err := s.rates.NewPlan(principal, months)
	if err != nil {
		return nil, err
	}

	deposit := sess.Financing.InitialDeposit
	if !deposit.IsNegative() && deposit.LessThanOrEqual(principal) {
		plan.InitialDeposit = deposit
	}
	return plan, nil
}

// Financing returns the credit quote for the session.
func (s *Service) Financing(sess *session.Session) (pricing.FinancingQuote, error) {
	plan, err := s.plan(sess)
	if err != nil {
		return pricing.FinancingQuote{}, err
	}
	return plan.Quote(), nil
}

// SetFinancing applies a duration change and, when deposit is non-nil, a
// new deposit. The deposit is checked against the payment computed before
// it is applied. On error the session is left untouched.
func (s *Service) SetFinancing(sess *session.Session, months int, deposit *decimal.Decimal) (pricing.FinancingQuote, error) {
	plan, err := s.plan(sess)
	if err != nil {
		return pricing.FinancingQuote{}, err
	}
	if months != 0 {
		if err := plan.SetDuration(months); err != nil {
			return pricing.FinancingQuote{}, err
		}
	}
	if deposit != nil {
		if err := plan.SetDeposit(*deposit); err != nil {
			return pricing.FinancingQuote{}, err
		}
	}

	sess.Financing = session.Financing{
		DurationMonths: plan.DurationMonths,
		InitialDeposit: plan.InitialDeposit,
	}
	return plan.Quote(), nil
}

// PlaceOrder submits the session cart as an order for the caller. The
// customer profile and every vehicle in the cart are fetched concurrently;
// the profile supplies the delivery address and the vehicles must still
// have enough stock. The cart is left as is.
func (s *Service) PlaceOrder(ctx context.Context, caller auth.Identity, sess *session.Session, kind dal.OrderKind) (dal.Order, error) {
	if !kind.Valid() {
		return dal.Order{}, ErrInvalidOrderKind
	}
	if sess.Cart.Len() == 0 {
		return dal.Order{}, ErrEmptyCart
	}

	summary := s.Summary(sess)

	wanted := make(map[string]int)
	var vehicleIDs []string
	for _, line := range summary.Lines {
		if _, ok := wanted[line.VehicleID]; !ok {
			vehicleIDs = append(vehicleIDs, line.VehicleID)
		}
		wanted[line.VehicleID] += line.Quantity
	}

	var customer dal.Customer
	vehicles := make([]dal.Vehicle, len(vehicleIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	g.Go(func() error {
		c, err := s.Customers.Customer(gctx, caller.Token, caller.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to get customer %s: %w", caller.CustomerID, err)
		}
		customer = c
		return nil
	})
	for idx := range vehicleIDs {
		idx := idx
		g.Go(func() error {
			v, err := s.Vehicles.Vehicle(gctx, vehicleIDs[idx])
			if err != nil {
				return fmt.Errorf("failed to get vehicle %s: %w", vehicleIDs[idx], err)
			}
			vehicles[idx] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dal.Order{}, err
	}

	if customer.Address.Empty() {
		return dal.Order{}, fmt.Errorf("%w: customer %s", ErrMissingAddress, caller.CustomerID)
	}
	for _, v := range vehicles {
		if v.Stock < wanted[v.ID] {
			return dal.Order{}, fmt.Errorf("%w: %s has %d left", ErrOutOfStock, v.Name, v.Stock)
		}
	}

	input := dal.OrderInput{
		CustomerID: caller.CustomerID,
		Kind:       kind,
		Lines:      make([]dal.OrderLine, len(summary.Lines)),
		Subtotal:   summary.Subtotal,
		Tax:        summary.Tax,
		Shipping:   summary.Shipping,
		Total:      summary.Total,
		Address:    customer.Address,
	}
	for i, line := range summary.Lines {
		input.Lines[i] = dal.OrderLine{
			VehicleID: line.VehicleID,
			OptionIDs: line.OptionIDs,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
	}

	if kind == dal.OrderKindCredit {
		plan, err := s.plan(sess)
		if err != nil {
			return dal.Order{}, err
		}
		quote := plan.Quote()
		input.DurationMonths = quote.DurationMonths
		input.InitialDeposit = quote.InitialDeposit
		input.MonthlyPayment = quote.MonthlyPayment
	}

	if err := dal.Validate(input); err != nil {
		return dal.Order{}, err
	}

	return s.Orders.CreateOrder(ctx, caller.Token, input)
}
