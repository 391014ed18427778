package graphql

import (
	"context"
	"fmt"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
)

const orderFields = `
	id
	customerId
	kind
	subtotal
	tax
	shipping
	total
	durationMonths
	initialDeposit
	monthlyPayment
	createdAt
	address {
		street
		city
		postalCode
		country
	}
	lines {
		vehicleId
		optionIds
		name
		quantity
		unitPrice
		lineTotal
	}`

const (
	ordersQuery = `query Orders($customerId: ID!) {
	orders(customerId: $customerId) {` + orderFields + `
	}
}`

	createCashOrderMutation = `mutation CreateCashOrder($input: CashOrderInput!) {
	createCashOrder(input: $input) {` + orderFields + `
	}
}`

	createCreditOrderMutation = `mutation CreateCreditOrder($input: CreditOrderInput!) {
	createCreditOrder(input: $input) {` + orderFields + `
	}
}`
)

// OrderService lists and submits orders.
type OrderService struct {
	client *Client
}

func NewOrderService(client *Client) *OrderService {
	return &OrderService{client: client}
}

// Orders returns the order history of customerID. Invalid records are
// dropped and logged.
func (s *OrderService) Orders(ctx context.Context, token, customerID string) ([]dal.Order, error) {
	var resp struct {
		Orders []dal.Order `json:"orders"`
	}
	op := call{operation: "Orders", query: ordersQuery, vars: map[string]any{"customerId": customerID}, token: token}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return nil, err
	}

	orders := make([]dal.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		if err := dal.Validate(o); err != nil {
			s.client.warnInvalid(ctx, "Orders", o.ID, err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// CreateOrder submits a cash or credit order depending on input.Kind.
func (s *OrderService) CreateOrder(ctx context.Context, token string, input dal.OrderInput) (dal.Order, error) {
	var resp struct {
		Cash   *dal.Order `json:"createCashOrder"`
		Credit *dal.Order `json:"createCreditOrder"`
	}

	op := call{token: token, vars: map[string]any{"input": orderInputVars(input)}}
	switch input.Kind {
	case dal.OrderKindCash:
		op.operation, op.query = "CreateCashOrder", createCashOrderMutation
	case dal.OrderKindCredit:
		op.operation, op.query = "CreateCreditOrder", createCreditOrderMutation
	default:
		return dal.Order{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order kind %q", input.Kind))
	}

	if err := s.client.run(ctx, op, &resp); err != nil {
		return dal.Order{}, err
	}

	order := resp.Cash
	if input.Kind == dal.OrderKindCredit {
		order = resp.Credit
	}
	if order == nil {
		return dal.Order{}, invalidRecord(s.client.service, "order", fmt.Errorf("empty %s response", op.operation))
	}
	if err := dal.Validate(*order); err != nil {
		return dal.Order{}, invalidRecord(s.client.service, "order", err)
	}
	return *order, nil
}

func orderInputVars(in dal.OrderInput) map[string]any {
	lines := make([]map[string]any, len(in.Lines))
	for i, l := range in.Lines {
		optionIDs := l.OptionIDs
		if optionIDs == nil {
			optionIDs = []string{}
		}
		lines[i] = map[string]any{
			"vehicleId": l.VehicleID,
			"optionIds": optionIDs,
			"name":      l.Name,
			"quantity":  l.Quantity,
			"unitPrice": l.UnitPrice.InexactFloat64(),
			"lineTotal": l.LineTotal.InexactFloat64(),
		}
	}
	vars := map[string]any{
		"customerId": in.CustomerID,
		"lines":      lines,
		"subtotal":   in.Subtotal.InexactFloat64(),
		"tax":        in.Tax.InexactFloat64(),
		"shipping":   in.Shipping.InexactFloat64(),
		"total":      in.Total.InexactFloat64(),
		"address": map[string]any{
			"street":     in.Address.Street,
			"city":       in.Address.City,
			"postalCode": in.Address.PostalCode,
			"country":    in.Address.Country,
		},
	}
	if in.Kind == dal.OrderKindCredit {
		vars["durationMonths"] = in.DurationMonths
		vars["initialDeposit"] = in.InitialDeposit.InexactFloat64()
		vars["monthlyPayment"] = in.MonthlyPayment.InexactFloat64()
	}
	return vars
}
