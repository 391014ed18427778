package graphql

import (
	"context"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
)

const customerQuery = `query Customer($id: ID!) {
	customer(id: $id) {
		id
		firstName
		lastName
		email
		phone
		address {
			street
			city
			postalCode
			country
		}
	}
}`

// CustomerService reads customer profiles. It only feeds checkout address
// pre-fill and the profile page.
type CustomerService struct {
	client *Client
}

func NewCustomerService(client *Client) *CustomerService {
	return &CustomerService{client: client}
}

// Customer fetches the profile of id on behalf of the token holder.
func (s *CustomerService) Customer(ctx context.Context, token, id string) (dal.Customer, error) {
	var resp struct {
		Customer *dal.Customer `json:"customer"`
	}
	op := call{operation: "Customer", query: customerQuery, vars: map[string]any{"id": id}, token: token}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return dal.Customer{}, err
	}
	if resp.Customer == nil {
		return dal.Customer{}, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if err := dal.Validate(*resp.Customer); err != nil {
		return dal.Customer{}, invalidRecord(s.client.service, "customer", err)
	}
	return *resp.Customer, nil
}
