package dal

// Customer defines a customer profile from the customer service
type Customer struct {
	ID        string  `json:"id" validate:"required"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// Address defines a postal address used to pre-fill checkout
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Empty reports whether no address field is set.
func (a Address) Empty() bool {
	return a == Address{}
}
