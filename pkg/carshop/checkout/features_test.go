package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/cart"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/pricing"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
	"github.com/shopspring/decimal"
)

type pricingTestContext struct {
	svc     *Service
	catalog map[string]dal.Vehicle
	sess    *session.Session
	quote   pricing.FinancingQuote
	err     error
}

func (c *pricingTestContext) reset() {
	c.svc = NewService(nil, nil, nil, pricing.DefaultCalculator(), pricing.DefaultRateTable(), 1)
	c.catalog = make(map[string]dal.Vehicle)
	c.sess = session.New("feature")
	c.quote = pricing.FinancingQuote{}
	c.err = nil
}

func vehicleID(name string) string {
	return strings.ToLower(name)
}

func (c *pricingTestContext) theCatalogOffers(name string, price int) error {
	c.catalog[vehicleID(name)] = dal.Vehicle{
		ID:    vehicleID(name),
		Name:  name,
		Price: decimal.NewFromInt(int64(price)),
		Stock: 1,
	}
	return nil
}

func (c *pricingTestContext) theCatalogOffersWithOption(name string, price int, option string, optionPrice int) error {
	if err := c.theCatalogOffers(name, price); err != nil {
		return err
	}
	v := c.catalog[vehicleID(name)]
	v.Options = append(v.Options, dal.Option{ID: option, Name: option, Price: decimal.NewFromInt(int64(optionPrice))})
	c.catalog[v.ID] = v
	return nil
}

func (c *pricingTestContext) add(name string, optionIDs []string) error {
	v, ok := c.catalog[vehicleID(name)]
	if !ok {
		return fmt.Errorf("vehicle %q is not in the catalog", name)
	}
	p, err := cart.NewProduct(v, optionIDs)
	if err != nil {
		return err
	}
	c.sess.Cart.Add(p)
	return nil
}

func (c *pricingTestContext) iAddToTheCart(name string) error {
	return c.add(name, nil)
}

func (c *pricingTestContext) iAddWithOptionToTheCart(name, option string) error {
	return c.add(name, []string{option})
}

func (c *pricingTestContext) iSetTheQuantityOfTo(name string, quantity int) error {
	c.sess.Cart.UpdateQuantity(vehicleID(name), quantity)
	return nil
}

func (c *pricingTestContext) iRemoveFromTheCart(name string) error {
	c.sess.Cart.Remove(vehicleID(name))
	return nil
}

func (c *pricingTestContext) iFinanceOverMonths(months int) error {
	quote, err := c.svc.SetFinancing(c.sess, months, nil)
	if err != nil {
		return err
	}
	c.quote = quote
	return nil
}

func (c *pricingTestContext) iOfferADepositOf(amount int) error {
	deposit := decimal.NewFromInt(int64(amount))
	c.quote, c.err = c.svc.SetFinancing(c.sess, 0, &deposit)
	return nil
}

func (c *pricingTestContext) theCartHasLines(n int) error {
	if got := c.sess.Cart.Len(); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *pricingTestContext) theCartHoldsItems(n int) error {
	if got := c.sess.Cart.TotalItems(); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func expectAmount(label string, got decimal.Decimal, want string) error {
	expected, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Equal(expected) {
		return fmt.Errorf("expected %s %s, got %s", label, expected, got)
	}
	return nil
}

func (c *pricingTestContext) theSubtotalIs(want string) error {
	return expectAmount("subtotal", c.svc.Summary(c.sess).Subtotal, want)
}

func (c *pricingTestContext) theTaxIs(want string) error {
	return expectAmount("tax", c.svc.Summary(c.sess).Tax, want)
}

func (c *pricingTestContext) theShippingIs(want string) error {
	return expectAmount("shipping", c.svc.Summary(c.sess).Shipping, want)
}

func (c *pricingTestContext) theTotalIs(want string) error {
	return expectAmount("total", c.svc.Summary(c.sess).Total, want)
}

func (c *pricingTestContext) theInterestRateIs(rate float64) error {
	if c.quote.InterestRate != rate {
		return fmt.Errorf("expected rate %v, got %v", rate, c.quote.InterestRate)
	}
	return nil
}

func (c *pricingTestContext) theMonthlyPaymentRoundsTo(want string) error {
	return expectAmount("monthly payment", c.quote.MonthlyPayment.Round(2), want)
}

func (c *pricingTestContext) theDepositIsRefused() error {
	if !errors.Is(c.err, pricing.ErrDepositBelowPayment) {
		return fmt.Errorf("expected deposit to be refused, got %v", c.err)
	}
	return nil
}

func (c *pricingTestContext) theDepositOnFileIs(want string) error {
	return expectAmount("deposit", c.sess.Financing.InitialDeposit, want)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog offers "([^"]*)" at (\d+)$`, tc.theCatalogOffers)
	ctx.Step(`^the catalog offers "([^"]*)" at (\d+) with option "([^"]*)" at (\d+)$`, tc.theCatalogOffersWithOption)

	// When steps
	ctx.Step(`^I add "([^"]*)" to the cart$`, tc.iAddToTheCart)
	ctx.Step(`^I add "([^"]*)" with option "([^"]*)" to the cart$`, tc.iAddWithOptionToTheCart)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfTo)
	ctx.Step(`^I remove "([^"]*)" from the cart$`, tc.iRemoveFromTheCart)
	ctx.Step(`^I finance over (\d+) months$`, tc.iFinanceOverMonths)
	ctx.Step(`^I offer a deposit of (\d+)$`, tc.iOfferADepositOf)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart holds (\d+) items$`, tc.theCartHoldsItems)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the tax is "([^"]*)"$`, tc.theTaxIs)
	ctx.Step(`^the shipping is "([^"]*)"$`, tc.theShippingIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the interest rate is ([\d.]+)$`, tc.theInterestRateIs)
	ctx.Step(`^the monthly payment rounds to "([^"]*)"$`, tc.theMonthlyPaymentRoundsTo)
	ctx.Step(`^the deposit is refused$`, tc.theDepositIsRefused)
	ctx.Step(`^the deposit on file is "([^"]*)"$`, tc.theDepositOnFileIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
