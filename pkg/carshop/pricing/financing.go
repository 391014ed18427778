package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownDuration     = errors.New("unknown financing duration")
	ErrInvalidRate         = errors.New("financing rate must be positive")
	ErrInvalidDeposit      = errors.New("initial deposit must be between zero and the financed total")
	ErrDepositBelowPayment = errors.New("initial deposit is below the monthly payment")
)

// RateTable maps a loan duration in months to an annual interest rate in percent.
type RateTable map[int]float64

// DefaultRateTable returns the dealership's published credit rates.
func DefaultRateTable() RateTable {
	return RateTable{
		48: 3.9,
		60: 4.2,
		72: 4.5,
	}
}

// NewRateTable copies rates, rejecting empty tables, non-positive durations
// and any rate whose amortization factor is not a finite positive number.
// Rates small enough that (1+r)^n rounds to 1 are rejected along with zero.
func NewRateTable(rates map[int]float64) (RateTable, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: rate table is empty", ErrInvalidRate)
	}
	table := make(RateTable, len(rates))
	for months, rate := range rates {
		if months <= 0 {
			return nil, fmt.Errorf("%w: duration %d", ErrUnknownDuration, months)
		}
		table[months] = rate
	}
	for _, months := range table.Durations() {
		if _, err := table.factor(months); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// factor is r(1+r)^n / ((1+r)^n - 1) for the monthly rate r.
func (t RateTable) factor(months int) (float64, error) {
	rate, err := t.Rate(months)
	if err != nil {
		return 0, err
	}
	if !(rate > 0) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: %d months at %v%%", ErrInvalidRate, months, rate)
	}
	monthlyRate := rate / 100 / 12
	growth := math.Pow(1+monthlyRate, float64(months))
	denominator := growth - 1
	if !(denominator > 0) {
		return 0, fmt.Errorf("%w: %d months at %v%% has no amortization", ErrInvalidRate, months, rate)
	}
	f := monthlyRate * growth / denominator
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %d months at %v%% has no amortization", ErrInvalidRate, months, rate)
	}
	return f, nil
}

// Rate returns the annual percent rate for months.
func (t RateTable) Rate(months int) (float64, error) {
	rate, ok := t[months]
	if !ok {
		return 0, fmt.Errorf("%w: %d months", ErrUnknownDuration, months)
	}
	return rate, nil
}

// Durations returns the offered durations in ascending order.
func (t RateTable) Durations() []int {
	durations := make([]int, 0, len(t))
	for months := range t {
		durations = append(durations, months)
	}
	sort.Ints(durations)
	return durations
}

// MonthlyPayment computes the fixed installment for (total - deposit) over
// months using the standard amortization formula. Intermediate values are
// not rounded.
func (t RateTable) MonthlyPayment(total decimal.Decimal, months int, deposit decimal.Decimal) (float64, error) {
	f, err := t.factor(months)
	if err != nil {
		return 0, err
	}
	payment := total.Sub(deposit).InexactFloat64() * f
	if math.IsInf(payment, 0) || math.IsNaN(payment) {
		return 0, fmt.Errorf("%w: payment over %d months is not finite", ErrInvalidRate, months)
	}
	return payment, nil
}

// FinancingQuote is the credit simulation returned to the customer.
type FinancingQuote struct {
	Principal      decimal.Decimal `json:"principal"`
	DurationMonths int             `json:"duration_months"`
	InterestRate   float64         `json:"interest_rate"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// Plan is a credit simulation under edit: a principal, a chosen duration
// and the deposit currently accepted for it. Plans must come from
// RateTable.NewPlan; the fields are readable but a Plan literal has no
// rate table and panics on first use.
type Plan struct {
	Principal      decimal.Decimal
	DurationMonths int
	InitialDeposit decimal.Decimal

	rates RateTable
}

// NewPlan starts a plan with no deposit. It fails when months is not
// offered or its rate cannot be amortized.
func (t RateTable) NewPlan(principal decimal.Decimal, months int) (*Plan, error) {
	if _, err := t.factor(months); err != nil {
		return nil, err
	}
	return &Plan{
		Principal:      principal,
		DurationMonths: months,
		InitialDeposit: decimal.Zero,
		rates:          t,
	}, nil
}

// MonthlyPayment returns the installment for the plan's current deposit.
func (p *Plan) MonthlyPayment() float64 {
	payment, err := p.rates.MonthlyPayment(p.Principal, p.DurationMonths, p.InitialDeposit)
	if err != nil {
		// NewPlan and SetDuration only admit durations that amortize.
		panic(err)
	}
	return payment
}

// SetDuration switches the plan to another offered duration.
func (p *Plan) SetDuration(months int) error {
	if _, err := p.rates.factor(months); err != nil {
		return err
	}
	p.DurationMonths = months
	return nil
}

// SetDeposit accepts deposit only if it lies in [0, principal] and is not
// less than the monthly payment computed with the deposit already on the
// plan. A rejected deposit leaves the plan unchanged.
func (p *Plan) SetDeposit(deposit decimal.Decimal) error {
	if deposit.IsNegative() || deposit.GreaterThan(p.Principal) {
		return ErrInvalidDeposit
	}
	if deposit.InexactFloat64() < p.MonthlyPayment() {
		return ErrDepositBelowPayment
	}
	p.InitialDeposit = deposit
	return nil
}

// Quote renders the plan.
func (p *Plan) Quote() FinancingQuote {
	payment := p.MonthlyPayment()
	rate, _ := p.rates.Rate(p.DurationMonths)
	financed := p.Principal.Sub(p.InitialDeposit)
	monthly := decimal.NewFromFloat(payment)
	return FinancingQuote{
		Principal:      p.Principal,
		DurationMonths: p.DurationMonths,
		InterestRate:   rate,
		InitialDeposit: p.InitialDeposit,
		MonthlyPayment: monthly,
		TotalInterest:  monthly.Mul(decimal.NewFromInt(int64(p.DurationMonths))).Sub(financed),
	}
}
