package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Slab is one marginal band: income above From (up to the next slab) is taxed at Rate.
type Slab struct {
	From decimal.Decimal
	Rate decimal.Decimal
}

var (
	DefaultSlabs = []Slab{
		{From: decimal.NewFromInt(0), Rate: decimal.Zero},
		{From: decimal.NewFromInt(250000), Rate: decimal.RequireFromString("0.05")},
		{From: decimal.NewFromInt(500000), Rate: decimal.RequireFromString("0.20")},
		{From: decimal.NewFromInt(1000000), Rate: decimal.RequireFromString("0.30")},
	}
	DefaultCess = decimal.RequireFromString("0.04")
)

// SlabOracle computes tax in process from a marginal slab table plus cess.
type SlabOracle struct {
	slabs []Slab
	cess  decimal.Decimal
}

func NewSlabOracle() *SlabOracle {
	return &SlabOracle{slabs: DefaultSlabs, cess: DefaultCess}
}

func (o *SlabOracle) AnnualTax(ctx context.Context, annualIncome decimal.Decimal) (decimal.Decimal, error) {
	if annualIncome.IsNegative() {
		return decimal.Zero, ErrNegativeIncome
	}
	return Compute(o.slabs, o.cess, annualIncome), nil
}

// Compute applies slabs (ascending by From) and cess to income, rounded to cents.
func Compute(slabs []Slab, cess, income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for i, s := range slabs {
		if income.LessThanOrEqual(s.From) {
			break
		}
		upper := income
		if i+1 < len(slabs) && slabs[i+1].From.LessThan(income) {
			upper = slabs[i+1].From
		}
		tax = tax.Add(upper.Sub(s.From).Mul(s.Rate))
	}
	return tax.Add(tax.Mul(cess)).Round(2)
}
