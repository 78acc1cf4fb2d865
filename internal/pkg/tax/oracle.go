// Package tax computes annual income tax for TDS withholding.
package tax

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeIncome = errors.New("annual income must not be negative")
	ErrInvalidOutput  = errors.New("tax oracle returned invalid output")
)

// Oracle maps a non-negative annual income to a non-negative annual tax.
type Oracle interface {
	AnnualTax(ctx context.Context, annualIncome decimal.Decimal) (decimal.Decimal, error)
}
