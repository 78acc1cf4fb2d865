// Command taxcalc prints the annual income tax for the income given as its
// only argument. It is the default target of TAX_ORACLE_COMMAND.
package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/tax"
	"github.com/shopspring/decimal"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: taxcalc <annual_income>")
		os.Exit(2)
	}

	income, err := decimal.NewFromString(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid income %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	if income.IsNegative() {
		fmt.Fprintln(os.Stderr, tax.ErrNegativeIncome)
		os.Exit(1)
	}

	fmt.Println(tax.Compute(tax.DefaultSlabs, tax.DefaultCess, income).StringFixed(2))
}
