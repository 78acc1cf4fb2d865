package tax

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CommandOracle runs an external calculator as "<command...> <income>" and
// parses a single decimal from its stdout.
type CommandOracle struct {
	command []string
	timeout time.Duration
}

func NewCommandOracle(command []string, timeout time.Duration) (*CommandOracle, error) {
	if len(command) == 0 {
		return nil, errors.New("tax oracle command is empty")
	}
	return &CommandOracle{command: command, timeout: timeout}, nil
}

func (o *CommandOracle) AnnualTax(ctx context.Context, annualIncome decimal.Decimal) (decimal.Decimal, error) {
	if annualIncome.IsNegative() {
		return decimal.Zero, ErrNegativeIncome
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	args := append(append([]string{}, o.command[1:]...), annualIncome.StringFixed(2))
	cmd := exec.CommandContext(ctx, o.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return decimal.Zero, fmt.Errorf("tax oracle timed out after %s: %w", o.timeout, ctx.Err())
		}
		return decimal.Zero, fmt.Errorf("tax oracle failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" || strings.ContainsAny(out, " \t\n") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOutput, out)
	}
	tax, err := decimal.NewFromString(out)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOutput, out)
	}
	if tax.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative tax %s", ErrInvalidOutput, out)
	}
	return tax, nil
}
