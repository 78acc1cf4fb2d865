package payroll

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/tax"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// Prorate scales a full-month amount by effectiveDays/workingDays, rounded to cents.
func Prorate(amount, effectiveDays decimal.Decimal, workingDays int) decimal.Decimal {
	return amount.Mul(effectiveDays).Div(decimal.NewFromInt(int64(workingDays))).Round(2)
}

// OvertimePay is hours × (basic / (workingDays × hoursPerDay)) × multiplier.
func OvertimePay(basic, hours decimal.Decimal, policy payroll.Policy) decimal.Decimal {
	if hours.IsZero() {
		return decimal.Zero
	}
	hoursPerMonth := decimal.NewFromInt(int64(policy.WorkingDays * policy.HoursPerDay))
	return basic.Mul(hours).Mul(policy.OvertimeMultiplier).Div(hoursPerMonth).Round(2)
}

type Calculator struct {
	policy payroll.Policy
	oracle tax.Oracle
}

func NewCalculator(policy payroll.Policy, oracle tax.Oracle) *Calculator {
	return &Calculator{policy: policy, oracle: oracle}
}

func (c *Calculator) Policy() payroll.Policy {
	return c.policy
}

// Compute produces the month's breakdown. It never fails: a tax oracle
// failure withholds no TDS.
func (c *Calculator) Compute(ctx context.Context, s salary.SalaryStructure, att attendance.MonthlySummary) payroll.Breakdown {
	days := att.EffectiveDays()
	wd := c.policy.WorkingDays

	b := payroll.Breakdown{
		BasicSalary:      Prorate(s.BasicSalary, days, wd),
		HRA:              Prorate(s.HRA, days, wd),
		DA:               Prorate(s.DA, days, wd),
		TA:               Prorate(s.TA, days, wd),
		MedicalAllowance: Prorate(s.MedicalAllowance, days, wd),
		SpecialAllowance: Prorate(s.SpecialAllowance, days, wd),
		OvertimePay:      OvertimePay(s.BasicSalary, att.OvertimeHours, c.policy),

		PFDeduction:     s.PFDeduction.Round(2),
		ProfessionalTax: s.ProfessionalTax.Round(2),
		ESI:             s.ESI.Round(2),

		DaysPresent:   att.DaysPresent,
		DaysAbsent:    att.DaysAbsent,
		DaysHalf:      att.DaysHalf,
		DaysLeave:     att.DaysLeave,
		OvertimeHours: att.OvertimeHours,
		WorkingDays:   wd,
	}

	b.TotalAllowances = b.HRA.Add(b.DA).Add(b.TA).Add(b.MedicalAllowance).Add(b.SpecialAllowance).Add(b.OvertimePay)
	b.GrossSalary = b.BasicSalary.Add(b.TotalAllowances)
	b.TDS = c.monthlyTDS(ctx, s.EmployeeID, b.GrossSalary)
	b.TotalDeductions = b.PFDeduction.Add(b.ProfessionalTax).Add(b.ESI).Add(b.TDS)
	b.NetSalary = b.GrossSalary.Sub(b.TotalDeductions)

	return b
}

func (c *Calculator) monthlyTDS(ctx context.Context, employeeID string, gross decimal.Decimal) decimal.Decimal {
	annual, err := c.oracle.AnnualTax(ctx, gross.Mul(monthsPerYear))
	if err != nil {
		slog.Warn("tax oracle failed, withholding no TDS",
			"employee_id", employeeID,
			"gross_salary", gross.StringFixed(2),
			"error", err,
		)
		return decimal.Zero
	}
	return annual.Div(monthsPerYear).Round(2)
}
