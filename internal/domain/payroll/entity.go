package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy is the pay policy applied by the calculator.
type Policy struct {
	WorkingDays        int
	HoursPerDay        int
	OvertimeMultiplier decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		WorkingDays:        30,
		HoursPerDay:        8,
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
	}
}

// Breakdown is one employee's computed pay for one month. Every amount is
// rounded to cents, and the totals are sums of the rounded parts.
type Breakdown struct {
	BasicSalary      decimal.Decimal
	HRA              decimal.Decimal
	DA               decimal.Decimal
	TA               decimal.Decimal
	MedicalAllowance decimal.Decimal
	SpecialAllowance decimal.Decimal
	OvertimePay      decimal.Decimal
	TotalAllowances  decimal.Decimal
	GrossSalary      decimal.Decimal

	PFDeduction     decimal.Decimal
	ProfessionalTax decimal.Decimal
	ESI             decimal.Decimal
	TDS             decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	DaysPresent   int
	DaysAbsent    int
	DaysHalf      int
	DaysLeave     int
	OvertimeHours decimal.Decimal
	WorkingDays   int
}

// Record is the stored payroll row, unique per (EmployeeID, Month).
type Record struct {
	ID         string
	EmployeeID string
	Month      string
	Breakdown
	PayslipPath *string
	ProcessedBy *string
	ProcessedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	EmployeeName *string
	Department   *string
}

// OutcomeStatus tags one employee's result within a batch.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeError   OutcomeStatus = "error"
)
