package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStructure is one version of an employee's pay components. A nil
// EffectiveTo marks the currently open version.
type SalaryStructure struct {
	ID               string
	EmployeeID       string
	BasicSalary      decimal.Decimal
	HRA              decimal.Decimal
	DA               decimal.Decimal
	TA               decimal.Decimal
	MedicalAllowance decimal.Decimal
	SpecialAllowance decimal.Decimal
	PFDeduction      decimal.Decimal
	ProfessionalTax  decimal.Decimal
	ESI              decimal.Decimal
	EffectiveFrom    time.Time
	EffectiveTo      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Allowances is the full-month sum of HRA, DA, TA, medical and special allowances.
func (s SalaryStructure) Allowances() decimal.Decimal {
	return s.HRA.Add(s.DA).Add(s.TA).Add(s.MedicalAllowance).Add(s.SpecialAllowance)
}

func (s SalaryStructure) MonthlyGross() decimal.Decimal {
	return s.BasicSalary.Add(s.Allowances())
}

// FixedDeductions is PF + professional tax + ESI.
func (s SalaryStructure) FixedDeductions() decimal.Decimal {
	return s.PFDeduction.Add(s.ProfessionalTax).Add(s.ESI)
}

func (s SalaryStructure) IsOpen() bool {
	return s.EffectiveTo == nil
}

// CoversDate reports whether the version is in effect on day.
func (s SalaryStructure) CoversDate(day time.Time) bool {
	if s.EffectiveFrom.After(day) {
		return false
	}
	return s.EffectiveTo == nil || !s.EffectiveTo.Before(day)
}

// SelectEffective picks the version in effect on day: the latest EffectiveFrom
// not after day among versions whose EffectiveTo is nil or not before day.
func SelectEffective(versions []SalaryStructure, day time.Time) (SalaryStructure, bool) {
	var (
		best  SalaryStructure
		found bool
	)
	for _, v := range versions {
		if !v.CoversDate(day) {
			continue
		}
		if !found || v.EffectiveFrom.After(best.EffectiveFrom) {
			best, found = v, true
		}
	}
	return best, found
}
