package salary

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateSalaryStructureRequest struct {
	EmployeeID       string          `json:"employee_id" validate:"required"`
	BasicSalary      decimal.Decimal `json:"basic_salary" validate:"decimal_gte0"`
	HRA              decimal.Decimal `json:"hra" validate:"decimal_gte0"`
	DA               decimal.Decimal `json:"da" validate:"decimal_gte0"`
	TA               decimal.Decimal `json:"ta" validate:"decimal_gte0"`
	MedicalAllowance decimal.Decimal `json:"medical_allowance" validate:"decimal_gte0"`
	SpecialAllowance decimal.Decimal `json:"special_allowance" validate:"decimal_gte0"`
	PFDeduction      decimal.Decimal `json:"pf_deduction" validate:"decimal_gte0"`
	ProfessionalTax  decimal.Decimal `json:"professional_tax" validate:"decimal_gte0"`
	ESI              decimal.Decimal `json:"esi" validate:"decimal_gte0"`
	EffectiveFrom    string          `json:"effective_from" validate:"required,datetime=2006-01-02"`
}

func (r *CreateSalaryStructureRequest) Validate() error {
	errs := validator.Struct(r)
	if !r.BasicSalary.IsPositive() {
		errs.Add("basic_salary", "basic_salary must be greater than 0")
	}
	return errs.OrNil()
}

type UpdateSalaryStructureRequest struct {
	ID               string           `json:"-"`
	BasicSalary      *decimal.Decimal `json:"basic_salary,omitempty" validate:"omitempty,decimal_gte0"`
	HRA              *decimal.Decimal `json:"hra,omitempty" validate:"omitempty,decimal_gte0"`
	DA               *decimal.Decimal `json:"da,omitempty" validate:"omitempty,decimal_gte0"`
	TA               *decimal.Decimal `json:"ta,omitempty" validate:"omitempty,decimal_gte0"`
	MedicalAllowance *decimal.Decimal `json:"medical_allowance,omitempty" validate:"omitempty,decimal_gte0"`
	SpecialAllowance *decimal.Decimal `json:"special_allowance,omitempty" validate:"omitempty,decimal_gte0"`
	PFDeduction      *decimal.Decimal `json:"pf_deduction,omitempty" validate:"omitempty,decimal_gte0"`
	ProfessionalTax  *decimal.Decimal `json:"professional_tax,omitempty" validate:"omitempty,decimal_gte0"`
	ESI              *decimal.Decimal `json:"esi,omitempty" validate:"omitempty,decimal_gte0"`
}

func (r *UpdateSalaryStructureRequest) Validate() error {
	errs := validator.Struct(r)
	if r.BasicSalary != nil && !r.BasicSalary.IsPositive() {
		errs.Add("basic_salary", "basic_salary must be greater than 0")
	}
	return errs.OrNil()
}

func (r *UpdateSalaryStructureRequest) IsEmpty() bool {
	return r.BasicSalary == nil && r.HRA == nil && r.DA == nil && r.TA == nil &&
		r.MedicalAllowance == nil && r.SpecialAllowance == nil &&
		r.PFDeduction == nil && r.ProfessionalTax == nil && r.ESI == nil
}

type SalaryStructureResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	BasicSalary      decimal.Decimal `json:"basic_salary"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	MedicalAllowance decimal.Decimal `json:"medical_allowance"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`
	PFDeduction      decimal.Decimal `json:"pf_deduction"`
	ProfessionalTax  decimal.Decimal `json:"professional_tax"`
	ESI              decimal.Decimal `json:"esi"`
	EffectiveFrom    string          `json:"effective_from"`
	EffectiveTo      *string         `json:"effective_to,omitempty"`
}

// CurrentSalaryResponse adds the full-month figures of the version in effect.
type CurrentSalaryResponse struct {
	SalaryStructureResponse
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
}

func NewSalaryStructureResponse(s SalaryStructure) SalaryStructureResponse {
	resp := SalaryStructureResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		BasicSalary:      s.BasicSalary,
		HRA:              s.HRA,
		DA:               s.DA,
		TA:               s.TA,
		MedicalAllowance: s.MedicalAllowance,
		SpecialAllowance: s.SpecialAllowance,
		PFDeduction:      s.PFDeduction,
		ProfessionalTax:  s.ProfessionalTax,
		ESI:              s.ESI,
		EffectiveFrom:    s.EffectiveFrom.Format("2006-01-02"),
	}
	if s.EffectiveTo != nil {
		to := s.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	return resp
}

func NewCurrentSalaryResponse(s SalaryStructure) CurrentSalaryResponse {
	gross := s.MonthlyGross()
	deductions := s.FixedDeductions()
	return CurrentSalaryResponse{
		SalaryStructureResponse: NewSalaryStructureResponse(s),
		GrossSalary:             gross,
		TotalDeductions:         deductions,
		NetSalary:               gross.Sub(deductions),
	}
}

// ParseDate parses "YYYY-MM-DD" as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
