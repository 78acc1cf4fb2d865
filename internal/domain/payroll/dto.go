package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ProcessPayrollRequest struct {
	Month       string   `json:"month" validate:"required,yearmonth"`
	EmployeeIDs []string `json:"employee_ids,omitempty" validate:"omitempty,unique,dive,required"`
}

func (r *ProcessPayrollRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type EmployeeResult struct {
	EmployeeID string           `json:"emp_id"`
	Name       string           `json:"name"`
	Status     OutcomeStatus    `json:"status"`
	PayrollID  *string          `json:"payroll_id,omitempty"`
	NetSalary  *decimal.Decimal `json:"net_salary,omitempty"`
	Message    *string          `json:"message,omitempty"`
}

type ProcessPayrollResponse struct {
	Month     string           `json:"month"`
	Processed int              `json:"processed"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Cancelled bool             `json:"cancelled"`
	Results   []EmployeeResult `json:"results"`
}

// Add records one result and updates the counters.
func (r *ProcessPayrollResponse) Add(result EmployeeResult) {
	switch result.Status {
	case OutcomeSuccess:
		r.Processed++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeError:
		r.Failed++
	}
	r.Results = append(r.Results, result)
}

func (r ProcessPayrollResponse) Message() string {
	msg := fmt.Sprintf("Payroll processed for %d employees", r.Processed)
	if r.Cancelled {
		msg += " (cancelled before completion)"
	}
	return msg
}

type RecordResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     *string         `json:"employee_name,omitempty"`
	Department       *string         `json:"department,omitempty"`
	Month            string          `json:"month"`
	BasicSalary      decimal.Decimal `json:"basic_salary"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	MedicalAllowance decimal.Decimal `json:"medical_allowance"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	TotalAllowances  decimal.Decimal `json:"total_allowances"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	PFDeduction      decimal.Decimal `json:"pf_deduction"`
	ProfessionalTax  decimal.Decimal `json:"professional_tax"`
	ESI              decimal.Decimal `json:"esi"`
	TDS              decimal.Decimal `json:"tds"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	DaysPresent      int             `json:"days_present"`
	DaysAbsent       int             `json:"days_absent"`
	DaysHalf         int             `json:"days_half"`
	DaysLeave        int             `json:"days_leave"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
	WorkingDays      int             `json:"working_days"`
	PayslipPath      *string         `json:"payslip_path,omitempty"`
	ProcessedAt      string          `json:"processed_at"`
}

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		Department:       r.Department,
		Month:            r.Month,
		BasicSalary:      r.BasicSalary,
		HRA:              r.HRA,
		DA:               r.DA,
		TA:               r.TA,
		MedicalAllowance: r.MedicalAllowance,
		SpecialAllowance: r.SpecialAllowance,
		OvertimePay:      r.OvertimePay,
		TotalAllowances:  r.TotalAllowances,
		GrossSalary:      r.GrossSalary,
		PFDeduction:      r.PFDeduction,
		ProfessionalTax:  r.ProfessionalTax,
		ESI:              r.ESI,
		TDS:              r.TDS,
		TotalDeductions:  r.TotalDeductions,
		NetSalary:        r.NetSalary,
		DaysPresent:      r.DaysPresent,
		DaysAbsent:       r.DaysAbsent,
		DaysHalf:         r.DaysHalf,
		DaysLeave:        r.DaysLeave,
		OvertimeHours:    r.OvertimeHours,
		WorkingDays:      r.WorkingDays,
		PayslipPath:      r.PayslipPath,
		ProcessedAt:      r.ProcessedAt.Format(time.RFC3339),
	}
}

type MonthSummary struct {
	TotalEmployees  int             `json:"total_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalTDS        decimal.Decimal `json:"total_tds"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

func Summarize(records []Record) MonthSummary {
	s := MonthSummary{
		TotalEmployees:  len(records),
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalTDS:        decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	for _, r := range records {
		s.TotalGross = s.TotalGross.Add(r.GrossSalary)
		s.TotalDeductions = s.TotalDeductions.Add(r.TotalDeductions)
		s.TotalTDS = s.TotalTDS.Add(r.TDS)
		s.TotalNet = s.TotalNet.Add(r.NetSalary)
	}
	return s
}

type MonthPayrollResponse struct {
	Month   string           `json:"month"`
	Records []RecordResponse `json:"records"`
	Summary MonthSummary     `json:"summary"`
}

type EmployeePayrollFilter struct {
	Year  *int
	Limit int
}

func (f *EmployeePayrollFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Limit == 0 {
		f.Limit = 12
	}
	if f.Limit < 1 || f.Limit > 120 {
		errs.Add("limit", "limit must be between 1 and 120")
	}
	if f.Year != nil && (*f.Year < 2000 || *f.Year > 9999) {
		errs.Add("year", "year must be a four-digit year")
	}
	return errs.OrNil()
}
