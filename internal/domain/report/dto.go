package report

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	minYear = 2000
	maxYear = 9999
)

func validYear(y int) bool {
	return y >= minYear && y <= maxYear
}

// ========================================
// PAYROLL SUMMARY REPORT
// ========================================

type PayrollSummaryRequest struct {
	StartMonth string `json:"startMonth" validate:"omitempty,yearmonth"`
	EndMonth   string `json:"endMonth" validate:"omitempty,yearmonth"`
}

func (r *PayrollSummaryRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) == 0 && r.StartMonth != "" && r.EndMonth != "" && r.EndMonth < r.StartMonth {
		errs.Add("endMonth", "endMonth must not be before startMonth")
	}
	return errs.OrNil()
}

// PayrollSummaryRow aggregates one processed month.
type PayrollSummaryRow struct {
	Month           string          `json:"month"`
	EmployeeCount   int             `json:"employee_count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalTDS        decimal.Decimal `json:"total_tds"`
	TotalPF         decimal.Decimal `json:"total_pf"`
}

// PayrollTotals spans the whole requested range. UniqueEmployees counts
// people, not payroll rows.
type PayrollTotals struct {
	UniqueEmployees int             `json:"unique_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalTDS        decimal.Decimal `json:"total_tds"`
	TotalPF         decimal.Decimal `json:"total_pf"`
}

type PayrollSummaryReport struct {
	StartMonth  *string             `json:"start_month"`
	EndMonth    *string             `json:"end_month"`
	GeneratedAt string              `json:"generated_at"`
	Months      []PayrollSummaryRow `json:"months"`
	Totals      PayrollTotals       `json:"totals"`
}

// ========================================
// DEPARTMENT-WISE REPORT
// ========================================

type DepartmentReportRequest struct {
	Month string `json:"month" validate:"omitempty,yearmonth"`
}

func (r *DepartmentReportRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

// DepartmentRow covers active employees of one department. Employees without
// a payroll row for the month count toward EmployeeCount only.
type DepartmentRow struct {
	Department      string          `json:"department"`
	EmployeeCount   int             `json:"employee_count"`
	ProcessedCount  int             `json:"processed_count"`
	AvgGross        decimal.Decimal `json:"avg_gross"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

type DepartmentReport struct {
	Month       string          `json:"month"`
	GeneratedAt string          `json:"generated_at"`
	Departments []DepartmentRow `json:"departments"`
}

// ========================================
// ATTENDANCE SUMMARY REPORT
// ========================================

// AttendanceSummaryRequest takes month and year together; both empty means
// all recorded attendance.
type AttendanceSummaryRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *AttendanceSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month == 0 && r.Year == 0 {
		return nil
	}
	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 9999")
	}
	return errs.OrNil()
}

// Period returns the requested month, or false when the report is unbounded.
func (r AttendanceSummaryRequest) Period() (period.Month, bool) {
	if r.Month == 0 && r.Year == 0 {
		return period.Month{}, false
	}
	m, err := period.NewMonth(r.Year, time.Month(r.Month))
	if err != nil {
		return period.Month{}, false
	}
	return m, true
}

type AttendanceSummaryRow struct {
	EmployeeID  string          `json:"emp_id"`
	Name        string          `json:"name"`
	Department  string          `json:"department"`
	Designation string          `json:"designation"`
	TotalDays   int             `json:"total_days"`
	PresentDays int             `json:"present_days"`
	AbsentDays  int             `json:"absent_days"`
	HalfDays    int             `json:"half_days"`
	LeaveDays   int             `json:"leave_days"`
	TotalHours  decimal.Decimal `json:"total_hours"`
}

type AttendanceSummaryReport struct {
	Month       *string                `json:"month"`
	GeneratedAt string                 `json:"generated_at"`
	Employees   []AttendanceSummaryRow `json:"employees"`
}

// ========================================
// LEAVE SUMMARY REPORT
// ========================================

// YearRequest is shared by the leave summary and tax reports. Zero means the
// current year.
type YearRequest struct {
	Year int `json:"year"`
}

func (r *YearRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Year != 0 && !validYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 9999")
	}
	return errs.OrNil()
}

// LeaveSummaryRow is zero-filled for employees without a balance row.
type LeaveSummaryRow struct {
	EmployeeID      string `json:"emp_id"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	CasualTotal     int    `json:"casual_leave"`
	CasualUsed      int    `json:"casual_used"`
	CasualRemaining int    `json:"casual_remaining"`
	SickTotal       int    `json:"sick_leave"`
	SickUsed        int    `json:"sick_used"`
	SickRemaining   int    `json:"sick_remaining"`
	EarnedTotal     int    `json:"earned_leave"`
	EarnedUsed      int    `json:"earned_used"`
	EarnedRemaining int    `json:"earned_remaining"`
}

type LeaveSummaryReport struct {
	Year        int               `json:"year"`
	GeneratedAt string            `json:"generated_at"`
	Employees   []LeaveSummaryRow `json:"employees"`
}

// ========================================
// TAX REPORT
// ========================================

type TaxReportRow struct {
	EmployeeID  string          `json:"emp_id"`
	Name        string          `json:"name"`
	PANNumber   *string         `json:"pan_number"`
	Department  string          `json:"department"`
	Months      int             `json:"months"`
	AnnualGross decimal.Decimal `json:"annual_gross"`
	AnnualTDS   decimal.Decimal `json:"annual_tds"`
	AnnualPF    decimal.Decimal `json:"annual_pf"`
	AnnualPT    decimal.Decimal `json:"annual_pt"`
}

type TaxReport struct {
	Year        int             `json:"year"`
	GeneratedAt string          `json:"generated_at"`
	Employees   []TaxReportRow  `json:"employees"`
	TotalTDS    decimal.Decimal `json:"total_tds"`
}
