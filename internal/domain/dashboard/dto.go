package dashboard

import "github.com/shopspring/decimal"

// DashboardResponse is the combined response for the main dashboard endpoint
type DashboardResponse struct {
	Month       string                  `json:"month"`
	GeneratedAt string                  `json:"generated_at"`
	Employees   EmployeeSummaryResponse `json:"employees"`
	Payroll     PayrollSummaryResponse  `json:"payroll"`
	Leave       LeaveSummaryResponse    `json:"leave"`
	Attendance  AttendanceTodayResponse `json:"attendance_today"`
}

// ========== EMPLOYEES ==========

type EmployeeSummaryResponse struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	NewHires int64 `json:"new_hires"` // joined within the month
}

// ========== PAYROLL ==========

// PayrollSummaryResponse covers the requested month. Unprocessed counts active
// employees without a payroll row.
type PayrollSummaryResponse struct {
	Processed       int64           `json:"processed"`
	Unprocessed     int64           `json:"unprocessed"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

// ========== LEAVE ==========

type LeaveSummaryResponse struct {
	Pending int64 `json:"pending"`
}

// ========== ATTENDANCE ==========

type AttendanceTodayResponse struct {
	Date     string `json:"date"` // Format: "YYYY-MM-DD"
	Present  int64  `json:"present"`
	Absent   int64  `json:"absent"`
	HalfDay  int64  `json:"half_day"`
	OnLeave  int64  `json:"on_leave"`
	Unmarked int64  `json:"unmarked"`
}
