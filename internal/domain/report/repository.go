package report

import "context"

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// PayrollSummary groups payroll rows by month, newest first. Empty bounds
	// are open.
	PayrollSummary(ctx context.Context, startMonth, endMonth string) ([]PayrollSummaryRow, error)
	PayrollTotals(ctx context.Context, startMonth, endMonth string) (PayrollTotals, error)

	DepartmentWise(ctx context.Context, month string) ([]DepartmentRow, error)

	// AttendanceSummary covers active employees; from and to are inclusive
	// "YYYY-MM-DD" bounds, empty for all dates.
	AttendanceSummary(ctx context.Context, from, to string) ([]AttendanceSummaryRow, error)

	LeaveSummary(ctx context.Context, year int) ([]LeaveSummaryRow, error)
	TaxReport(ctx context.Context, year int) ([]TaxReportRow, error)
}
