package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	GeneratePayrollSummary(ctx context.Context, req PayrollSummaryRequest) (PayrollSummaryReport, error)
	GenerateDepartmentReport(ctx context.Context, req DepartmentReportRequest) (DepartmentReport, error)
	GenerateAttendanceSummary(ctx context.Context, req AttendanceSummaryRequest) (AttendanceSummaryReport, error)
	GenerateLeaveSummary(ctx context.Context, req YearRequest) (LeaveSummaryReport, error)
	GenerateTaxReport(ctx context.Context, req YearRequest) (TaxReport, error)
}
