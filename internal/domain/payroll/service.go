package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// ProcessPayroll computes and stores the month's payroll for the requested
	// (or all active) employees, then delivers payslips best-effort.
	ProcessPayroll(ctx context.Context, req ProcessPayrollRequest) (ProcessPayrollResponse, error)
	GetMonthPayroll(ctx context.Context, month string) (MonthPayrollResponse, error)
	GetEmployeePayroll(ctx context.Context, employeeID string, filter EmployeePayrollFilter) ([]RecordResponse, error)
	GetPayslip(ctx context.Context, id string) (RecordResponse, error)
	DownloadPayslip(ctx context.Context, id string) (content io.ReadCloser, filename string, err error)
	// RegeneratePayslip re-renders the document and re-sends the email.
	RegeneratePayslip(ctx context.Context, id string) (RecordResponse, error)
}
