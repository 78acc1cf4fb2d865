package payroll

import "errors"

var (
	ErrPayrollRecordNotFound = errors.New("payroll record not found")
	ErrPayslipNotGenerated   = errors.New("payslip has not been generated")
	// ErrBatchFailed wraps failures that roll back a whole payroll run.
	ErrBatchFailed = errors.New("payroll batch failed")
)
