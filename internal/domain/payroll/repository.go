package payroll

import "context"

type PayrollRepository interface {
	// Upsert writes r keyed by (EmployeeID, Month), replacing every computed
	// field of an existing row, and returns the row ID.
	Upsert(ctx context.Context, r Record) (string, error)
	GetByID(ctx context.Context, id string) (Record, error)
	ListByMonth(ctx context.Context, month string) ([]Record, error)
	// ListByEmployee returns newest months first.
	ListByEmployee(ctx context.Context, employeeID string, filter EmployeePayrollFilter) ([]Record, error)
	UpdatePayslipPath(ctx context.Context, id string, path string) error
}
