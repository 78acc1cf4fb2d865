package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees lists employees with filters (hr+ only)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee by ID (hr+ or the employee)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee creates the employee, its login user and the current year's leave balance
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (CreateEmployeeResponse, error)

	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee soft deletes an employee (admin only)
	DeleteEmployee(ctx context.Context, id string) error
}
