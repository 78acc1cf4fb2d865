package salary

import "context"

type SalaryService interface {
	GetCurrent(ctx context.Context, employeeID string) (CurrentSalaryResponse, error)
	GetHistory(ctx context.Context, employeeID string) ([]SalaryStructureResponse, error)
	// Create closes the employee's open version the day before the new one starts.
	Create(ctx context.Context, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	Update(ctx context.Context, req UpdateSalaryStructureRequest) (SalaryStructureResponse, error)
	// Close ends a version today.
	Close(ctx context.Context, id string) error
}
