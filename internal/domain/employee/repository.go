package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	// ListActive returns active employees ordered by name.
	ListActive(ctx context.Context) ([]Employee, error)
	// ListByIDs returns the given employees regardless of status, ordered by name.
	ListByIDs(ctx context.Context, ids []string) ([]Employee, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) error
	Deactivate(ctx context.Context, id string) error
}
