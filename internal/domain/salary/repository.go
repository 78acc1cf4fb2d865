package salary

import (
	"context"
	"time"
)

type SalaryRepository interface {
	Create(ctx context.Context, s SalaryStructure) (SalaryStructure, error)
	GetByID(ctx context.Context, id string) (SalaryStructure, error)
	// GetOpen returns the version with no end date, or ErrSalaryStructureNotFound.
	GetOpen(ctx context.Context, employeeID string) (SalaryStructure, error)
	// GetEffective returns the version in effect on day, or ErrSalaryStructureNotFound.
	GetEffective(ctx context.Context, employeeID string, day time.Time) (SalaryStructure, error)
	// ListByEmployee returns all versions ordered by effective_from descending.
	ListByEmployee(ctx context.Context, employeeID string) ([]SalaryStructure, error)
	Update(ctx context.Context, req UpdateSalaryStructureRequest) error
	Close(ctx context.Context, id string, effectiveTo time.Time) error
}
