package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

type AttendanceRepository interface {
	// Upsert inserts or replaces the row for (employee, date).
	Upsert(ctx context.Context, a Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	Update(ctx context.Context, req UpdateAttendanceRequest) error
	// ListByEmployee returns the employee's rows, restricted to month when it is non-nil, newest first.
	ListByEmployee(ctx context.Context, employeeID string, month *period.Month) ([]Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]Attendance, error)
	// MonthlySummary aggregates one employee's rows for month; no rows yields zeros.
	MonthlySummary(ctx context.Context, employeeID string, month period.Month) (MonthlySummary, error)
}
