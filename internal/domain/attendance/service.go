package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkAttendance upserts one employee's attendance for a date
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)

	// BulkMarkAttendance upserts several employees for one date in a single transaction
	BulkMarkAttendance(ctx context.Context, req BulkMarkAttendanceRequest) (BulkMarkAttendanceResponse, error)

	// GetEmployeeAttendance lists an employee's records with a summary; month may be empty for all
	GetEmployeeAttendance(ctx context.Context, employeeID string, month string) (EmployeeAttendanceResponse, error)

	GetAttendanceByDate(ctx context.Context, date string) ([]AttendanceResponse, error)

	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
}
