package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeStats combines all employee counts in a single query
type EmployeeStats struct {
	Total    int64
	Active   int64
	Inactive int64
	New      int64
}

// PayrollStats aggregates one month of payroll rows
type PayrollStats struct {
	Processed       int64
	Unprocessed     int64
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}

// AttendanceStats counts one day's marks for active employees
type AttendanceStats struct {
	Present  int64
	Absent   int64
	HalfDay  int64
	Leave    int64
	Unmarked int64
}

type DashboardRepository interface {
	// GetEmployeeStats counts hires with join_date in [from, to).
	GetEmployeeStats(ctx context.Context, from, to time.Time) (EmployeeStats, error)
	GetPayrollStats(ctx context.Context, month string) (PayrollStats, error)
	CountPendingLeaves(ctx context.Context) (int64, error)
	GetAttendanceStats(ctx context.Context, date time.Time) (AttendanceStats, error)
}
