package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetEmployeeStats returns total, active, inactive and new hires in a single query
func (r *dashboardRepositoryImpl) GetEmployeeStats(ctx context.Context, from, to time.Time) (dashboard.EmployeeStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'inactive'),
			COUNT(*) FILTER (WHERE join_date >= $1 AND join_date < $2)
		FROM employees
	`

	var stats dashboard.EmployeeStats
	err := q.QueryRow(ctx, query, from, to).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.New)
	if err != nil {
		return dashboard.EmployeeStats{}, fmt.Errorf("failed to get employee stats: %w", err)
	}
	return stats, nil
}

// GetPayrollStats sums the month's payroll and counts active employees left out
func (r *dashboardRepositoryImpl) GetPayrollStats(ctx context.Context, month string) (dashboard.PayrollStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(p.id),
			COUNT(*) FILTER (WHERE p.id IS NULL AND e.status = 'active'),
			COALESCE(SUM(p.gross_salary), 0),
			COALESCE(SUM(p.total_deductions), 0),
			COALESCE(SUM(p.net_salary), 0)
		FROM employees e
		LEFT JOIN payroll_records p ON p.employee_id = e.id AND p.month = $1
	`

	var stats dashboard.PayrollStats
	err := q.QueryRow(ctx, query, month).Scan(
		&stats.Processed, &stats.Unprocessed, &stats.TotalGross, &stats.TotalDeductions, &stats.TotalNet,
	)
	if err != nil {
		return dashboard.PayrollStats{}, fmt.Errorf("failed to get payroll stats: %w", err)
	}
	return stats, nil
}

func (r *dashboardRepositoryImpl) CountPendingLeaves(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_applications WHERE status = 'pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending leaves: %w", err)
	}
	return n, nil
}

// GetAttendanceStats returns present/absent/half_day/leave/unmarked for a day in single query
func (r *dashboardRepositoryImpl) GetAttendanceStats(ctx context.Context, date time.Time) (dashboard.AttendanceStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE a.status = 'present'),
			COUNT(*) FILTER (WHERE a.status = 'absent'),
			COUNT(*) FILTER (WHERE a.status = 'half_day'),
			COUNT(*) FILTER (WHERE a.status = 'leave'),
			COUNT(*) FILTER (WHERE a.id IS NULL)
		FROM employees e
		LEFT JOIN attendance a ON a.employee_id = e.id AND a.date = $1::date
		WHERE e.status = 'active'
	`

	var stats dashboard.AttendanceStats
	err := q.QueryRow(ctx, query, date.Format("2006-01-02")).Scan(
		&stats.Present, &stats.Absent, &stats.HalfDay, &stats.Leave, &stats.Unmarked,
	)
	if err != nil {
		return dashboard.AttendanceStats{}, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	return stats, nil
}
