package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// monthRange appends optional month bounds to a WHERE clause over p.month.
func monthRange(where string, args []interface{}, startMonth, endMonth string) (string, []interface{}) {
	if startMonth != "" {
		args = append(args, startMonth)
		where += fmt.Sprintf(" AND p.month >= $%d", len(args))
	}
	if endMonth != "" {
		args = append(args, endMonth)
		where += fmt.Sprintf(" AND p.month <= $%d", len(args))
	}
	return where, args
}

// PayrollSummary implements report.ReportRepository.
func (r *reportRepositoryImpl) PayrollSummary(ctx context.Context, startMonth, endMonth string) ([]report.PayrollSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	where, args := monthRange("WHERE 1=1", nil, startMonth, endMonth)
	query := `
		SELECT
			p.month,
			COUNT(*),
			COALESCE(SUM(p.gross_salary), 0),
			COALESCE(SUM(p.total_deductions), 0),
			COALESCE(SUM(p.net_salary), 0),
			COALESCE(SUM(p.tds), 0),
			COALESCE(SUM(p.pf_deduction), 0)
		FROM payroll_records p
		` + where + `
		GROUP BY p.month
		ORDER BY p.month DESC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll summary: %w", err)
	}
	defer rows.Close()

	var out []report.PayrollSummaryRow
	for rows.Next() {
		var row report.PayrollSummaryRow
		if err := rows.Scan(&row.Month, &row.EmployeeCount, &row.TotalGross, &row.TotalDeductions,
			&row.TotalNet, &row.TotalTDS, &row.TotalPF); err != nil {
			return nil, fmt.Errorf("failed to scan payroll summary: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PayrollTotals implements report.ReportRepository.
func (r *reportRepositoryImpl) PayrollTotals(ctx context.Context, startMonth, endMonth string) (report.PayrollTotals, error) {
	q := GetQuerier(ctx, r.db)

	where, args := monthRange("WHERE 1=1", nil, startMonth, endMonth)
	query := `
		SELECT
			COUNT(DISTINCT p.employee_id),
			COALESCE(SUM(p.gross_salary), 0),
			COALESCE(SUM(p.total_deductions), 0),
			COALESCE(SUM(p.net_salary), 0),
			COALESCE(SUM(p.tds), 0),
			COALESCE(SUM(p.pf_deduction), 0)
		FROM payroll_records p
		` + where

	var t report.PayrollTotals
	err := q.QueryRow(ctx, query, args...).Scan(&t.UniqueEmployees, &t.TotalGross, &t.TotalDeductions,
		&t.TotalNet, &t.TotalTDS, &t.TotalPF)
	if err != nil {
		return report.PayrollTotals{}, fmt.Errorf("failed to query payroll totals: %w", err)
	}
	return t, nil
}

// DepartmentWise implements report.ReportRepository.
func (r *reportRepositoryImpl) DepartmentWise(ctx context.Context, month string) ([]report.DepartmentRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.department,
			COUNT(DISTINCT e.id),
			COUNT(p.id),
			COALESCE(ROUND(AVG(p.gross_salary), 2), 0),
			COALESCE(SUM(p.gross_salary), 0),
			COALESCE(SUM(p.total_deductions), 0),
			COALESCE(SUM(p.net_salary), 0)
		FROM employees e
		LEFT JOIN payroll_records p ON p.employee_id = e.id AND p.month = $1
		WHERE e.status = 'active'
		GROUP BY e.department
		ORDER BY 5 DESC, e.department ASC
	`

	rows, err := q.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query department report: %w", err)
	}
	defer rows.Close()

	var out []report.DepartmentRow
	for rows.Next() {
		var row report.DepartmentRow
		if err := rows.Scan(&row.Department, &row.EmployeeCount, &row.ProcessedCount, &row.AvgGross,
			&row.TotalGross, &row.TotalDeductions, &row.TotalNet); err != nil {
			return nil, fmt.Errorf("failed to scan department report: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AttendanceSummary implements report.ReportRepository. The date filter sits
// in the join so employees with no attendance still appear.
func (r *reportRepositoryImpl) AttendanceSummary(ctx context.Context, from, to string) ([]report.AttendanceSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	join := "LEFT JOIN attendance a ON a.employee_id = e.id"
	var args []interface{}
	if from != "" && to != "" {
		join += " AND a.date BETWEEN $1 AND $2"
		args = append(args, from, to)
	}

	query := `
		SELECT
			e.id, e.name, e.department, e.designation,
			COUNT(a.id),
			COUNT(a.id) FILTER (WHERE a.status = 'present'),
			COUNT(a.id) FILTER (WHERE a.status = 'absent'),
			COUNT(a.id) FILTER (WHERE a.status = 'half_day'),
			COUNT(a.id) FILTER (WHERE a.status = 'leave'),
			COALESCE(SUM(a.working_hours), 0)
		FROM employees e
		` + join + `
		WHERE e.status = 'active'
		GROUP BY e.id
		ORDER BY e.name ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance summary: %w", err)
	}
	defer rows.Close()

	var out []report.AttendanceSummaryRow
	for rows.Next() {
		var row report.AttendanceSummaryRow
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.Department, &row.Designation,
			&row.TotalDays, &row.PresentDays, &row.AbsentDays, &row.HalfDays, &row.LeaveDays,
			&row.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LeaveSummary implements report.ReportRepository.
func (r *reportRepositoryImpl) LeaveSummary(ctx context.Context, year int) ([]report.LeaveSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id, e.name, e.department,
			COALESCE(lb.casual_total, 0), COALESCE(lb.casual_used, 0),
			COALESCE(lb.sick_total, 0), COALESCE(lb.sick_used, 0),
			COALESCE(lb.earned_total, 0), COALESCE(lb.earned_used, 0)
		FROM employees e
		LEFT JOIN leave_balances lb ON lb.employee_id = e.id AND lb.year = $1
		WHERE e.status = 'active'
		ORDER BY e.name ASC
	`

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave summary: %w", err)
	}
	defer rows.Close()

	var out []report.LeaveSummaryRow
	for rows.Next() {
		var row report.LeaveSummaryRow
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.Department,
			&row.CasualTotal, &row.CasualUsed, &row.SickTotal, &row.SickUsed,
			&row.EarnedTotal, &row.EarnedUsed); err != nil {
			return nil, fmt.Errorf("failed to scan leave summary: %w", err)
		}
		row.CasualRemaining = row.CasualTotal - row.CasualUsed
		row.SickRemaining = row.SickTotal - row.SickUsed
		row.EarnedRemaining = row.EarnedTotal - row.EarnedUsed
		out = append(out, row)
	}
	return out, rows.Err()
}

// TaxReport implements report.ReportRepository.
func (r *reportRepositoryImpl) TaxReport(ctx context.Context, year int) ([]report.TaxReportRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id, e.name, e.pan_number, e.department,
			COUNT(p.id),
			SUM(p.gross_salary), SUM(p.tds), SUM(p.pf_deduction), SUM(p.professional_tax)
		FROM employees e
		JOIN payroll_records p ON p.employee_id = e.id
		WHERE p.month LIKE $1
		GROUP BY e.id
		ORDER BY 7 DESC, e.name ASC
	`

	rows, err := q.Query(ctx, query, fmt.Sprintf("%04d-%%", year))
	if err != nil {
		return nil, fmt.Errorf("failed to query tax report: %w", err)
	}
	defer rows.Close()

	var out []report.TaxReportRow
	for rows.Next() {
		var row report.TaxReportRow
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.PANNumber, &row.Department, &row.Months,
			&row.AnnualGross, &row.AnnualTDS, &row.AnnualPF, &row.AnnualPT); err != nil {
			return nil, fmt.Errorf("failed to scan tax report: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
