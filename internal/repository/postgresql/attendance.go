package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `a.id, a.employee_id, a.date, a.status, a.working_hours, a.overtime_hours,
	a.remarks, a.marked_by, a.created_at, a.updated_at, e.name`

const attendanceFrom = `FROM attendance a JOIN employees e ON e.id = a.employee_id`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.Status, &a.WorkingHours, &a.OvertimeHours,
		&a.Remarks, &a.MarkedBy, &a.CreatedAt, &a.UpdatedAt, &a.EmployeeName,
	)
	return a, err
}

func collectAttendance(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (id, employee_id, date, status, working_hours, overtime_hours, remarks, marked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status         = EXCLUDED.status,
			working_hours  = EXCLUDED.working_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			remarks        = EXCLUDED.remarks,
			marked_by      = EXCLUDED.marked_by,
			updated_at     = NOW()
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		newID(), a.EmployeeID, a.Date, a.Status, a.WorkingHours, a.OvertimeHours, a.Remarks, a.MarkedBy,
	).Scan(&id)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance for employee %s: %w", a.EmployeeID, err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+` `+attendanceFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance %s: %w", id, err)
	}
	return a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, req attendance.UpdateAttendanceRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.WorkingHours != nil {
		updates["working_hours"] = *req.WorkingHours
	}
	if req.OvertimeHours != nil {
		updates["overtime_hours"] = *req.OvertimeHours
	}
	if req.Remarks != nil {
		updates["remarks"] = nullIfEmpty(*req.Remarks)
	}

	if len(updates) == 0 {
		return attendance.ErrNoFieldsToUpdate
	}

	sql, args := buildUpdate("attendance", updates, req.ID, "")
	var id string
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance %s: %w", req.ID, err)
	}
	return nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, month *period.Month) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` ` + attendanceFrom + ` WHERE a.employee_id = $1`
	args := []interface{}{employeeID}
	if month != nil {
		query += ` AND a.date BETWEEN $2 AND $3`
		args = append(args, month.FirstDay(), month.LastDay())
	}
	query += ` ORDER BY a.date DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for employee %s: %w", employeeID, err)
	}
	return collectAttendance(rows)
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+attendanceColumns+` `+attendanceFrom+` WHERE a.date = $1 ORDER BY e.name ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date.Format("2006-01-02"), err)
	}
	return collectAttendance(rows)
}

// MonthlySummary implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) MonthlySummary(ctx context.Context, employeeID string, month period.Month) (attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE status = 'half_day'),
			COUNT(*) FILTER (WHERE status = 'leave'),
			COALESCE(SUM(overtime_hours), 0),
			COALESCE(SUM(working_hours), 0)
		FROM attendance
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
	`

	var s attendance.MonthlySummary
	err := q.QueryRow(ctx, query, employeeID, month.FirstDay(), month.LastDay()).Scan(
		&s.DaysPresent, &s.DaysAbsent, &s.DaysHalf, &s.DaysLeave, &s.OvertimeHours, &s.TotalHours,
	)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to summarize attendance for employee %s: %w", employeeID, err)
	}
	return s, nil
}
