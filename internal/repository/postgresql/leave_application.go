package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveApplicationColumns = `la.id, la.employee_id, la.leave_type, la.from_date, la.to_date, la.total_days,
	la.reason, la.status, la.approved_by, la.decided_at, la.comments, la.applied_at, e.name, e.email`

const leaveApplicationFrom = `FROM leave_applications la JOIN employees e ON e.id = la.employee_id`

func scanLeaveApplication(row pgx.Row) (leave.Application, error) {
	var a leave.Application
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.LeaveType, &a.FromDate, &a.ToDate, &a.TotalDays,
		&a.Reason, &a.Status, &a.ApprovedBy, &a.DecidedAt, &a.Comments, &a.AppliedAt,
		&a.EmployeeName, &a.EmployeeEmail,
	)
	return a, err
}

func (r *leaveApplicationRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+leaveApplicationColumns+` `+leaveApplicationFrom+` WHERE `+where+` ORDER BY la.applied_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	var out []leave.Application
	for rows.Next() {
		a, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, a leave.Application) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (id, employee_id, leave_type, from_date, to_date, total_days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING id
	`
	var id string
	if err := q.QueryRow(ctx, query, newID(), a.EmployeeID, a.LeaveType, a.FromDate, a.ToDate, a.TotalDays, a.Reason).Scan(&id); err != nil {
		return leave.Application{}, fmt.Errorf("failed to create leave application: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + ` ` + leaveApplicationFrom + ` WHERE la.id = $1`
	if _, inTx := ctx.Value(txContextKey).(pgx.Tx); inTx {
		query += ` FOR UPDATE OF la`
	}

	a, err := scanLeaveApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Application{}, leave.ErrLeaveApplicationNotFound
		}
		return leave.Application{}, fmt.Errorf("failed to get leave application %s: %w", id, err)
	}
	return a, nil
}

// ListByEmployee implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Application, error) {
	return r.list(ctx, "la.employee_id = $1", employeeID)
}

// ListPending implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListPending(ctx context.Context) ([]leave.Application, error) {
	return r.list(ctx, "la.status = 'pending'")
}

// Decide implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Decide(ctx context.Context, id string, status leave.Status, approverID *string, decidedAt time.Time, comments *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_applications
		SET status = $1, approved_by = $2, decided_at = $3, comments = $4
		WHERE id = $5 AND status = 'pending'
	`, status, approverID, decidedAt, comments, id)
	if err != nil {
		return fmt.Errorf("failed to update leave application %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveAlreadyProcessed
	}
	return nil
}
