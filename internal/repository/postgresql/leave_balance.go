package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `id, employee_id, year, casual_total, casual_used, sick_total, sick_used, earned_total, earned_used`

func scanLeaveBalance(row pgx.Row) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(&b.ID, &b.EmployeeID, &b.Year, &b.CasualTotal, &b.CasualUsed, &b.SickTotal, &b.SickUsed, &b.EarnedTotal, &b.EarnedUsed)
	return b, err
}

// Create implements leave.BalanceRepository. An existing (employee, year)
// row is returned unchanged.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (id, employee_id, year, casual_total, casual_used, sick_total, sick_used, earned_total, earned_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, year) DO NOTHING
	`
	_, err := q.Exec(ctx, query, newID(), b.EmployeeID, b.Year, b.CasualTotal, b.CasualUsed, b.SickTotal, b.SickUsed, b.EarnedTotal, b.EarnedUsed)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return r.Get(ctx, b.EmployeeID, b.Year)
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, employeeID string, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanLeaveBalance(q.QueryRow(ctx,
		`SELECT `+leaveBalanceColumns+` FROM leave_balances WHERE employee_id = $1 AND year = $2`,
		employeeID, year,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Balance{}, leave.ErrLeaveBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// AddUsed implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddUsed(ctx context.Context, employeeID string, year int, leaveType leave.LeaveType, days int) error {
	q := GetQuerier(ctx, r.db)

	var column string
	switch leaveType {
	case leave.LeaveTypeCasual:
		column = "casual_used"
	case leave.LeaveTypeSick:
		column = "sick_used"
	case leave.LeaveTypeEarned:
		column = "earned_used"
	default:
		return nil
	}

	query := fmt.Sprintf(`UPDATE leave_balances SET %s = %s + $1 WHERE employee_id = $2 AND year = $3`, column, column)
	tag, err := q.Exec(ctx, query, days, employeeID, year)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveBalanceNotFound
	}
	return nil
}
