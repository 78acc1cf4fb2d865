package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `p.id, p.employee_id, p.month,
	p.basic_salary, p.hra, p.da, p.ta, p.medical_allowance, p.special_allowance, p.overtime_pay,
	p.total_allowances, p.gross_salary,
	p.pf_deduction, p.professional_tax, p.esi, p.tds, p.total_deductions, p.net_salary,
	p.days_present, p.days_absent, p.days_half, p.days_leave, p.overtime_hours, p.working_days,
	p.payslip_path, p.processed_by, p.processed_at, p.created_at, p.updated_at,
	e.name, e.department`

const payrollFrom = `FROM payroll_records p JOIN employees e ON e.id = p.employee_id`

func scanPayroll(row pgx.Row) (payroll.Record, error) {
	var r payroll.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Month,
		&r.BasicSalary, &r.HRA, &r.DA, &r.TA, &r.MedicalAllowance, &r.SpecialAllowance, &r.OvertimePay,
		&r.TotalAllowances, &r.GrossSalary,
		&r.PFDeduction, &r.ProfessionalTax, &r.ESI, &r.TDS, &r.TotalDeductions, &r.NetSalary,
		&r.DaysPresent, &r.DaysAbsent, &r.DaysHalf, &r.DaysLeave, &r.OvertimeHours, &r.WorkingDays,
		&r.PayslipPath, &r.ProcessedBy, &r.ProcessedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeName, &r.Department,
	)
	return r, err
}

func collectPayroll(rows pgx.Rows) ([]payroll.Record, error) {
	defer rows.Close()

	var out []payroll.Record
	for rows.Next() {
		r, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert implements payroll.PayrollRepository. Re-processing a month
// overwrites every computed column in place; the payslip path is kept until
// the document is regenerated.
func (r *payrollRepositoryImpl) Upsert(ctx context.Context, rec payroll.Record) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			id, employee_id, month,
			basic_salary, hra, da, ta, medical_allowance, special_allowance, overtime_pay,
			total_allowances, gross_salary,
			pf_deduction, professional_tax, esi, tds, total_deductions, net_salary,
			days_present, days_absent, days_half, days_leave, overtime_hours, working_days,
			processed_by, processed_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8, $9, $10,
			$11, $12,
			$13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24,
			$25, $26
		)
		ON CONFLICT (employee_id, month) DO UPDATE SET
			basic_salary      = EXCLUDED.basic_salary,
			hra               = EXCLUDED.hra,
			da                = EXCLUDED.da,
			ta                = EXCLUDED.ta,
			medical_allowance = EXCLUDED.medical_allowance,
			special_allowance = EXCLUDED.special_allowance,
			overtime_pay      = EXCLUDED.overtime_pay,
			total_allowances  = EXCLUDED.total_allowances,
			gross_salary      = EXCLUDED.gross_salary,
			pf_deduction      = EXCLUDED.pf_deduction,
			professional_tax  = EXCLUDED.professional_tax,
			esi               = EXCLUDED.esi,
			tds               = EXCLUDED.tds,
			total_deductions  = EXCLUDED.total_deductions,
			net_salary        = EXCLUDED.net_salary,
			days_present      = EXCLUDED.days_present,
			days_absent       = EXCLUDED.days_absent,
			days_half         = EXCLUDED.days_half,
			days_leave        = EXCLUDED.days_leave,
			overtime_hours    = EXCLUDED.overtime_hours,
			working_days      = EXCLUDED.working_days,
			processed_by      = EXCLUDED.processed_by,
			processed_at      = EXCLUDED.processed_at,
			updated_at        = NOW()
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		newID(), rec.EmployeeID, rec.Month,
		rec.BasicSalary, rec.HRA, rec.DA, rec.TA, rec.MedicalAllowance, rec.SpecialAllowance, rec.OvertimePay,
		rec.TotalAllowances, rec.GrossSalary,
		rec.PFDeduction, rec.ProfessionalTax, rec.ESI, rec.TDS, rec.TotalDeductions, rec.NetSalary,
		rec.DaysPresent, rec.DaysAbsent, rec.DaysHalf, rec.DaysLeave, rec.OvertimeHours, rec.WorkingDays,
		rec.ProcessedBy, rec.ProcessedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert payroll record for employee %s month %s: %w", rec.EmployeeID, rec.Month, err)
	}
	return id, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanPayroll(q.QueryRow(ctx, `SELECT `+payrollColumns+` `+payrollFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Record{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.Record{}, fmt.Errorf("failed to get payroll record %s: %w", id, err)
	}
	return rec, nil
}

// ListByMonth implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByMonth(ctx context.Context, month string) ([]payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+payrollColumns+` `+payrollFrom+` WHERE p.month = $1 ORDER BY e.name ASC`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll for %s: %w", month, err)
	}
	return collectPayroll(rows)
}

// ListByEmployee implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter payroll.EmployeePayrollFilter) ([]payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` ` + payrollFrom + ` WHERE p.employee_id = $1`
	args := []interface{}{employeeID}
	if filter.Year != nil {
		query += ` AND p.month LIKE $2`
		args = append(args, fmt.Sprintf("%04d-%%", *filter.Year))
	}
	query += fmt.Sprintf(` ORDER BY p.month DESC LIMIT $%d`, len(args)+1)
	args = append(args, filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll for employee %s: %w", employeeID, err)
	}
	return collectPayroll(rows)
}

// UpdatePayslipPath implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) UpdatePayslipPath(ctx context.Context, id string, path string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payroll_records SET payslip_path = $1, updated_at = NOW() WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("failed to update payslip path for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}
	return nil
}
