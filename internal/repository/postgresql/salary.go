package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepositoryImpl{db: db}
}

const salaryColumns = `id, employee_id, basic_salary, hra, da, ta, medical_allowance, special_allowance,
	pf_deduction, professional_tax, esi, effective_from, effective_to, created_at, updated_at`

func scanSalary(row pgx.Row) (salary.SalaryStructure, error) {
	var s salary.SalaryStructure
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.BasicSalary, &s.HRA, &s.DA, &s.TA, &s.MedicalAllowance, &s.SpecialAllowance,
		&s.PFDeduction, &s.ProfessionalTax, &s.ESI, &s.EffectiveFrom, &s.EffectiveTo, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *salaryRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSalary(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryStructure{}, salary.ErrSalaryStructureNotFound
		}
		return salary.SalaryStructure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}
	return s, nil
}

// Create implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) Create(ctx context.Context, s salary.SalaryStructure) (salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_structures (
			id, employee_id, basic_salary, hra, da, ta, medical_allowance, special_allowance,
			pf_deduction, professional_tax, esi, effective_from, effective_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + salaryColumns

	created, err := scanSalary(q.QueryRow(ctx, query,
		newID(), s.EmployeeID, s.BasicSalary, s.HRA, s.DA, s.TA, s.MedicalAllowance, s.SpecialAllowance,
		s.PFDeduction, s.ProfessionalTax, s.ESI, s.EffectiveFrom, s.EffectiveTo,
	))
	if err != nil {
		if isExclusionViolation(err, "ex_salary_structures_no_overlap") {
			return salary.SalaryStructure{}, salary.ErrOverlapsPrevious
		}
		return salary.SalaryStructure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}
	return created, nil
}

// GetByID implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) GetByID(ctx context.Context, id string) (salary.SalaryStructure, error) {
	return r.getOne(ctx, `SELECT `+salaryColumns+` FROM salary_structures WHERE id = $1`, id)
}

// GetOpen implements salary.SalaryRepository. The row is locked so a
// concurrent version change waits.
func (r *salaryRepositoryImpl) GetOpen(ctx context.Context, employeeID string) (salary.SalaryStructure, error) {
	return r.getOne(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_structures
		WHERE employee_id = $1 AND effective_to IS NULL
		FOR UPDATE
	`, employeeID)
}

// GetEffective implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) GetEffective(ctx context.Context, employeeID string, day time.Time) (salary.SalaryStructure, error) {
	return r.getOne(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_structures
		WHERE employee_id = $1
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY effective_from DESC
		LIMIT 1
	`, employeeID, day)
}

// ListByEmployee implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_structures
		WHERE employee_id = $1
		ORDER BY effective_from DESC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	var out []salary.SalaryStructure
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) Update(ctx context.Context, req salary.UpdateSalaryStructureRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.BasicSalary != nil {
		updates["basic_salary"] = *req.BasicSalary
	}
	if req.HRA != nil {
		updates["hra"] = *req.HRA
	}
	if req.DA != nil {
		updates["da"] = *req.DA
	}
	if req.TA != nil {
		updates["ta"] = *req.TA
	}
	if req.MedicalAllowance != nil {
		updates["medical_allowance"] = *req.MedicalAllowance
	}
	if req.SpecialAllowance != nil {
		updates["special_allowance"] = *req.SpecialAllowance
	}
	if req.PFDeduction != nil {
		updates["pf_deduction"] = *req.PFDeduction
	}
	if req.ProfessionalTax != nil {
		updates["professional_tax"] = *req.ProfessionalTax
	}
	if req.ESI != nil {
		updates["esi"] = *req.ESI
	}

	if len(updates) == 0 {
		return salary.ErrNoFieldsToUpdate
	}

	sql, args := buildUpdate("salary_structures", updates, req.ID, "")
	var id string
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return salary.ErrSalaryStructureNotFound
		}
		return fmt.Errorf("failed to update salary structure %s: %w", req.ID, err)
	}
	return nil
}

// Close implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) Close(ctx context.Context, id string, effectiveTo time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE salary_structures
		SET effective_to = $1, updated_at = NOW()
		WHERE id = $2 AND effective_to IS NULL
	`, effectiveTo, id)
	if err != nil {
		return fmt.Errorf("failed to close salary structure %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrStructureAlreadyClosed
	}
	return nil
}
