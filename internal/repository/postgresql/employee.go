package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, name, email, phone, designation, department, status, join_date,
	bank_account, ifsc_code, pan_number, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.Name, &e.Email, &e.Phone, &e.Designation, &e.Department, &e.Status, &e.JoinDate,
		&e.BankAccount, &e.IFSCCode, &e.PANNumber, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			id, name, email, phone, designation, department, status, join_date,
			bank_account, ifsc_code, pan_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + employeeColumns

	status := newEmployee.Status
	if status == "" {
		status = employee.StatusActive
	}

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newID(),
		newEmployee.Name,
		newEmployee.Email,
		newEmployee.Phone,
		newEmployee.Designation,
		newEmployee.Department,
		status,
		newEmployee.JoinDate,
		newEmployee.BankAccount,
		newEmployee.IFSCCode,
		newEmployee.PANNumber,
	))
	if err != nil {
		if isUniqueViolation(err, "employees_email_key") {
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}
	return e, nil
}

// ExistsByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee email: %w", err)
	}
	return exists, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE conditions
	conditions := []string{"1 = 1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR designation ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	// Main query with pagination
	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		WHERE %s
		ORDER BY name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE status = 'active' ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return collectEmployees(rows)
}

// ListByIDs implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id::text = ANY($1) ORDER BY name ASC, id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by id: %w", err)
	}
	return collectEmployees(rows)
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = nullIfEmpty(*req.Phone)
	}
	if req.Designation != nil {
		updates["designation"] = *req.Designation
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.BankAccount != nil {
		updates["bank_account"] = nullIfEmpty(*req.BankAccount)
	}
	if req.IFSCCode != nil {
		updates["ifsc_code"] = nullIfEmpty(*req.IFSCCode)
	}
	if req.PANNumber != nil {
		updates["pan_number"] = nullIfEmpty(*req.PANNumber)
	}

	if len(updates) == 0 {
		return employee.ErrNoFieldsToUpdate
	}

	sql, args := buildUpdate("employees", updates, req.ID, "")
	var updatedID string
	if err := q.QueryRow(ctx, sql, args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return employee.ErrEmployeeNotFound
		}
		if isUniqueViolation(err, "employees_email_key") {
			return employee.ErrEmailExists
		}
		return fmt.Errorf("failed to update employee with id %s: %w", req.ID, err)
	}
	return nil
}

// Deactivate implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET status = 'inactive', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
