package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	auditsvc "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeSender delivers login details to a newly created employee.
type WelcomeSender interface {
	SendWelcome(to, employeeName, username, password string) error
}

type EmployeeServiceImpl struct {
	tx              database.Transactor
	employeeRepo    employee.EmployeeRepository
	userRepo        user.UserRepository
	balanceRepo     leave.BalanceRepository
	mailer          WelcomeSender
	audit           *auditsvc.Recorder
	defaultPassword string
	now             func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	balanceRepo leave.BalanceRepository,
	mailer WelcomeSender,
	recorder *auditsvc.Recorder,
	defaultPassword string,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:              tx,
		employeeRepo:    employeeRepo,
		userRepo:        userRepo,
		balanceRepo:     balanceRepo,
		mailer:          mailer,
		audit:           recorder,
		defaultPassword: defaultPassword,
		now:             time.Now,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.NewEmployeeResponse(emp))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, id); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// usernameFor derives a free username from the local part of email,
// appending a counter on collision.
func (s *EmployeeServiceImpl) usernameFor(ctx context.Context, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.CreateEmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	exists, err := s.employeeRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return employee.CreateEmployeeResponse{}, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return employee.CreateEmployeeResponse{}, employee.ErrEmailExists
	}

	joinDate, _ := time.Parse("2006-01-02", req.JoinDate)

	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return employee.CreateEmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var (
		created  employee.Employee
		username string
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = s.employeeRepo.Create(txCtx, employee.Employee{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Designation: req.Designation,
			Department:  req.Department,
			Status:      employee.StatusActive,
			JoinDate:    joinDate,
			BankAccount: req.BankAccount,
			IFSCCode:    req.IFSCCode,
			PANNumber:   req.PANNumber,
		})
		if err != nil {
			return err
		}

		username, err = s.usernameFor(txCtx, req.Email)
		if err != nil {
			return err
		}

		empID := created.ID
		if _, err := s.userRepo.Create(txCtx, user.User{
			Username:     username,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         user.RoleEmployee,
			EmployeeID:   &empID,
		}); err != nil {
			return fmt.Errorf("failed to create user for employee: %w", err)
		}

		if _, err := s.balanceRepo.Create(txCtx, leave.NewDefaultBalance(created.ID, s.now().Year())); err != nil {
			return fmt.Errorf("failed to create leave balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionCreateEmployee, "employees", created.ID)

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(created.Email, created.Name, username, s.defaultPassword); err != nil {
			slog.Warn("welcome email failed", "employee_id", created.ID, "error", err)
		}
	}

	return employee.CreateEmployeeResponse{
		Employee:    employee.NewEmployeeResponse(created),
		Credentials: employee.Credentials{Username: username, Password: s.defaultPassword},
	}, nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.IsEmpty() {
		return employee.EmployeeResponse{}, employee.ErrNoFieldsToUpdate
	}

	current, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, current.Email) {
		exists, err := s.employeeRepo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return employee.EmployeeResponse{}, employee.ErrEmailExists
		}
	}

	if err := s.employeeRepo.Update(ctx, req); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionUpdateEmployee, "employees", req.ID)
	return employee.NewEmployeeResponse(updated), nil
}

// DeleteEmployee marks the employee inactive; history is kept.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !emp.IsActive() {
		return employee.ErrEmployeeAlreadyInactive
	}

	if err := s.employeeRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	s.audit.Record(ctx, audit.ActionDeleteEmployee, "employees", id)
	return nil
}
