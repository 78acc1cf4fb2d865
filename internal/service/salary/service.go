package salary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	auditsvc "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
)

type SalaryServiceImpl struct {
	tx           database.Transactor
	salaryRepo   salary.SalaryRepository
	employeeRepo employee.EmployeeRepository
	audit        *auditsvc.Recorder
	now          func() time.Time
}

func NewSalaryService(tx database.Transactor, salaryRepo salary.SalaryRepository, employeeRepo employee.EmployeeRepository, recorder *auditsvc.Recorder) salary.SalaryService {
	return &SalaryServiceImpl{
		tx:           tx,
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
		audit:        recorder,
		now:          time.Now,
	}
}

func (s *SalaryServiceImpl) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// GetCurrent implements salary.SalaryService.
func (s *SalaryServiceImpl) GetCurrent(ctx context.Context, employeeID string) (salary.CurrentSalaryResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, employeeID); err != nil {
		return salary.CurrentSalaryResponse{}, err
	}

	current, err := s.salaryRepo.GetEffective(ctx, employeeID, s.today())
	if err != nil {
		if errors.Is(err, salary.ErrSalaryStructureNotFound) {
			return salary.CurrentSalaryResponse{}, salary.ErrNoEffectiveStructure
		}
		return salary.CurrentSalaryResponse{}, err
	}
	return salary.NewCurrentSalaryResponse(current), nil
}

// GetHistory implements salary.SalaryService.
func (s *SalaryServiceImpl) GetHistory(ctx context.Context, employeeID string) ([]salary.SalaryStructureResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	versions, err := s.salaryRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary history: %w", err)
	}

	out := make([]salary.SalaryStructureResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, salary.NewSalaryStructureResponse(v))
	}
	return out, nil
}

// Create implements salary.SalaryService.
func (s *SalaryServiceImpl) Create(ctx context.Context, req salary.CreateSalaryStructureRequest) (salary.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	from, _ := salary.ParseDate(req.EffectiveFrom)

	var created salary.SalaryStructure
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		versions, err := s.salaryRepo.ListByEmployee(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to list salary history: %w", err)
		}
		// Versions never overlap, so only the latest one can collide with from.
		if len(versions) > 0 {
			latest := versions[0]
			if !from.After(latest.EffectiveFrom) {
				return salary.ErrEffectiveFromNotAfter
			}
			if latest.IsOpen() {
				if err := s.salaryRepo.Close(txCtx, latest.ID, from.AddDate(0, 0, -1)); err != nil {
					return err
				}
			} else if !from.After(*latest.EffectiveTo) {
				return salary.ErrOverlapsPrevious
			}
		}

		created, err = s.salaryRepo.Create(txCtx, salary.SalaryStructure{
			EmployeeID:       req.EmployeeID,
			BasicSalary:      req.BasicSalary,
			HRA:              req.HRA,
			DA:               req.DA,
			TA:               req.TA,
			MedicalAllowance: req.MedicalAllowance,
			SpecialAllowance: req.SpecialAllowance,
			PFDeduction:      req.PFDeduction,
			ProfessionalTax:  req.ProfessionalTax,
			ESI:              req.ESI,
			EffectiveFrom:    from,
		})
		return err
	})
	if err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionCreateSalary, "salary_structures", created.ID)
	return salary.NewSalaryStructureResponse(created), nil
}

// Update edits components in place; it does not version.
func (s *SalaryServiceImpl) Update(ctx context.Context, req salary.UpdateSalaryStructureRequest) (salary.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryStructureResponse{}, err
	}
	if req.IsEmpty() {
		return salary.SalaryStructureResponse{}, salary.ErrNoFieldsToUpdate
	}

	if err := s.salaryRepo.Update(ctx, req); err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	updated, err := s.salaryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionUpdateSalary, "salary_structures", req.ID)
	return salary.NewSalaryStructureResponse(updated), nil
}

// Close implements salary.SalaryService.
func (s *SalaryServiceImpl) Close(ctx context.Context, id string) error {
	current, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsOpen() {
		return salary.ErrStructureAlreadyClosed
	}

	today := s.today()
	if today.Before(current.EffectiveFrom) {
		return salary.ErrCloseBeforeStart
	}

	if err := s.salaryRepo.Close(ctx, id, today); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.ActionCloseSalary, "salary_structures", id)
	return nil
}
