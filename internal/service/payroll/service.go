package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	auditsvc "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
)

type PayrollServiceImpl struct {
	processor    *Processor
	delivery     *Delivery
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	files        storage.FileStorage
	audit        *auditsvc.Recorder
}

func NewPayrollService(
	processor *Processor,
	delivery *Delivery,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	files storage.FileStorage,
	recorder *auditsvc.Recorder,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		processor:    processor,
		delivery:     delivery,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		files:        files,
		audit:        recorder,
	}
}

func (s *PayrollServiceImpl) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}
	month, err := period.ParseMonth(req.Month)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}

	batch := Batch{Month: month, EmployeeIDs: req.EmployeeIDs}
	// Scheduled runs have no caller.
	if claims, err := jwt.ClaimsFromContext(ctx); err == nil {
		batch.ProcessedBy = &claims.UserID
	}

	resp, err := s.processor.Process(ctx, batch)
	if err != nil {
		return resp, err
	}

	s.audit.Record(ctx, audit.ActionProcessPayroll, "payroll_records", resp.Month)
	return resp, nil
}

func (s *PayrollServiceImpl) GetMonthPayroll(ctx context.Context, month string) (payroll.MonthPayrollResponse, error) {
	m, err := period.ParseMonth(month)
	if err != nil {
		return payroll.MonthPayrollResponse{}, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}

	records, err := s.payrollRepo.ListByMonth(ctx, m.String())
	if err != nil {
		return payroll.MonthPayrollResponse{}, err
	}

	resp := payroll.MonthPayrollResponse{
		Month:   m.String(),
		Records: make([]payroll.RecordResponse, 0, len(records)),
		Summary: payroll.Summarize(records),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, payroll.NewRecordResponse(r))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GetEmployeePayroll(ctx context.Context, employeeID string, filter payroll.EmployeePayrollFilter) ([]payroll.RecordResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, payroll.NewRecordResponse(r))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.RecordResponse, error) {
	rec, err := s.getAuthorized(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	return payroll.NewRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) DownloadPayslip(ctx context.Context, id string) (io.ReadCloser, string, error) {
	rec, err := s.getAuthorized(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if rec.PayslipPath == nil || *rec.PayslipPath == "" {
		return nil, "", payroll.ErrPayslipNotGenerated
	}

	content, err := s.files.Download(ctx, *rec.PayslipPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", payroll.ErrPayslipNotGenerated, err)
	}
	return content, payslip.Filename(rec.EmployeeID, rec.Month), nil
}

func (s *PayrollServiceImpl) RegeneratePayslip(ctx context.Context, id string) (payroll.RecordResponse, error) {
	rec, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	month, err := period.ParseMonth(rec.Month)
	if err != nil {
		return payroll.RecordResponse{}, fmt.Errorf("stored payroll month %q is invalid: %w", rec.Month, err)
	}

	path := s.delivery.Deliver(ctx, month, Delivered{Employee: emp, Record: rec})
	if path == "" {
		return payroll.RecordResponse{}, fmt.Errorf("failed to regenerate payslip for payroll %s", id)
	}
	slog.Info("payslip regenerated", "payroll_id", id, "employee_id", emp.ID, "path", path)
	s.audit.Record(ctx, audit.ActionRegeneratePay, "payroll_records", id)

	rec.PayslipPath = &path
	return payroll.NewRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) getAuthorized(ctx context.Context, id string) (payroll.Record, error) {
	rec, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.Record{}, err
	}
	if err := jwt.AuthorizeEmployee(ctx, rec.EmployeeID); err != nil {
		return payroll.Record{}, err
	}
	return rec, nil
}
