package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	auditsvc "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	audit          *auditsvc.Recorder
}

func NewAttendanceService(tx database.Transactor, attendanceRepo attendance.AttendanceRepository, employeeRepo employee.EmployeeRepository, recorder *auditsvc.Recorder) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		audit:          recorder,
	}
}

// markedBy returns the caller's user ID, if authenticated.
func markedBy(ctx context.Context) *string {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil
	}
	return &claims.UserID
}

// MarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	saved, err := s.attendanceRepo.Upsert(ctx, req.ToEntity(date, markedBy(ctx)))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionMarkAttendance, "attendance", saved.ID)
	return attendance.NewAttendanceResponse(saved), nil
}

// BulkMarkAttendance marks every record or none.
func (s *AttendanceServiceImpl) BulkMarkAttendance(ctx context.Context, req attendance.BulkMarkAttendanceRequest) (attendance.BulkMarkAttendanceResponse, error) {
	if len(req.Records) == 0 {
		return attendance.BulkMarkAttendanceResponse{}, attendance.ErrEmptyBulkRequest
	}
	if err := req.Validate(); err != nil {
		return attendance.BulkMarkAttendanceResponse{}, err
	}

	items := req.Items()

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.EmployeeID] {
			seen[item.EmployeeID] = true
			ids = append(ids, item.EmployeeID)
		}
	}
	found, err := s.employeeRepo.ListByIDs(ctx, ids)
	if err != nil {
		return attendance.BulkMarkAttendanceResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}
	known := make(map[string]bool, len(found))
	for _, e := range found {
		known[e.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return attendance.BulkMarkAttendanceResponse{}, fmt.Errorf("%w: %s", employee.ErrEmployeeNotFound, id)
		}
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	by := markedBy(ctx)

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, item := range items {
			if _, err := s.attendanceRepo.Upsert(txCtx, item.ToEntity(date, by)); err != nil {
				return fmt.Errorf("failed to mark attendance for %s: %w", item.EmployeeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return attendance.BulkMarkAttendanceResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionMarkAttendance, "attendance", req.Date)
	return attendance.BulkMarkAttendanceResponse{Date: req.Date, Marked: len(items)}, nil
}

// GetEmployeeAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetEmployeeAttendance(ctx context.Context, employeeID string, month string) (attendance.EmployeeAttendanceResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, employeeID); err != nil {
		return attendance.EmployeeAttendanceResponse{}, err
	}

	var m *period.Month
	if month != "" {
		parsed, err := period.ParseMonth(month)
		if err != nil {
			var errs validator.ValidationErrors
			errs.Add("month", "month must be in YYYY-MM format")
			return attendance.EmployeeAttendanceResponse{}, errs
		}
		m = &parsed
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, m)
	if err != nil {
		return attendance.EmployeeAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.EmployeeAttendanceResponse{
		EmployeeID: employeeID,
		Records:    make([]attendance.AttendanceResponse, 0, len(records)),
		Summary:    attendance.NewSummaryResponse(attendance.Summarize(records)),
	}
	if m != nil {
		label := m.String()
		resp.Month = &label
	}
	for _, r := range records {
		resp.Records = append(resp.Records, attendance.NewAttendanceResponse(r))
	}
	return resp, nil
}

// GetAttendanceByDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendanceByDate(ctx context.Context, date string) ([]attendance.AttendanceResponse, error) {
	day, ok := validator.IsValidDate(date)
	if !ok {
		var errs validator.ValidationErrors
		errs.Add("date", "date must be a valid date (YYYY-MM-DD)")
		return nil, errs
	}

	records, err := s.attendanceRepo.ListByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}

	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.NewAttendanceResponse(r))
	}
	return out, nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.IsEmpty() {
		return attendance.AttendanceResponse{}, attendance.ErrNoFieldsToUpdate
	}

	if err := s.attendanceRepo.Update(ctx, req); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.audit.Record(ctx, audit.ActionUpdateAttendance, "attendance", req.ID)
	return attendance.NewAttendanceResponse(updated), nil
}
