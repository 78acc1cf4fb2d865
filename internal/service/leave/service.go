package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	auditsvc "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
	"github.com/shopspring/decimal"
)

// DecisionSender notifies an employee that their application was decided.
type DecisionSender interface {
	SendLeaveDecision(to, employeeName, leaveType, fromDate, toDate, status string, comments *string) error
}

type LeaveServiceImpl struct {
	tx              database.Transactor
	balanceRepo     leave.BalanceRepository
	applicationRepo leave.ApplicationRepository
	attendanceRepo  attendance.AttendanceRepository
	employeeRepo    employee.EmployeeRepository
	mailer          DecisionSender
	audit           *auditsvc.Recorder
	now             func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	balanceRepo leave.BalanceRepository,
	applicationRepo leave.ApplicationRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	mailer DecisionSender,
	recorder *auditsvc.Recorder,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:              tx,
		balanceRepo:     balanceRepo,
		applicationRepo: applicationRepo,
		attendanceRepo:  attendanceRepo,
		employeeRepo:    employeeRepo,
		mailer:          mailer,
		audit:           recorder,
		now:             time.Now,
	}
}

// balanceFor loads the (employee, year) balance, creating the default row when missing.
func (s *LeaveServiceImpl) balanceFor(ctx context.Context, employeeID string, year int) (leave.Balance, error) {
	b, err := s.balanceRepo.Get(ctx, employeeID, year)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, leave.ErrLeaveBalanceNotFound) {
		return leave.Balance{}, err
	}

	if _, err := s.balanceRepo.Create(ctx, leave.NewDefaultBalance(employeeID, year)); err != nil {
		return leave.Balance{}, err
	}
	return s.balanceRepo.Get(ctx, employeeID, year)
}

func checkBalance(b leave.Balance, t leave.LeaveType, days int) error {
	remaining, ok := b.Remaining(t)
	if ok && remaining < days {
		return leave.ErrInsufficientBalance
	}
	return nil
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := jwt.AuthorizeEmployee(ctx, req.EmployeeID); err != nil {
		return leave.ApplicationResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if !emp.IsActive() {
		return leave.ApplicationResponse{}, leave.ErrEmployeeInactive
	}

	from, to := req.Range()
	leaveType := leave.LeaveType(req.LeaveType)
	days := leave.InclusiveDays(from, to)

	if leaveType.Tracked() {
		b, err := s.balanceFor(ctx, req.EmployeeID, from.Year())
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		if err := checkBalance(b, leaveType, days); err != nil {
			return leave.ApplicationResponse{}, err
		}
	}

	created, err := s.applicationRepo.Create(ctx, leave.Application{
		EmployeeID: req.EmployeeID,
		LeaveType:  leaveType,
		FromDate:   from,
		ToDate:     to,
		TotalDays:  days,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
	})
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to create leave application: %w", err)
	}
	created.EmployeeName = &emp.Name

	s.audit.Record(ctx, audit.ActionApplyLeave, "leave_applications", created.ID)
	return leave.NewApplicationResponse(created), nil
}

func toResponses(apps []leave.Application) []leave.ApplicationResponse {
	out := make([]leave.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, leave.NewApplicationResponse(a))
	}
	return out
}

// ListByEmployee implements leave.LeaveService.
func (s *LeaveServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.ApplicationResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	apps, err := s.applicationRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toResponses(apps), nil
}

// ListPending implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPending(ctx context.Context) ([]leave.ApplicationResponse, error) {
	apps, err := s.applicationRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(apps), nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, employeeID); err != nil {
		return leave.BalanceResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return leave.BalanceResponse{}, err
	}

	b, err := s.balanceFor(ctx, employeeID, s.now().Year())
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return leave.NewBalanceResponse(b), nil
}

func approverFrom(ctx context.Context) *string {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil
	}
	return &claims.UserID
}

// Approve implements leave.LeaveService. The decision, balance and attendance
// writes commit together.
func (s *LeaveServiceImpl) Approve(ctx context.Context, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	approver := approverFrom(ctx)
	decidedAt := s.now()

	var app leave.Application
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applicationRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !app.IsPending() {
			return leave.ErrLeaveAlreadyProcessed
		}

		if app.LeaveType.Tracked() {
			b, err := s.balanceFor(ctx, app.EmployeeID, app.FromDate.Year())
			if err != nil {
				return err
			}
			if err := checkBalance(b, app.LeaveType, app.TotalDays); err != nil {
				return err
			}
		}

		if err := s.applicationRepo.Decide(ctx, app.ID, leave.StatusApproved, approver, decidedAt, req.Comments); err != nil {
			return err
		}

		if app.LeaveType.Tracked() {
			if err := s.balanceRepo.AddUsed(ctx, app.EmployeeID, app.FromDate.Year(), app.LeaveType, app.TotalDays); err != nil {
				return err
			}
		}

		for _, day := range leave.Days(app.FromDate, app.ToDate) {
			_, err := s.attendanceRepo.Upsert(ctx, attendance.Attendance{
				EmployeeID:    app.EmployeeID,
				Date:          day,
				Status:        attendance.StatusLeave,
				WorkingHours:  decimal.Zero,
				OvertimeHours: decimal.Zero,
				MarkedBy:      approver,
			})
			if err != nil {
				return fmt.Errorf("failed to mark leave attendance for %s: %w", day.Format("2006-01-02"), err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	app.Status = leave.StatusApproved
	app.ApprovedBy = approver
	app.DecidedAt = &decidedAt
	app.Comments = req.Comments

	s.audit.Record(ctx, audit.ActionApproveLeave, "leave_applications", app.ID)
	s.notify(app)
	return leave.NewApplicationResponse(app), nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	approver := approverFrom(ctx)
	decidedAt := s.now()

	var app leave.Application
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applicationRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !app.IsPending() {
			return leave.ErrLeaveAlreadyProcessed
		}
		return s.applicationRepo.Decide(ctx, app.ID, leave.StatusRejected, approver, decidedAt, req.Comments)
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	app.Status = leave.StatusRejected
	app.ApprovedBy = approver
	app.DecidedAt = &decidedAt
	app.Comments = req.Comments

	s.audit.Record(ctx, audit.ActionRejectLeave, "leave_applications", app.ID)
	s.notify(app)
	return leave.NewApplicationResponse(app), nil
}

// notify is best-effort; the decision has already committed.
func (s *LeaveServiceImpl) notify(app leave.Application) {
	if s.mailer == nil || app.EmployeeEmail == nil {
		return
	}

	var name string
	if app.EmployeeName != nil {
		name = *app.EmployeeName
	}
	err := s.mailer.SendLeaveDecision(
		*app.EmployeeEmail,
		name,
		string(app.LeaveType),
		app.FromDate.Format("2006-01-02"),
		app.ToDate.Format("2006-01-02"),
		string(app.Status),
		app.Comments,
	)
	if err != nil {
		slog.Warn("leave decision email failed", "application_id", app.ID, "error", err)
	}
}
