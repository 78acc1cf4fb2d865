package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	now func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		now:                 time.Now,
	}
}

// GetDashboard returns combined dashboard data, one goroutine per query
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, month string) (dashboard.DashboardResponse, error) {
	now := s.now()

	m := period.MonthOf(now)
	if month != "" {
		parsed, err := period.ParseMonth(month)
		if err != nil {
			var errs validator.ValidationErrors
			errs.Add("month", "month must be in YYYY-MM format")
			return dashboard.DashboardResponse{}, errs
		}
		m = parsed
	}

	var (
		employees  dashboard.EmployeeSummaryResponse
		payroll    dashboard.PayrollSummaryResponse
		leave      dashboard.LeaveSummaryResponse
		attendance dashboard.AttendanceTodayResponse
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.GetEmployeeStats(gCtx, m.FirstDay(), m.Next().FirstDay())
		if err != nil {
			return err
		}
		employees = dashboard.EmployeeSummaryResponse{
			Total:    stats.Total,
			Active:   stats.Active,
			Inactive: stats.Inactive,
			NewHires: stats.New,
		}
		return nil
	})

	g.Go(func() error {
		stats, err := s.GetPayrollStats(gCtx, m.String())
		if err != nil {
			return err
		}
		payroll = dashboard.PayrollSummaryResponse{
			Processed:       stats.Processed,
			Unprocessed:     stats.Unprocessed,
			TotalGross:      stats.TotalGross,
			TotalDeductions: stats.TotalDeductions,
			TotalNet:        stats.TotalNet,
		}
		return nil
	})

	g.Go(func() error {
		n, err := s.CountPendingLeaves(gCtx)
		if err != nil {
			return err
		}
		leave.Pending = n
		return nil
	})

	// Attendance is always today's, whatever month is asked for.
	g.Go(func() error {
		stats, err := s.GetAttendanceStats(gCtx, now)
		if err != nil {
			return err
		}
		attendance = dashboard.AttendanceTodayResponse{
			Date:     now.Format("2006-01-02"),
			Present:  stats.Present,
			Absent:   stats.Absent,
			HalfDay:  stats.HalfDay,
			OnLeave:  stats.Leave,
			Unmarked: stats.Unmarked,
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.DashboardResponse{}, err
	}

	return dashboard.DashboardResponse{
		Month:       m.String(),
		GeneratedAt: now.Format(time.RFC3339),
		Employees:   employees,
		Payroll:     payroll,
		Leave:       leave,
		Attendance:  attendance,
	}, nil
}
