package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardRepo struct {
	from, to   time.Time
	month      string
	date       time.Time
	pendingErr error
}

func (f *fakeDashboardRepo) GetEmployeeStats(ctx context.Context, from, to time.Time) (dashboard.EmployeeStats, error) {
	f.from, f.to = from, to
	return dashboard.EmployeeStats{Total: 5, Active: 4, Inactive: 1, New: 1}, nil
}

func (f *fakeDashboardRepo) GetPayrollStats(ctx context.Context, month string) (dashboard.PayrollStats, error) {
	f.month = month
	return dashboard.PayrollStats{Processed: 3, Unprocessed: 1, TotalNet: decimal.RequireFromString("75000.00")}, nil
}

func (f *fakeDashboardRepo) CountPendingLeaves(ctx context.Context) (int64, error) {
	return 2, f.pendingErr
}

func (f *fakeDashboardRepo) GetAttendanceStats(ctx context.Context, date time.Time) (dashboard.AttendanceStats, error) {
	f.date = date
	return dashboard.AttendanceStats{Present: 3, Unmarked: 1}, nil
}

func newTestService(repo *fakeDashboardRepo) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		now:                 func() time.Time { return time.Date(2025, time.June, 10, 8, 30, 0, 0, time.UTC) },
	}
}

func TestGetDashboard_CurrentMonth(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := newTestService(repo)

	got, err := svc.GetDashboard(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "2025-06", got.Month)
	assert.Equal(t, "2025-06", repo.month)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), repo.to)
	assert.Equal(t, int64(4), got.Employees.Active)
	assert.Equal(t, int64(3), got.Payroll.Processed)
	assert.Equal(t, int64(2), got.Leave.Pending)
	assert.Equal(t, "2025-06-10", got.Attendance.Date)
	assert.Equal(t, int64(1), got.Attendance.Unmarked)
}

func TestGetDashboard_RequestedMonth(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := newTestService(repo)

	got, err := svc.GetDashboard(context.Background(), "2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-01", repo.month)
	assert.Equal(t, "2025-01", got.Month)
	assert.Equal(t, "2025-06-10", got.Attendance.Date)
}

func TestGetDashboard_InvalidMonth(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{})

	_, err := svc.GetDashboard(context.Background(), "June")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestGetDashboard_QueryError(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{pendingErr: errors.New("db down")})

	_, err := svc.GetDashboard(context.Background(), "")
	assert.ErrorContains(t, err, "db down")
}
