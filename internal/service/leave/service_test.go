package leave

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passTx struct{}

func (passTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTx) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memBalances struct {
	rows map[string]leave.Balance
}

func balanceKey(empID string, year int) string {
	return fmt.Sprintf("%s|%d", empID, year)
}

func (m *memBalances) Create(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	k := balanceKey(b.EmployeeID, b.Year)
	if existing, ok := m.rows[k]; ok {
		return existing, nil
	}
	b.ID = "bal-" + k
	m.rows[k] = b
	return b, nil
}

func (m *memBalances) Get(ctx context.Context, employeeID string, year int) (leave.Balance, error) {
	b, ok := m.rows[balanceKey(employeeID, year)]
	if !ok {
		return leave.Balance{}, leave.ErrLeaveBalanceNotFound
	}
	return b, nil
}

func (m *memBalances) AddUsed(ctx context.Context, employeeID string, year int, t leave.LeaveType, days int) error {
	k := balanceKey(employeeID, year)
	b, ok := m.rows[k]
	if !ok {
		return leave.ErrLeaveBalanceNotFound
	}
	switch t {
	case leave.LeaveTypeCasual:
		b.CasualUsed += days
	case leave.LeaveTypeSick:
		b.SickUsed += days
	case leave.LeaveTypeEarned:
		b.EarnedUsed += days
	}
	m.rows[k] = b
	return nil
}

type memApplications struct {
	rows map[string]leave.Application
}

func (m *memApplications) Create(ctx context.Context, a leave.Application) (leave.Application, error) {
	a.ID = fmt.Sprintf("la-%d", len(m.rows)+1)
	a.AppliedAt = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	m.rows[a.ID] = a
	return a, nil
}

func (m *memApplications) GetByID(ctx context.Context, id string) (leave.Application, error) {
	a, ok := m.rows[id]
	if !ok {
		return leave.Application{}, leave.ErrLeaveApplicationNotFound
	}
	return a, nil
}

func (m *memApplications) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Application, error) {
	var out []leave.Application
	for _, a := range m.rows {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memApplications) ListPending(ctx context.Context) ([]leave.Application, error) {
	var out []leave.Application
	for _, a := range m.rows {
		if a.IsPending() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memApplications) Decide(ctx context.Context, id string, status leave.Status, approverID *string, decidedAt time.Time, comments *string) error {
	a, ok := m.rows[id]
	if !ok {
		return leave.ErrLeaveApplicationNotFound
	}
	if !a.IsPending() {
		return leave.ErrLeaveAlreadyProcessed
	}
	a.Status = status
	a.ApprovedBy = approverID
	a.DecidedAt = &decidedAt
	a.Comments = comments
	m.rows[id] = a
	return nil
}

type memAttendance struct {
	attendance.AttendanceRepository
	rows    map[string]attendance.Attendance
	failErr error
}

func (m *memAttendance) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if m.failErr != nil {
		return attendance.Attendance{}, m.failErr
	}
	m.rows[a.EmployeeID+"|"+a.Date.Format("2006-01-02")] = a
	return a, nil
}

type employees struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
}

func (e employees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := e.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type sentDecision struct {
	to, status string
}

type recordingMailer struct {
	sent []sentDecision
	err  error
}

func (r *recordingMailer) SendLeaveDecision(to, employeeName, leaveType, fromDate, toDate, status string, comments *string) error {
	r.sent = append(r.sent, sentDecision{to: to, status: status})
	return r.err
}

type harness struct {
	balances   *memBalances
	apps       *memApplications
	attendance *memAttendance
	mailer     *recordingMailer
	svc        *LeaveServiceImpl
}

func newHarness() *harness {
	h := &harness{
		balances:   &memBalances{rows: map[string]leave.Balance{}},
		apps:       &memApplications{rows: map[string]leave.Application{}},
		attendance: &memAttendance{rows: map[string]attendance.Attendance{}},
		mailer:     &recordingMailer{},
	}
	emps := employees{byID: map[string]employee.Employee{
		"e1": {ID: "e1", Name: "Asha", Email: "asha@example.com", Status: employee.StatusActive},
		"e2": {ID: "e2", Name: "Ravi", Status: employee.StatusInactive},
	}}
	h.svc = NewLeaveService(passTx{}, h.balances, h.apps, h.attendance, emps, h.mailer, nil).(*LeaveServiceImpl)
	h.svc.now = func() time.Time { return time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC) }
	return h
}

func withUser(t *testing.T, role user.Role, employeeID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("secret"), nil)
	claims := map[string]interface{}{"user_id": "u-" + string(role), "role": string(role)}
	if employeeID != "" {
		claims["employee_id"] = employeeID
	}
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestApply_ProvisionsBalanceAndCreatesPending(t *testing.T) {
	h := newHarness()
	ctx := withUser(t, user.RoleEmployee, "e1")

	got, err := h.svc.Apply(ctx, leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "casual", FromDate: "2025-01-06", ToDate: "2025-01-08"})
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalDays)
	assert.Equal(t, "pending", got.Status)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Asha", *got.EmployeeName)

	b, err := h.balances.Get(context.Background(), "e1", 2025)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultCasualDays, b.CasualTotal)
	assert.Zero(t, b.CasualUsed)
}

func TestApply_InsufficientBalance(t *testing.T) {
	h := newHarness()
	h.balances.rows[balanceKey("e1", 2025)] = leave.Balance{EmployeeID: "e1", Year: 2025, CasualTotal: 12, CasualUsed: 11}
	ctx := withUser(t, user.RoleEmployee, "e1")

	_, err := h.svc.Apply(ctx, leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "casual", FromDate: "2025-03-03", ToDate: "2025-03-04"})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Empty(t, h.apps.rows)

	_, err = h.svc.Apply(ctx, leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "unpaid", FromDate: "2025-03-03", ToDate: "2025-03-20"})
	assert.NoError(t, err)
}

func TestApply_Rejections(t *testing.T) {
	h := newHarness()

	tests := []struct {
		name    string
		ctx     context.Context
		req     leave.ApplyLeaveRequest
		wantErr error
	}{
		{
			name:    "other employee",
			ctx:     withUser(t, user.RoleEmployee, "e9"),
			req:     leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "sick", FromDate: "2025-01-06", ToDate: "2025-01-06"},
			wantErr: user.ErrSelfAccessOnly,
		},
		{
			name:    "inactive",
			ctx:     withUser(t, user.RoleHR, ""),
			req:     leave.ApplyLeaveRequest{EmployeeID: "e2", LeaveType: "sick", FromDate: "2025-01-06", ToDate: "2025-01-06"},
			wantErr: leave.ErrEmployeeInactive,
		},
		{
			name:    "unknown employee",
			ctx:     withUser(t, user.RoleHR, ""),
			req:     leave.ApplyLeaveRequest{EmployeeID: "ghost", LeaveType: "sick", FromDate: "2025-01-06", ToDate: "2025-01-06"},
			wantErr: employee.ErrEmployeeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Apply(tt.ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := h.svc.Apply(withUser(t, user.RoleHR, ""), leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "casual", FromDate: "2025-01-08", ToDate: "2025-01-06"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "to_date")
}

func TestApprove_ConsumesBalanceAndMarksAttendance(t *testing.T) {
	h := newHarness()
	app, err := h.svc.Apply(withUser(t, user.RoleEmployee, "e1"), leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "earned", FromDate: "2025-01-06", ToDate: "2025-01-08"})
	require.NoError(t, err)
	h.apps.rows[app.ID] = withEmail(h.apps.rows[app.ID])

	comments := "enjoy"
	got, err := h.svc.Approve(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: app.ID, Comments: &comments})
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "u-hr", *got.ApprovedBy)
	assert.NotNil(t, got.DecidedAt)

	b, _ := h.balances.Get(context.Background(), "e1", 2025)
	assert.Equal(t, 3, b.EarnedUsed)

	require.Len(t, h.attendance.rows, 3)
	for _, day := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		a := h.attendance.rows["e1|"+day]
		assert.Equal(t, attendance.StatusLeave, a.Status)
		assert.True(t, a.WorkingHours.IsZero())
	}

	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, sentDecision{to: "asha@example.com", status: "approved"}, h.mailer.sent[0])

	_, err = h.svc.Approve(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: app.ID})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyProcessed)
}

func TestApprove_UnpaidLeavesBalanceUntouched(t *testing.T) {
	h := newHarness()
	app, err := h.svc.Apply(withUser(t, user.RoleEmployee, "e1"), leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "unpaid", FromDate: "2025-02-03", ToDate: "2025-02-04"})
	require.NoError(t, err)

	_, err = h.svc.Approve(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: app.ID})
	require.NoError(t, err)

	_, err = h.balances.Get(context.Background(), "e1", 2025)
	assert.ErrorIs(t, err, leave.ErrLeaveBalanceNotFound)
	assert.Len(t, h.attendance.rows, 2)
}

func TestApprove_BalanceRecheckedAtDecision(t *testing.T) {
	h := newHarness()
	ctx := withUser(t, user.RoleEmployee, "e1")
	app, err := h.svc.Apply(ctx, leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "sick", FromDate: "2025-04-01", ToDate: "2025-04-05"})
	require.NoError(t, err)

	b := h.balances.rows[balanceKey("e1", 2025)]
	b.SickUsed = 10
	h.balances.rows[balanceKey("e1", 2025)] = b

	_, err = h.svc.Approve(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: app.ID})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Equal(t, leave.StatusPending, h.apps.rows[app.ID].Status)
}

func TestApprove_AttendanceFailureSurfaces(t *testing.T) {
	h := newHarness()
	app, err := h.svc.Apply(withUser(t, user.RoleEmployee, "e1"), leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "casual", FromDate: "2025-01-06", ToDate: "2025-01-06"})
	require.NoError(t, err)
	h.attendance.failErr = errors.New("db down")

	_, err = h.svc.Approve(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: app.ID})
	assert.Error(t, err)
	assert.Empty(t, h.mailer.sent)
}

func TestReject(t *testing.T) {
	h := newHarness()
	app, err := h.svc.Apply(withUser(t, user.RoleEmployee, "e1"), leave.ApplyLeaveRequest{EmployeeID: "e1", LeaveType: "casual", FromDate: "2025-01-06", ToDate: "2025-01-07"})
	require.NoError(t, err)
	h.apps.rows[app.ID] = withEmail(h.apps.rows[app.ID])
	h.mailer.err = errors.New("smtp down")

	reason := "busy sprint"
	got, err := h.svc.Reject(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: app.ID, Comments: &reason})
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)
	assert.Equal(t, &reason, got.Comments)

	b, _ := h.balances.Get(context.Background(), "e1", 2025)
	assert.Zero(t, b.CasualUsed)
	assert.Empty(t, h.attendance.rows)
	assert.Len(t, h.mailer.sent, 1)

	_, err = h.svc.Reject(withUser(t, user.RoleHR, ""), leave.DecisionRequest{ID: "missing"})
	assert.ErrorIs(t, err, leave.ErrLeaveApplicationNotFound)
}

func TestGetBalance(t *testing.T) {
	h := newHarness()

	got, err := h.svc.GetBalance(withUser(t, user.RoleEmployee, "e1"), "e1")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, leave.CategoryBalance{Total: 15, Used: 0, Remaining: 15}, got.Earned)

	_, err = h.svc.GetBalance(withUser(t, user.RoleEmployee, "e1"), "e2")
	assert.ErrorIs(t, err, user.ErrSelfAccessOnly)
}

func withEmail(a leave.Application) leave.Application {
	name, email := "Asha", "asha@example.com"
	a.EmployeeName = &name
	a.EmployeeEmail = &email
	return a
}
