package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerTestSecret = "test-secret-key-for-jwt"

type fakeAuthService struct {
	auth.AuthService
	loggedOut []string
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if req.Password != "emp123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{
		AccessToken:           "access",
		RefreshToken:          "refresh",
		RefreshTokenExpiresIn: time.Now().Add(time.Hour).Unix(),
		User:                  user.UserResponse{ID: "u1", Username: req.Username},
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string, accessToken string) error {
	f.loggedOut = append(f.loggedOut, refreshToken, accessToken)
	return nil
}

type fakeGoogle struct {
	oauth.GoogleService
}

func (fakeGoogle) GenerateState() (string, error) { return "state-123", nil }

func (fakeGoogle) RedirectURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

type fakeEmployeeService struct {
	employee.EmployeeService
	lastFilter employee.EmployeeFilter
}

func (f *fakeEmployeeService) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	f.lastFilter = filter
	return employee.ListEmployeeResponse{TotalCount: 1, Employees: []employee.EmployeeResponse{{ID: "e1"}}}, nil
}

func (f *fakeEmployeeService) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if err := jwt.AuthorizeEmployee(ctx, id); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.EmployeeResponse{ID: id}, nil
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	lastMonth string
}

func (f *fakeAttendanceService) GetEmployeeAttendance(ctx context.Context, employeeID string, month string) (attendance.EmployeeAttendanceResponse, error) {
	f.lastMonth = month
	return attendance.EmployeeAttendanceResponse{}, nil
}

type fakeLeaveService struct {
	leave.LeaveService
	lastDecision leave.DecisionRequest
}

func (f *fakeLeaveService) Approve(ctx context.Context, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	f.lastDecision = req
	return leave.ApplicationResponse{ID: req.ID, Status: "approved"}, nil
}

type fakePayrollService struct {
	payroll.PayrollService
	processErr error
	cancelled  bool
}

func (f *fakePayrollService) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessPayrollResponse, error) {
	if f.processErr != nil {
		return payroll.ProcessPayrollResponse{}, f.processErr
	}
	return payroll.ProcessPayrollResponse{Month: req.Month, Processed: 2, Cancelled: f.cancelled}, nil
}

func (f *fakePayrollService) DownloadPayslip(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if id != "p1" {
		return nil, "", payroll.ErrPayrollRecordNotFound
	}
	return io.NopCloser(strings.NewReader("%PDF-1.3 fake")), "payslip_e1_2025-01.pdf", nil
}

type fakeReportService struct {
	report.ReportService
}

type fakeDashboardService struct {
	dashboard.DashboardService
}

func (fakeDashboardService) GetDashboard(ctx context.Context, month string) (dashboard.DashboardResponse, error) {
	return dashboard.DashboardResponse{Month: month}, nil
}

type routerHarness struct {
	jwt        jwt.Service
	auth       *fakeAuthService
	employees  *fakeEmployeeService
	attendance *fakeAttendanceService
	leave      *fakeLeaveService
	payroll    *fakePayrollService
	handler    http.Handler
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	h := &routerHarness{
		jwt:        jwt.NewJWTService(routerTestSecret, time.Hour, 24*time.Hour, nil, false),
		auth:       &fakeAuthService{},
		employees:  &fakeEmployeeService{},
		attendance: &fakeAttendanceService{},
		leave:      &fakeLeaveService{},
		payroll:    &fakePayrollService{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.handler = NewRouter(logger, []string{"http://localhost:3000"}, h.jwt, Handlers{
		Auth:       NewAuthHandler(h.jwt, h.auth, fakeGoogle{}, "http://localhost:3000", false),
		Employee:   NewEmployeeHandler(h.employees),
		Salary:     NewSalaryHandler(nil),
		Attendance: NewAttendanceHandler(h.attendance),
		Leave:      NewLeaveHandler(h.leave),
		Payroll:    NewPayrollHandler(h.payroll),
		Report:     NewReportHandler(fakeReportService{}),
		Dashboard:  NewDashboardHandler(fakeDashboardService{}),
	})
	return h
}

func (h *routerHarness) token(t *testing.T, role user.Role, employeeID *string) string {
	t.Helper()
	token, _, err := h.jwt.GenerateAccessToken("u-"+string(role), "someone", employeeID, role)
	require.NoError(t, err)
	return token
}

func (h *routerHarness) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, _, err := h.jwt.GenerateRefreshToken("u1")
	require.NoError(t, err)
	rec = h.do(t, http.MethodGet, "/api/v1/employees", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RevokedTokenRejected(t *testing.T) {
	h := newRouterHarness(t)
	token := h.token(t, user.RoleHR, nil)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/v1/employees", token, nil).Code)

	require.NoError(t, h.jwt.RevokeToken(context.Background(), token))
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/v1/employees", token, nil).Code)
}

func TestRouter_Permissions(t *testing.T) {
	h := newRouterHarness(t)
	own := "e1"
	employeeToken := h.token(t, user.RoleEmployee, &own)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"employee cannot list employees", http.MethodGet, "/api/v1/employees", employeeToken, http.StatusForbidden},
		{"employee reads self", http.MethodGet, "/api/v1/employees/e1", employeeToken, http.StatusOK},
		{"employee cannot read others", http.MethodGet, "/api/v1/employees/e2", employeeToken, http.StatusForbidden},
		{"employee cannot run payroll", http.MethodPost, "/api/v1/payroll/process", employeeToken, http.StatusForbidden},
		{"hr cannot delete employees", http.MethodDelete, "/api/v1/employees/e1", h.token(t, user.RoleHR, nil), http.StatusForbidden},
		{"employee cannot see dashboard", http.MethodGet, "/api/v1/dashboard", employeeToken, http.StatusForbidden},
		{"hr sees dashboard", http.MethodGet, "/api/v1/dashboard?month=2025-01", h.token(t, user.RoleHR, nil), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, tt.method, tt.target, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestEmployeeHandler_ListParsesFilter(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/employees?status=active&department=Engineering&page=2&limit=5", h.token(t, user.RoleAdmin, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f := h.employees.lastFilter
	require.NotNil(t, f.Status)
	assert.Equal(t, "active", *f.Status)
	require.NotNil(t, f.Department)
	assert.Equal(t, "Engineering", *f.Department)
	assert.Nil(t, f.Search)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestAttendanceHandler_MonthQuery(t *testing.T) {
	h := newRouterHarness(t)
	token := h.token(t, user.RoleHR, nil)

	tests := []struct {
		query string
		want  string
	}{
		{"?month=1&year=2025", "2025-01"},
		{"?month=2025-03", "2025-03"},
		{"", ""},
	}
	for _, tt := range tests {
		rec := h.do(t, http.MethodGet, "/api/v1/attendance/employee/e1"+tt.query, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tt.want, h.attendance.lastMonth)
	}
}

func TestLeaveHandler_ApproveWithoutBody(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodPut, "/api/v1/leave/la-7/approve", h.token(t, user.RoleHR, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "la-7", h.leave.lastDecision.ID)
	assert.Nil(t, h.leave.lastDecision.Comments)
}

func TestPayrollHandler_Process(t *testing.T) {
	h := newRouterHarness(t)
	token := h.token(t, user.RoleHR, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/payroll/process", token, payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payroll processed for 2 employees", decodeResponse(t, rec).Message)

	h.payroll.cancelled = true
	rec = h.do(t, http.MethodPost, "/api/v1/payroll/process", token, payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payroll processed for 2 employees (cancelled before completion)", decodeResponse(t, rec).Message)
	h.payroll.cancelled = false

	h.payroll.processErr = fmt.Errorf("%w: %w", payroll.ErrBatchFailed, errors.New("connection reset"))
	rec = h.do(t, http.MethodPost, "/api/v1/payroll/process", token, payroll.ProcessPayrollRequest{Month: "2025-01"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeResponse(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "PAYROLL_FAILED", body.Error.Code)
	assert.Equal(t, "Failed to process payroll", body.Error.Message)
}

func TestPayrollHandler_DownloadPayslip(t *testing.T) {
	h := newRouterHarness(t)
	token := h.token(t, user.RoleHR, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/payroll/payslip/p1/download", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip_e1_2025-01.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = h.do(t, http.MethodGet, "/api/v1/payroll/payslip/missing/download", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{Username: "asha", Password: "emp123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{Username: "asha", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAuthHandler_LogoutRevokesBothTokens(t *testing.T) {
	h := newRouterHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "r-1"})
	req.Header.Set("Authorization", "Bearer a-1")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"r-1", "a-1"}, h.auth.loggedOut)
}

func TestAuthHandler_GoogleStateFlow(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/auth/oauth/google", "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "state=state-123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/google/callback?state=forged&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-123"})
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "state_mismatch", loc.Query().Get("error"))
}

func TestAuthHandler_GoogleDisabled(t *testing.T) {
	jwtSvc := jwt.NewJWTService(routerTestSecret, time.Hour, 24*time.Hour, nil, false)
	handler := NewAuthHandler(jwtSvc, &fakeAuthService{}, nil, "http://localhost:3000", false)

	rec := httptest.NewRecorder()
	handler.LoginWithGoogle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/google", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
