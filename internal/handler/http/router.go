package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Salary     SalaryHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Payroll    PayrollHandler
	Report     ReportHandler
	Dashboard  DashboardHandler
}

func NewRouter(logger *slog.Logger, allowedOrigins []string, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.ClientIP)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/google", func(r chi.Router) {
				r.Get("/", h.Auth.LoginWithGoogle)
				r.Get("/callback", h.Auth.OAuthCallbackGoogle)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/change-password", h.Auth.ChangePassword)

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionEmployeeView)).Get("/", h.Employee.ListEmployees)
				r.Get("/{id}", h.Employee.GetEmployee)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.CreateEmployee)
					r.Put("/{id}", h.Employee.UpdateEmployee)
				})
				r.With(middleware.RequirePermission(user.PermissionEmployeeDelete)).Delete("/{id}", h.Employee.DeleteEmployee)
			})

			r.Route("/salary", func(r chi.Router) {
				r.Get("/employee/{empId}", h.Salary.GetCurrent)
				r.Get("/employee/{empId}/history", h.Salary.GetHistory)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSalaryManage))
					r.Post("/", h.Salary.Create)
					r.Put("/{id}", h.Salary.Update)
					r.Delete("/{id}", h.Salary.Close)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/employee/{empId}", h.Attendance.GetByEmployee)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/date/{date}", h.Attendance.GetByDate)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceMark))
					r.Post("/", h.Attendance.Mark)
					r.Post("/bulk", h.Attendance.BulkMark)
					r.Put("/{id}", h.Attendance.Update)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/employee/{empId}", h.Leave.ListByEmployee)
				r.Get("/balance/{empId}", h.Leave.GetBalance)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/pending", h.Leave.ListPending)
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.Apply)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
					r.Put("/{id}/approve", h.Leave.Approve)
					r.Put("/{id}/reject", h.Leave.Reject)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPayrollViewAll)).Get("/month/{month}", h.Payroll.GetMonth)
				r.Get("/employee/{empId}", h.Payroll.GetByEmployee)
				r.Get("/payslip/{id}", h.Payroll.GetPayslip)
				r.Get("/payslip/{id}/download", h.Payroll.DownloadPayslip)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollProcess))
					r.Post("/process", h.Payroll.Process)
					r.Post("/regenerate-payslip/{id}", h.Payroll.RegeneratePayslip)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Route("/reports", func(r chi.Router) {
					r.Get("/payroll-summary", h.Report.GetPayrollSummary)
					r.Get("/department-wise", h.Report.GetDepartmentWise)
					r.Get("/attendance-summary", h.Report.GetAttendanceSummary)
					r.Get("/leave-summary", h.Report.GetLeaveSummary)
					r.Get("/tax-report", h.Report.GetTaxReport)
				})
				r.Get("/dashboard", h.Dashboard.GetDashboard)
			})
		})
	})
	return r
}
