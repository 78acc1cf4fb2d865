package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetPayrollSummary(w http.ResponseWriter, r *http.Request)
	GetDepartmentWise(w http.ResponseWriter, r *http.Request)
	GetAttendanceSummary(w http.ResponseWriter, r *http.Request)
	GetLeaveSummary(w http.ResponseWriter, r *http.Request)
	GetTaxReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// intQuery parses an optional integer parameter; absent means 0.
func intQuery(r *http.Request, key string) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// GetPayrollSummary handles GET /reports/payroll-summary
func (h *reportHandlerImpl) GetPayrollSummary(w http.ResponseWriter, r *http.Request) {
	req := report.PayrollSummaryRequest{
		StartMonth: r.URL.Query().Get("startMonth"),
		EndMonth:   r.URL.Query().Get("endMonth"),
	}

	result, err := h.reportService.GeneratePayrollSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDepartmentWise handles GET /reports/department-wise
func (h *reportHandlerImpl) GetDepartmentWise(w http.ResponseWriter, r *http.Request) {
	req := report.DepartmentReportRequest{Month: r.URL.Query().Get("month")}

	result, err := h.reportService.GenerateDepartmentReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAttendanceSummary handles GET /reports/attendance-summary
func (h *reportHandlerImpl) GetAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	month, ok := intQuery(r, "month")
	if !ok {
		response.BadRequest(w, "invalid month parameter", nil)
		return
	}
	year, ok := intQuery(r, "year")
	if !ok {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	result, err := h.reportService.GenerateAttendanceSummary(r.Context(), report.AttendanceSummaryRequest{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetLeaveSummary handles GET /reports/leave-summary
func (h *reportHandlerImpl) GetLeaveSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := intQuery(r, "year")
	if !ok {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	result, err := h.reportService.GenerateLeaveSummary(r.Context(), report.YearRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTaxReport handles GET /reports/tax-report
func (h *reportHandlerImpl) GetTaxReport(w http.ResponseWriter, r *http.Request) {
	year, ok := intQuery(r, "year")
	if !ok {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	result, err := h.reportService.GenerateTaxReport(r.Context(), report.YearRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
