package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Mark(w http.ResponseWriter, r *http.Request)
	BulkMark(w http.ResponseWriter, r *http.Request)
	GetByEmployee(w http.ResponseWriter, r *http.Request)
	GetByDate(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// monthQuery accepts ?month=YYYY-MM or ?month=M&year=YYYY. The service
// validates the result.
func monthQuery(r *http.Request) string {
	month := r.URL.Query().Get("month")
	year := r.URL.Query().Get("year")
	if month == "" || year == "" {
		return month
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%s-%02d", year, m)
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.MarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance marked successfully", result)
}

// BulkMark implements AttendanceHandler.
func (h *attendanceHandlerImpl) BulkMark(w http.ResponseWriter, r *http.Request) {
	var req attendance.BulkMarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.BulkMarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bulk attendance marked successfully", result)
}

// GetByEmployee implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetByEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetEmployeeAttendance(r.Context(), chi.URLParam(r, "empId"), monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetByDate implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetByDate(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetAttendanceByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.UpdateAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}
