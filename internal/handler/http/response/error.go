package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrMissingClaims):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrWrongPassword):
		BadRequest(w, "Current password is incorrect", nil)
	case errors.Is(err, auth.ErrOAuthDisabled):
		NotFound(w, "Google login is not configured")
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		BadRequest(w, "OAuth state mismatch", nil)
	case errors.Is(err, oauth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrSelfAccessOnly):
		Forbidden(w, "You may only access your own records")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUsernameExists):
		Conflict(w, "Username already taken")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, "Employee is already inactive")
	case errors.Is(err, employee.ErrNoFieldsToUpdate):
		BadRequest(w, "No fields to update", nil)

	// Salary domain errors
	case errors.Is(err, salary.ErrSalaryStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, salary.ErrNoEffectiveStructure):
		NotFound(w, "No salary structure in effect")
	case errors.Is(err, salary.ErrEffectiveFromNotAfter), errors.Is(err, salary.ErrOverlapsPrevious):
		Conflict(w, err.Error())
	case errors.Is(err, salary.ErrStructureAlreadyClosed):
		Conflict(w, "Salary structure is already closed")
	case errors.Is(err, salary.ErrCloseBeforeStart):
		Conflict(w, err.Error())
	case errors.Is(err, salary.ErrNoFieldsToUpdate):
		BadRequest(w, "No fields to update", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNoFieldsToUpdate):
		BadRequest(w, "No fields to update", nil)
	case errors.Is(err, attendance.ErrEmptyBulkRequest):
		BadRequest(w, "Bulk request has no records", nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveApplicationNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed):
		Conflict(w, "Leave application already processed")
	case errors.Is(err, leave.ErrEmployeeInactive):
		Conflict(w, "Inactive employees cannot apply for leave")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrPayslipNotGenerated), errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "Payslip has not been generated")
	case errors.Is(err, payroll.ErrBatchFailed):
		slog.Error("payroll batch failed", "error", err)
		Error(w, http.StatusInternalServerError, "PAYROLL_FAILED", "Failed to process payroll")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
