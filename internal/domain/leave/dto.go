package leave

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type ApplyLeaveRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	LeaveType  string  `json:"leave_type" validate:"required,oneof=casual sick earned unpaid"`
	FromDate   string  `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate     string  `json:"to_date" validate:"required,datetime=2006-01-02"`
	Reason     *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

func (r *ApplyLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}

	from, _ := validator.ParseDate(r.FromDate)
	to, _ := validator.ParseDate(r.ToDate)
	if to.Before(from) {
		errs.Add("to_date", ErrInvalidDateRange.Error())
	} else if time.Time(from).Year() != time.Time(to).Year() {
		errs.Add("to_date", ErrLeaveSpansYears.Error())
	}
	return errs.OrNil()
}

// Range returns the parsed dates; call after Validate.
func (r *ApplyLeaveRequest) Range() (from, to time.Time) {
	from, _ = time.Parse("2006-01-02", r.FromDate)
	to, _ = time.Parse("2006-01-02", r.ToDate)
	return from, to
}

type DecisionRequest struct {
	ID       string  `json:"-"`
	Comments *string `json:"comments,omitempty" validate:"omitempty,max=1000"`
}

func (r *DecisionRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type ApplicationResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	LeaveType    string  `json:"leave_type"`
	FromDate     string  `json:"from_date"`
	ToDate       string  `json:"to_date"`
	TotalDays    int     `json:"total_days"`
	Reason       *string `json:"reason,omitempty"`
	Status       string  `json:"status"`
	ApprovedBy   *string `json:"approved_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	Comments     *string `json:"comments,omitempty"`
	AppliedAt    string  `json:"applied_at"`
}

func NewApplicationResponse(a Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		LeaveType:    string(a.LeaveType),
		FromDate:     a.FromDate.Format("2006-01-02"),
		ToDate:       a.ToDate.Format("2006-01-02"),
		TotalDays:    a.TotalDays,
		Reason:       a.Reason,
		Status:       string(a.Status),
		ApprovedBy:   a.ApprovedBy,
		Comments:     a.Comments,
		AppliedAt:    a.AppliedAt.Format(time.RFC3339),
	}
	if a.DecidedAt != nil {
		decided := a.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}

type CategoryBalance struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type BalanceResponse struct {
	EmployeeID string          `json:"employee_id"`
	Year       int             `json:"year"`
	Casual     CategoryBalance `json:"casual"`
	Sick       CategoryBalance `json:"sick"`
	Earned     CategoryBalance `json:"earned"`
}

func NewBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		Year:       b.Year,
		Casual:     CategoryBalance{Total: b.CasualTotal, Used: b.CasualUsed, Remaining: b.CasualTotal - b.CasualUsed},
		Sick:       CategoryBalance{Total: b.SickTotal, Used: b.SickUsed, Remaining: b.SickTotal - b.SickUsed},
		Earned:     CategoryBalance{Total: b.EarnedTotal, Used: b.EarnedUsed, Remaining: b.EarnedTotal - b.EarnedUsed},
	}
}
