package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const statusOneOf = "present absent half_day leave"

type MarkAttendanceRequest struct {
	EmployeeID    string           `json:"employee_id" validate:"required"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status        string           `json:"status" validate:"required,oneof=present absent half_day leave"`
	WorkingHours  *decimal.Decimal `json:"working_hours,omitempty" validate:"omitempty,decimal_gte0"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty" validate:"omitempty,decimal_gte0"`
	Remarks       *string          `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

func (r *MarkAttendanceRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, validateHours(r.WorkingHours, r.OvertimeHours, "")...)
	return errs.OrNil()
}

func validateHours(working, overtime *decimal.Decimal, prefix string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if working != nil && working.GreaterThan(decimal.NewFromInt(24)) {
		errs.Add(prefix+"working_hours", "working_hours must not exceed 24")
	}
	if overtime != nil && overtime.GreaterThan(decimal.NewFromInt(24)) {
		errs.Add(prefix+"overtime_hours", "overtime_hours must not exceed 24")
	}
	return errs
}

// ToEntity fills defaults (8 working hours, 0 overtime) for omitted values.
func (r *MarkAttendanceRequest) ToEntity(date time.Time, markedBy *string) Attendance {
	a := Attendance{
		EmployeeID:    r.EmployeeID,
		Date:          date,
		Status:        Status(r.Status),
		WorkingHours:  DefaultWorkingHours,
		OvertimeHours: decimal.Zero,
		Remarks:       r.Remarks,
		MarkedBy:      markedBy,
	}
	if r.WorkingHours != nil {
		a.WorkingHours = *r.WorkingHours
	}
	if r.OvertimeHours != nil {
		a.OvertimeHours = *r.OvertimeHours
	}
	return a
}

type BulkAttendanceRecord struct {
	EmployeeID    string           `json:"employee_id"`
	Status        string           `json:"status"`
	WorkingHours  *decimal.Decimal `json:"working_hours,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty"`
	Remarks       *string          `json:"remarks,omitempty"`
}

type BulkMarkAttendanceRequest struct {
	Date    string                 `json:"date"`
	Records []BulkAttendanceRecord `json:"records"`
}

func (r *BulkMarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be a valid date (YYYY-MM-DD)")
	}
	if len(r.Records) == 0 {
		errs.Add("records", "records must contain at least one entry")
	}
	for i, rec := range r.Records {
		prefix := fmt.Sprintf("records[%d].", i)
		if validator.IsEmpty(rec.EmployeeID) {
			errs.Add(prefix+"employee_id", "employee_id is required")
		}
		if !Status(rec.Status).IsValid() {
			errs.Add(prefix+"status", "status must be one of: "+statusOneOf)
		}
		if rec.WorkingHours != nil && rec.WorkingHours.IsNegative() {
			errs.Add(prefix+"working_hours", "working_hours must be a non-negative amount")
		}
		if rec.OvertimeHours != nil && rec.OvertimeHours.IsNegative() {
			errs.Add(prefix+"overtime_hours", "overtime_hours must be a non-negative amount")
		}
		errs = append(errs, validateHours(rec.WorkingHours, rec.OvertimeHours, prefix)...)
	}
	return errs.OrNil()
}

// Items expands the bulk request into single-mark requests sharing Date.
func (r *BulkMarkAttendanceRequest) Items() []MarkAttendanceRequest {
	items := make([]MarkAttendanceRequest, 0, len(r.Records))
	for _, rec := range r.Records {
		items = append(items, MarkAttendanceRequest{
			EmployeeID:    rec.EmployeeID,
			Date:          r.Date,
			Status:        rec.Status,
			WorkingHours:  rec.WorkingHours,
			OvertimeHours: rec.OvertimeHours,
			Remarks:       rec.Remarks,
		})
	}
	return items
}

type UpdateAttendanceRequest struct {
	ID            string           `json:"-"`
	Status        *string          `json:"status,omitempty" validate:"omitempty,oneof=present absent half_day leave"`
	WorkingHours  *decimal.Decimal `json:"working_hours,omitempty" validate:"omitempty,decimal_gte0"`
	OvertimeHours *decimal.Decimal `json:"overtime_hours,omitempty" validate:"omitempty,decimal_gte0"`
	Remarks       *string          `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, validateHours(r.WorkingHours, r.OvertimeHours, "")...)
	return errs.OrNil()
}

func (r *UpdateAttendanceRequest) IsEmpty() bool {
	return r.Status == nil && r.WorkingHours == nil && r.OvertimeHours == nil && r.Remarks == nil
}

type AttendanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	WorkingHours  decimal.Decimal `json:"working_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Remarks       *string         `json:"remarks,omitempty"`
	MarkedBy      *string         `json:"marked_by,omitempty"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		EmployeeName:  a.EmployeeName,
		Date:          a.Date.Format("2006-01-02"),
		Status:        string(a.Status),
		WorkingHours:  a.WorkingHours,
		OvertimeHours: a.OvertimeHours,
		Remarks:       a.Remarks,
		MarkedBy:      a.MarkedBy,
	}
}

type SummaryResponse struct {
	TotalDays     int             `json:"total_days"`
	Present       int             `json:"present"`
	Absent        int             `json:"absent"`
	HalfDay       int             `json:"half_day"`
	Leave         int             `json:"leave"`
	EffectiveDays decimal.Decimal `json:"effective_days"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

func NewSummaryResponse(s MonthlySummary) SummaryResponse {
	return SummaryResponse{
		TotalDays:     s.TotalDays(),
		Present:       s.DaysPresent,
		Absent:        s.DaysAbsent,
		HalfDay:       s.DaysHalf,
		Leave:         s.DaysLeave,
		EffectiveDays: s.EffectiveDays(),
		TotalHours:    s.TotalHours,
		OvertimeHours: s.OvertimeHours,
	}
}

// Summarize folds records into a MonthlySummary.
func Summarize(records []Attendance) MonthlySummary {
	s := MonthlySummary{OvertimeHours: decimal.Zero, TotalHours: decimal.Zero}
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			s.DaysPresent++
		case StatusAbsent:
			s.DaysAbsent++
		case StatusHalfDay:
			s.DaysHalf++
		case StatusLeave:
			s.DaysLeave++
		}
		s.OvertimeHours = s.OvertimeHours.Add(r.OvertimeHours)
		s.TotalHours = s.TotalHours.Add(r.WorkingHours)
	}
	return s
}

type EmployeeAttendanceResponse struct {
	EmployeeID string               `json:"employee_id"`
	Month      *string              `json:"month,omitempty"`
	Records    []AttendanceResponse `json:"records"`
	Summary    SummaryResponse      `json:"summary"`
}

type BulkMarkAttendanceResponse struct {
	Date   string `json:"date"`
	Marked int    `json:"marked"`
}
