package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave:
		return true
	}
	return false
}

var DefaultWorkingHours = decimal.NewFromInt(8)

type Attendance struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	Status        Status
	WorkingHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	Remarks       *string
	MarkedBy      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
}

// MonthlySummary is one employee's attendance for one month. Zero value means no rows.
type MonthlySummary struct {
	DaysPresent   int
	DaysAbsent    int
	DaysHalf      int
	DaysLeave     int
	OvertimeHours decimal.Decimal
	TotalHours    decimal.Decimal
}

var half = decimal.RequireFromString("0.5")

// EffectiveDays is the pro-ration basis: present + leave + half of half-days.
func (s MonthlySummary) EffectiveDays() decimal.Decimal {
	return decimal.NewFromInt(int64(s.DaysPresent + s.DaysLeave)).
		Add(decimal.NewFromInt(int64(s.DaysHalf)).Mul(half))
}

func (s MonthlySummary) TotalDays() int {
	return s.DaysPresent + s.DaysAbsent + s.DaysHalf + s.DaysLeave
}
