package leave

import (
	"time"
)

type LeaveType string

const (
	LeaveTypeCasual LeaveType = "casual"
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeEarned LeaveType = "earned"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeCasual, LeaveTypeSick, LeaveTypeEarned, LeaveTypeUnpaid:
		return true
	}
	return false
}

// Tracked reports whether the type draws from a balance.
func (t LeaveType) Tracked() bool {
	return t != LeaveTypeUnpaid
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Default yearly entitlement for a new balance row.
const (
	DefaultCasualDays = 12
	DefaultSickDays   = 12
	DefaultEarnedDays = 15
)

type Balance struct {
	ID          string
	EmployeeID  string
	Year        int
	CasualTotal int
	CasualUsed  int
	SickTotal   int
	SickUsed    int
	EarnedTotal int
	EarnedUsed  int
}

func NewDefaultBalance(employeeID string, year int) Balance {
	return Balance{
		EmployeeID:  employeeID,
		Year:        year,
		CasualTotal: DefaultCasualDays,
		SickTotal:   DefaultSickDays,
		EarnedTotal: DefaultEarnedDays,
	}
}

// Remaining returns total - used for a tracked type; ok is false for unpaid.
func (b Balance) Remaining(t LeaveType) (remaining int, ok bool) {
	switch t {
	case LeaveTypeCasual:
		return b.CasualTotal - b.CasualUsed, true
	case LeaveTypeSick:
		return b.SickTotal - b.SickUsed, true
	case LeaveTypeEarned:
		return b.EarnedTotal - b.EarnedUsed, true
	}
	return 0, false
}

type Application struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType
	FromDate   time.Time
	ToDate     time.Time
	TotalDays  int
	Reason     *string
	Status     Status
	ApprovedBy *string
	DecidedAt  *time.Time
	Comments   *string
	AppliedAt  time.Time

	// DTO / Join
	EmployeeName  *string
	EmployeeEmail *string
}

func (a Application) IsPending() bool {
	return a.Status == StatusPending
}

// InclusiveDays counts calendar days from from to to, both included.
func InclusiveDays(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

// Days lists each calendar date in [from, to].
func Days(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
