package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionLogin            Action = "LOGIN"
	ActionCreateEmployee   Action = "CREATE_EMPLOYEE"
	ActionUpdateEmployee   Action = "UPDATE_EMPLOYEE"
	ActionDeleteEmployee   Action = "DELETE_EMPLOYEE"
	ActionCreateSalary     Action = "CREATE_SALARY"
	ActionUpdateSalary     Action = "UPDATE_SALARY"
	ActionCloseSalary      Action = "DELETE_SALARY"
	ActionMarkAttendance   Action = "MARK_ATTENDANCE"
	ActionUpdateAttendance Action = "UPDATE_ATTENDANCE"
	ActionApplyLeave       Action = "APPLY_LEAVE"
	ActionApproveLeave     Action = "APPROVE_LEAVE"
	ActionRejectLeave      Action = "REJECT_LEAVE"
	ActionProcessPayroll   Action = "PROCESS_PAYROLL"
	ActionRegeneratePay    Action = "REGENERATE_PAYSLIP"
)

// Entry is one audit_logs row. TableName is required.
type Entry struct {
	ID        string
	UserID    *string
	Action    Action
	TableName string
	RecordID  *string
	IPAddress *string
	CreatedAt time.Time
}

type clientIPKey struct{}

// WithClientIP stores the caller's address for audit entries written later in
// the request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey{}).(string)
	return ip, ok && ip != ""
}
