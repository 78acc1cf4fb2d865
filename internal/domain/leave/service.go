package leave

import "context"

type LeaveService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (ApplicationResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]ApplicationResponse, error)
	ListPending(ctx context.Context) ([]ApplicationResponse, error)
	// GetBalance returns the current year's balance.
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	// Approve marks the application approved, consumes balance and writes leave attendance for the range.
	Approve(ctx context.Context, req DecisionRequest) (ApplicationResponse, error)
	Reject(ctx context.Context, req DecisionRequest) (ApplicationResponse, error)
}
