package leave

import (
	"context"
	"time"
)

type BalanceRepository interface {
	Create(ctx context.Context, b Balance) (Balance, error)
	// Get returns the (employee, year) balance or ErrLeaveBalanceNotFound.
	Get(ctx context.Context, employeeID string, year int) (Balance, error)
	AddUsed(ctx context.Context, employeeID string, year int, leaveType LeaveType, days int) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, a Application) (Application, error)
	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (Application, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Application, error)
	ListPending(ctx context.Context) ([]Application, error)
	Decide(ctx context.Context, id string, status Status, approverID *string, decidedAt time.Time, comments *string) error
}
