package dashboard

import "context"

type DashboardService interface {
	// GetDashboard defaults month to the current one.
	GetDashboard(ctx context.Context, month string) (DashboardResponse, error)
}
