package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

type PayrollJobs struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{payrollService: payrollService, now: time.Now}
}

// RegisterJobs is a no-op for an empty schedule.
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, schedule string) error {
	if schedule == "" {
		return nil
	}
	return scheduler.AddJob("process_previous_month_payroll", schedule, j.ProcessPreviousMonth)
}

// ProcessPreviousMonth runs payroll for every active employee for the month before now.
func (j *PayrollJobs) ProcessPreviousMonth(ctx context.Context) error {
	month := period.MonthOf(j.now()).Previous()
	slog.Info("Cron: Starting scheduled payroll", "month", month.String())

	resp, err := j.payrollService.ProcessPayroll(ctx, payroll.ProcessPayrollRequest{Month: month.String()})
	if err != nil {
		return fmt.Errorf("scheduled payroll for %s: %w", month, err)
	}

	slog.Info("Cron: Scheduled payroll finished",
		"month", resp.Month,
		"processed", resp.Processed,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
		"cancelled", resp.Cancelled,
	)
	return nil
}
