package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

type EmployeeLister interface {
	ListActive(ctx context.Context) ([]employee.Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]employee.Employee, error)
}

type SalaryResolver interface {
	GetEffective(ctx context.Context, employeeID string, day time.Time) (salary.SalaryStructure, error)
}

type AttendanceAggregator interface {
	MonthlySummary(ctx context.Context, employeeID string, month period.Month) (attendance.MonthlySummary, error)
}

type RecordStore interface {
	Upsert(ctx context.Context, r payroll.Record) (string, error)
	UpdatePayslipPath(ctx context.Context, id string, path string) error
}

// Batch is one payroll run request.
type Batch struct {
	Month       period.Month
	EmployeeIDs []string
	ProcessedBy *string
}

// Processor runs the monthly payroll batch: one transaction for the whole
// batch, one savepoint per employee.
type Processor struct {
	tx         database.Transactor
	employees  EmployeeLister
	salaries   SalaryResolver
	attendance AttendanceAggregator
	records    RecordStore
	calc       *Calculator
	delivery   *Delivery
	now        func() time.Time
}

func NewProcessor(
	tx database.Transactor,
	employees EmployeeLister,
	salaries SalaryResolver,
	attendance AttendanceAggregator,
	records RecordStore,
	calc *Calculator,
	delivery *Delivery,
) *Processor {
	return &Processor{
		tx:         tx,
		employees:  employees,
		salaries:   salaries,
		attendance: attendance,
		records:    records,
		calc:       calc,
		delivery:   delivery,
		now:        time.Now,
	}
}

// target is one attempted employee. emp is nil when a requested ID does not exist.
type target struct {
	id  string
	emp *employee.Employee
}

// Process runs the batch. Per-employee failures are reported in the
// response; only transaction failures are returned as errors, in which case
// nothing was committed. Cancelling ctx stops the loop before the next
// employee and commits the work done so far.
func (p *Processor) Process(ctx context.Context, b Batch) (payroll.ProcessPayrollResponse, error) {
	targets, err := p.targets(ctx, b.EmployeeIDs)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, fmt.Errorf("%w: %w", payroll.ErrBatchFailed, err)
	}

	var (
		resp      payroll.ProcessPayrollResponse
		processed []Delivered
	)

	// The transaction must outlive a cancelled request so completed work commits.
	txCtx := context.WithoutCancel(ctx)
	err = p.tx.WithinTransaction(txCtx, func(txCtx context.Context) error {
		resp = payroll.ProcessPayrollResponse{
			Month:   b.Month.String(),
			Results: make([]payroll.EmployeeResult, 0, len(targets)),
		}
		processed = processed[:0]

		for _, t := range targets {
			if ctx.Err() != nil {
				resp.Cancelled = true
				slog.Warn("payroll batch cancelled",
					"month", b.Month.String(),
					"attempted", len(resp.Results),
					"remaining", len(targets)-len(resp.Results),
				)
				break
			}

			result, rec, err := p.processOne(txCtx, t, b)
			if err != nil {
				return err
			}
			resp.Add(result)
			if rec != nil {
				processed = append(processed, Delivered{Employee: *t.emp, Record: *rec})
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("payroll batch failed", "month", b.Month.String(), "error", err)
		return payroll.ProcessPayrollResponse{}, fmt.Errorf("%w: %w", payroll.ErrBatchFailed, err)
	}

	slog.Info("payroll batch committed",
		"month", resp.Month,
		"processed", resp.Processed,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
		"cancelled", resp.Cancelled,
	)

	if p.delivery != nil {
		p.delivery.DeliverAll(context.WithoutCancel(ctx), b.Month, processed)
	}

	return resp, nil
}

func (p *Processor) targets(ctx context.Context, ids []string) ([]target, error) {
	if len(ids) == 0 {
		emps, err := p.employees.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active employees: %w", err)
		}
		targets := make([]target, len(emps))
		for i := range emps {
			targets[i] = target{id: emps[i].ID, emp: &emps[i]}
		}
		return targets, nil
	}

	emps, err := p.employees.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	byID := make(map[string]*employee.Employee, len(emps))
	for i := range emps {
		byID[emps[i].ID] = &emps[i]
	}

	// Requested order is preserved.
	targets := make([]target, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, target{id: id, emp: byID[id]})
	}
	return targets, nil
}

// processOne returns the employee's outcome, and the stored record on
// success. A non-nil error is batch-fatal.
func (p *Processor) processOne(ctx context.Context, t target, b Batch) (payroll.EmployeeResult, *payroll.Record, error) {
	if t.emp == nil {
		return errorResult(t.id, "", employee.ErrEmployeeNotFound.Error()), nil, nil
	}
	emp := t.emp
	if !emp.IsActive() {
		return skippedResult(emp, "employee is inactive"), nil, nil
	}

	var (
		rec     payroll.Record
		skipped bool
	)
	err := p.tx.WithinSavepoint(ctx, func(ctx context.Context) error {
		structure, err := p.salaries.GetEffective(ctx, emp.ID, b.Month.LastDay())
		if errors.Is(err, salary.ErrSalaryStructureNotFound) {
			skipped = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve salary: %w", err)
		}

		summary, err := p.attendance.MonthlySummary(ctx, emp.ID, b.Month)
		if err != nil {
			return fmt.Errorf("failed to aggregate attendance: %w", err)
		}

		rec = payroll.Record{
			EmployeeID:  emp.ID,
			Month:       b.Month.String(),
			Breakdown:   p.calc.Compute(ctx, structure, summary),
			ProcessedBy: b.ProcessedBy,
			ProcessedAt: p.now(),
		}

		id, err := p.records.Upsert(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to save payroll record: %w", err)
		}
		rec.ID = id
		return nil
	})

	switch {
	case errors.Is(err, database.ErrTxAborted):
		return payroll.EmployeeResult{}, nil, err
	case err != nil:
		slog.Error("payroll failed for employee",
			"employee_id", emp.ID,
			"month", b.Month.String(),
			"error", err,
		)
		return errorResult(emp.ID, emp.Name, err.Error()), nil, nil
	case skipped:
		return skippedResult(emp, "no salary structure effective for "+b.Month.String()), nil, nil
	}

	net := rec.NetSalary
	id := rec.ID
	return payroll.EmployeeResult{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Status:     payroll.OutcomeSuccess,
		PayrollID:  &id,
		NetSalary:  &net,
	}, &rec, nil
}

func skippedResult(emp *employee.Employee, msg string) payroll.EmployeeResult {
	return payroll.EmployeeResult{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Status:     payroll.OutcomeSkipped,
		Message:    &msg,
	}
}

func errorResult(id, name, msg string) payroll.EmployeeResult {
	return payroll.EmployeeResult{
		EmployeeID: id,
		Name:       name,
		Status:     payroll.OutcomeError,
		Message:    &msg,
	}
}
