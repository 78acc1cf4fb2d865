package payroll

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

type PayslipGenerator interface {
	Generate(ctx context.Context, d payslip.Data) (string, error)
}

type PayslipNotifier interface {
	SendPayslip(to, employeeName, month, attachmentPath string) error
}

// Delivered is a committed payroll record awaiting its payslip.
type Delivered struct {
	Employee employee.Employee
	Record   payroll.Record
}

// Delivery renders payslips and mails them. Every step is best-effort:
// failures are logged and never change a committed payroll outcome.
type Delivery struct {
	generator PayslipGenerator
	notifier  PayslipNotifier
	records   RecordStore
}

func NewDelivery(generator PayslipGenerator, notifier PayslipNotifier, records RecordStore) *Delivery {
	return &Delivery{generator: generator, notifier: notifier, records: records}
}

func (d *Delivery) DeliverAll(ctx context.Context, month period.Month, items []Delivered) {
	for _, item := range items {
		d.Deliver(ctx, month, item)
	}
}

// Deliver returns the stored payslip path, or "" when generation failed.
// The email is still attempted without an attachment in that case.
func (d *Delivery) Deliver(ctx context.Context, month period.Month, item Delivered) string {
	emp, rec := item.Employee, item.Record

	path, err := d.generator.Generate(ctx, payslip.Data{Employee: emp, Record: rec, Month: month})
	if err != nil {
		slog.Warn("failed to generate payslip",
			"employee_id", emp.ID,
			"payroll_id", rec.ID,
			"month", month.String(),
			"error", err,
		)
		path = ""
	} else if err := d.records.UpdatePayslipPath(ctx, rec.ID, path); err != nil {
		slog.Warn("failed to save payslip path",
			"employee_id", emp.ID,
			"payroll_id", rec.ID,
			"error", err,
		)
	}

	if err := d.notifier.SendPayslip(emp.Email, emp.Name, month.Title(), path); err != nil {
		slog.Warn("failed to send payslip email",
			"employee_id", emp.ID,
			"payroll_id", rec.ID,
			"error", err,
		)
	}

	return path
}
