package payroll

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMonth(t *testing.T, s string) period.Month {
	t.Helper()
	m, err := period.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func statuses(resp payroll.ProcessPayrollResponse) []payroll.OutcomeStatus {
	out := make([]payroll.OutcomeStatus, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.Status
	}
	return out
}

func TestProcess_SkipsEmployeeWithoutSalary(t *testing.T) {
	h := newHarness()
	s := structure("e1", 30000, "2025-03-01") // starts after January
	h.add(emp("e1", "Asha"), &s, present(30))
	h.add(emp("e2", "Bala"), nil, present(30))

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)

	assert.Equal(t, []payroll.OutcomeStatus{payroll.OutcomeSkipped, payroll.OutcomeSkipped}, statuses(resp))
	assert.Equal(t, 2, resp.Skipped)
	assert.Zero(t, resp.Processed)
	assert.Zero(t, h.records.count())
	assert.Empty(t, h.generator.calls)
	require.NotNil(t, resp.Results[0].Message)
	assert.Contains(t, *resp.Results[0].Message, "2025-01")
}

func TestProcess_FullMonthPresent(t *testing.T) {
	h := newHarness()
	s := structure("e1", 30000, "2024-04-01")
	h.add(emp("e1", "Asha"), &s, present(30))

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, payroll.OutcomeSuccess, r.Status)
	require.NotNil(t, r.PayrollID)
	require.NotNil(t, r.NetSalary)
	assert.Equal(t, "30000.00", r.NetSalary.StringFixed(2))
	assert.Equal(t, "Payroll processed for 1 employees", resp.Message())

	rec, ok := h.records.get("e1", "2025-01")
	require.True(t, ok)
	assert.Equal(t, "30000.00", rec.BasicSalary.StringFixed(2))
	assert.Equal(t, "30000.00", rec.GrossSalary.StringFixed(2))
	assert.Equal(t, *r.PayrollID, rec.ID)
}

func TestProcess_HalfMonthPresent(t *testing.T) {
	h := newHarness()
	s := structure("e1", 30000, "2024-04-01")
	h.add(emp("e1", "Asha"), &s, attendance.MonthlySummary{DaysPresent: 15, DaysAbsent: 15, OvertimeHours: decimal.Zero})

	_, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)

	rec, ok := h.records.get("e1", "2025-01")
	require.True(t, ok)
	assert.Equal(t, "15000.00", rec.BasicSalary.StringFixed(2))
	assert.Equal(t, 15, rec.DaysAbsent)
}

func TestProcess_UsesStructureEffectiveAtMonthEnd(t *testing.T) {
	h := newHarness()
	old := structure("e1", 20000, "2024-01-01")
	closed := old.EffectiveFrom.AddDate(1, 0, 13) // 2025-01-14
	old.EffectiveTo = &closed
	raise := structure("e1", 40000, "2025-01-15")
	h.add(emp("e1", "Asha"), &old, present(30))
	h.salaries.versions["e1"] = append(h.salaries.versions["e1"], raise)

	_, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)

	rec, _ := h.records.get("e1", "2025-01")
	assert.Equal(t, "40000.00", rec.BasicSalary.StringFixed(2))
}

func TestProcess_IsIdempotent(t *testing.T) {
	h := newHarness()
	h.oracle.rate = decimal.RequireFromString("0.05")
	for _, id := range []string{"e1", "e2"} {
		s := structure(id, 45000, "2024-01-01")
		h.add(emp(id, id), &s, attendance.MonthlySummary{DaysPresent: 22, DaysHalf: 2, OvertimeHours: decimal.RequireFromString("3")})
	}
	month := mustMonth(t, "2025-01")

	first, err := h.processor.Process(context.Background(), Batch{Month: month})
	require.NoError(t, err)
	second, err := h.processor.Process(context.Background(), Batch{Month: month})
	require.NoError(t, err)

	assert.Equal(t, 2, h.records.count(), "second run updates, not duplicates")
	for i := range first.Results {
		assert.Equal(t, *first.Results[i].PayrollID, *second.Results[i].PayrollID)
		assert.True(t, first.Results[i].NetSalary.Equal(*second.Results[i].NetSalary))
	}
}

func TestProcess_TaxFailureIsIsolated(t *testing.T) {
	h := newHarness()
	h.oracle.rate = decimal.RequireFromString("0.1")
	// e2's annual income: 50000 × 12
	h.oracle.failFor["600000.00"] = true

	s1 := structure("e1", 30000, "2024-01-01")
	s2 := structure("e2", 50000, "2024-01-01")
	s3 := structure("e3", 20000, "2024-01-01")
	h.add(emp("e1", "A"), &s1, present(30))
	h.add(emp("e2", "B"), &s2, present(30))
	h.add(emp("e3", "C"), &s3, present(30))

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Processed)

	r1, _ := h.records.get("e1", "2025-01")
	r2, _ := h.records.get("e2", "2025-01")
	r3, _ := h.records.get("e3", "2025-01")
	assert.Equal(t, "3000.00", r1.TDS.StringFixed(2))
	assert.True(t, r2.TDS.IsZero())
	assert.Equal(t, "50000.00", r2.NetSalary.StringFixed(2))
	assert.Equal(t, "2000.00", r3.TDS.StringFixed(2))
}

func TestProcess_ResolverErrorIsolatedToEmployee(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"e1", "e2", "e3"} {
		s := structure(id, 30000, "2024-01-01")
		h.add(emp(id, "Employee "+id), &s, present(30))
	}
	h.salaries.errs["e2"] = errors.New("unexpected salary lookup failure")

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, []payroll.OutcomeStatus{payroll.OutcomeSuccess, payroll.OutcomeError, payroll.OutcomeSuccess}, statuses(resp))
	require.NotNil(t, resp.Results[1].Message)
	assert.Contains(t, *resp.Results[1].Message, "unexpected salary lookup failure")
	assert.Nil(t, resp.Results[1].PayrollID)
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, 1, resp.Failed)

	_, ok1 := h.records.get("e1", "2025-01")
	_, ok2 := h.records.get("e2", "2025-01")
	_, ok3 := h.records.get("e3", "2025-01")
	assert.True(t, ok1)
	assert.False(t, ok2)
	assert.True(t, ok3)
}

func TestProcess_FailedEmployeeLeavesNoPartialRow(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"e1", "e2"} {
		s := structure(id, 30000, "2024-01-01")
		h.add(emp(id, id), &s, present(30))
	}
	h.records.failAfterWrite["e1"] = true

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)

	assert.Equal(t, []payroll.OutcomeStatus{payroll.OutcomeError, payroll.OutcomeSuccess}, statuses(resp))
	_, ok := h.records.get("e1", "2025-01")
	assert.False(t, ok, "savepoint rollback removes the half-written row")
	assert.Equal(t, 1, h.records.count())
}

func TestProcess_AttendanceErrorIsPerEmployee(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"e1", "e2"} {
		s := structure(id, 30000, "2024-01-01")
		h.add(emp(id, id), &s, present(30))
	}
	h.attendance.errs["e2"] = errors.New("bad attendance row")

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)
	assert.Equal(t, []payroll.OutcomeStatus{payroll.OutcomeSuccess, payroll.OutcomeError}, statuses(resp))
}

func TestProcess_CommitFailureIsBatchFatal(t *testing.T) {
	h := newHarness()
	s := structure("e1", 30000, "2024-01-01")
	h.add(emp("e1", "A"), &s, present(30))
	h.tx.commitErr = errors.New("connection reset")

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrBatchFailed)
	assert.ErrorIs(t, err, database.ErrTxAborted)
	assert.Empty(t, resp.Results)
	assert.Zero(t, h.records.count())
	assert.Empty(t, h.generator.calls, "nothing is delivered for a rolled back batch")
	assert.Empty(t, h.notifier.sent)
}

func TestProcess_SavepointFailureIsBatchFatal(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"e1", "e2"} {
		s := structure(id, 30000, "2024-01-01")
		h.add(emp(id, id), &s, present(30))
	}
	h.salaries.errs["e2"] = errors.New("boom")
	h.tx.savepointRollbackErr = errors.New("connection lost")

	_, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrBatchFailed)
	assert.Zero(t, h.records.count(), "e1's row is rolled back with the batch")
}

func TestProcess_ListFailureIsBatchFatal(t *testing.T) {
	h := newHarness()
	h.employees.listErr = errors.New("pool exhausted")

	_, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	assert.ErrorIs(t, err, payroll.ErrBatchFailed)
}

func TestProcess_CancellationCommitsCompletedWork(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"e1", "e2", "e3"} {
		s := structure(id, 30000, "2024-01-01")
		h.add(emp(id, id), &s, present(30))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.attendance.onCall = func(employeeID string) {
		if employeeID == "e1" {
			cancel()
		}
	}

	resp, err := h.processor.Process(ctx, Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)

	assert.True(t, resp.Cancelled)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, payroll.OutcomeSuccess, resp.Results[0].Status)
	assert.Equal(t, 1, h.records.count())
	assert.Contains(t, resp.Message(), "cancelled")
	assert.Equal(t, []string{"e1"}, h.generator.calls, "committed work is still delivered")
}

func TestProcess_ExplicitEmployeeIDs(t *testing.T) {
	h := newHarness()
	s1 := structure("e1", 30000, "2024-01-01")
	s2 := structure("e2", 30000, "2024-01-01")
	h.add(emp("e1", "Zed"), &s1, present(30))
	inactive := emp("e2", "Amy")
	inactive.Status = employee.StatusInactive
	h.add(inactive, &s2, present(30))
	s3 := structure("e3", 30000, "2024-01-01")
	h.add(emp("e3", "Mia"), &s3, present(30))

	resp, err := h.processor.Process(context.Background(), Batch{
		Month:       mustMonth(t, "2025-01"),
		EmployeeIDs: []string{"e1", "missing", "e2"},
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "e1", resp.Results[0].EmployeeID)
	assert.Equal(t, payroll.OutcomeSuccess, resp.Results[0].Status)
	assert.Equal(t, "missing", resp.Results[1].EmployeeID)
	assert.Equal(t, payroll.OutcomeError, resp.Results[1].Status)
	assert.Equal(t, "e2", resp.Results[2].EmployeeID)
	assert.Equal(t, payroll.OutcomeSkipped, resp.Results[2].Status)

	_, ok := h.records.get("e3", "2025-01")
	assert.False(t, ok, "only requested employees are processed")
}

func TestProcess_RecordsProcessedBy(t *testing.T) {
	h := newHarness()
	s := structure("e1", 30000, "2024-01-01")
	h.add(emp("e1", "A"), &s, present(30))
	by := "user-7"

	_, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01"), ProcessedBy: &by})
	require.NoError(t, err)

	rec, _ := h.records.get("e1", "2025-01")
	require.NotNil(t, rec.ProcessedBy)
	assert.Equal(t, "user-7", *rec.ProcessedBy)
}

func TestProcess_DeliveryIsBestEffort(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"e1", "e2", "e3"} {
		s := structure(id, 30000, "2024-01-01")
		h.add(emp(id, id), &s, present(30))
	}
	h.generator.failFor["e1"] = true
	h.notifier.failFor["e2@example.com"] = true

	resp, err := h.processor.Process(context.Background(), Batch{Month: mustMonth(t, "2025-01")})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Processed)

	require.Len(t, h.notifier.sent, 3, "email is attempted even when the document failed")
	assert.Equal(t, "", h.notifier.sent[0].path)
	assert.Equal(t, "January 2025", h.notifier.sent[0].month)
	assert.Equal(t, "payslips/e2/payslip_e2_2025-01.pdf", h.notifier.sent[1].path)

	r1, _ := h.records.get("e1", "2025-01")
	r2, _ := h.records.get("e2", "2025-01")
	r3, _ := h.records.get("e3", "2025-01")
	assert.Nil(t, r1.PayslipPath)
	require.NotNil(t, r2.PayslipPath)
	require.NotNil(t, r3.PayslipPath)
	assert.Equal(t, "payslips/e3/payslip_e3_2025-01.pdf", *r3.PayslipPath)
}
