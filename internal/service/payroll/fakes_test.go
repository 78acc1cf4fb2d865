package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// memRecords is an in-memory payroll table keyed like the real one.
type memRecords struct {
	mu     sync.Mutex
	rows   map[string]payroll.Record // employee_id|month
	nextID int

	// failAfterWrite makes Upsert write the row and then fail for these employees.
	failAfterWrite map[string]bool
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[string]payroll.Record{}, failAfterWrite: map[string]bool{}}
}

func (m *memRecords) key(empID, month string) string { return empID + "|" + month }

func (m *memRecords) Upsert(ctx context.Context, r payroll.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.key(r.EmployeeID, r.Month)
	if existing, ok := m.rows[k]; ok {
		r.ID = existing.ID
		r.PayslipPath = existing.PayslipPath
	} else {
		m.nextID++
		r.ID = fmt.Sprintf("rec-%d", m.nextID)
	}
	m.rows[k] = r

	if m.failAfterWrite[r.EmployeeID] {
		return "", errors.New("constraint violation")
	}
	return r.ID, nil
}

func (m *memRecords) UpdatePayslipPath(ctx context.Context, id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, r := range m.rows {
		if r.ID == id {
			p := path
			r.PayslipPath = &p
			m.rows[k] = r
			return nil
		}
	}
	return payroll.ErrPayrollRecordNotFound
}

func (m *memRecords) get(empID, month string) (payroll.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[m.key(empID, month)]
	return r, ok
}

func (m *memRecords) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memRecords) snapshot() map[string]payroll.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]payroll.Record, len(m.rows))
	for k, v := range m.rows {
		out[k] = v
	}
	return out
}

func (m *memRecords) restore(s map[string]payroll.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = s
}

// fakeTx gives memRecords transaction and savepoint semantics.
type fakeTx struct {
	store *memRecords

	commitErr            error
	savepointRollbackErr error
	inTx                 bool
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.store.snapshot()
	f.inTx = true
	defer func() { f.inTx = false }()

	err := fn(ctx)
	if err == nil && f.commitErr != nil {
		err = fmt.Errorf("%w: commit: %w", database.ErrTxAborted, f.commitErr)
	}
	if err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

func (f *fakeTx) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	if !f.inTx {
		return fmt.Errorf("%w: savepoint outside transaction", database.ErrTxAborted)
	}
	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		if f.savepointRollbackErr != nil {
			return fmt.Errorf("%w: rollback savepoint: %w", database.ErrTxAborted, f.savepointRollbackErr)
		}
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeEmployees struct {
	all     []employee.Employee
	listErr error
}

func (f *fakeEmployees) ListActive(ctx context.Context) ([]employee.Employee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []employee.Employee
	for _, e := range f.all {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) ListByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []employee.Employee
	for _, e := range f.all {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeSalaries resolves through salary.SelectEffective over stored versions.
type fakeSalaries struct {
	versions map[string][]salary.SalaryStructure
	errs     map[string]error
}

func (f *fakeSalaries) GetEffective(ctx context.Context, employeeID string, day time.Time) (salary.SalaryStructure, error) {
	if err := f.errs[employeeID]; err != nil {
		return salary.SalaryStructure{}, err
	}
	s, ok := salary.SelectEffective(f.versions[employeeID], day)
	if !ok {
		return salary.SalaryStructure{}, salary.ErrSalaryStructureNotFound
	}
	return s, nil
}

type fakeAttendance struct {
	summaries map[string]attendance.MonthlySummary
	errs      map[string]error
	onCall    func(employeeID string)
}

func (f *fakeAttendance) MonthlySummary(ctx context.Context, employeeID string, month period.Month) (attendance.MonthlySummary, error) {
	if f.onCall != nil {
		f.onCall(employeeID)
	}
	if err := f.errs[employeeID]; err != nil {
		return attendance.MonthlySummary{}, err
	}
	return f.summaries[employeeID], nil
}

// fakeOracle charges a flat rate of annual income, failing for listed incomes.
type fakeOracle struct {
	rate    decimal.Decimal
	failFor map[string]bool
	calls   int
}

func (f *fakeOracle) AnnualTax(ctx context.Context, income decimal.Decimal) (decimal.Decimal, error) {
	f.calls++
	if f.failFor[income.StringFixed(2)] {
		return decimal.Zero, errors.New("oracle exited with status 1")
	}
	return income.Mul(f.rate), nil
}

type fakeGenerator struct {
	failFor map[string]bool
	calls   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, d payslip.Data) (string, error) {
	f.calls = append(f.calls, d.Employee.ID)
	if f.failFor[d.Employee.ID] {
		return "", errors.New("disk full")
	}
	return payslip.Path(d.Employee.ID, d.Month.String()), nil
}

type sentPayslip struct {
	to, name, month, path string
}

type fakeNotifier struct {
	failFor map[string]bool
	sent    []sentPayslip
}

func (f *fakeNotifier) SendPayslip(to, name, month, path string) error {
	f.sent = append(f.sent, sentPayslip{to, name, month, path})
	if f.failFor[to] {
		return errors.New("smtp unavailable")
	}
	return nil
}

func emp(id, name string) employee.Employee {
	return employee.Employee{
		ID:     id,
		Name:   name,
		Email:  id + "@example.com",
		Status: employee.StatusActive,
	}
}

func structure(empID string, basic int64, from string) salary.SalaryStructure {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		panic(err)
	}
	return salary.SalaryStructure{
		ID:               "sal-" + empID + "-" + from,
		EmployeeID:       empID,
		BasicSalary:      decimal.NewFromInt(basic),
		HRA:              decimal.Zero,
		DA:               decimal.Zero,
		TA:               decimal.Zero,
		MedicalAllowance: decimal.Zero,
		SpecialAllowance: decimal.Zero,
		PFDeduction:      decimal.Zero,
		ProfessionalTax:  decimal.Zero,
		ESI:              decimal.Zero,
		EffectiveFrom:    f,
	}
}

func present(days int) attendance.MonthlySummary {
	return attendance.MonthlySummary{DaysPresent: days, OvertimeHours: decimal.Zero}
}

// harness wires a Processor to in-memory fakes.
type harness struct {
	records    *memRecords
	tx         *fakeTx
	employees  *fakeEmployees
	salaries   *fakeSalaries
	attendance *fakeAttendance
	oracle     *fakeOracle
	generator  *fakeGenerator
	notifier   *fakeNotifier
	processor  *Processor
}

func newHarness() *harness {
	h := &harness{
		records:    newMemRecords(),
		employees:  &fakeEmployees{},
		salaries:   &fakeSalaries{versions: map[string][]salary.SalaryStructure{}, errs: map[string]error{}},
		attendance: &fakeAttendance{summaries: map[string]attendance.MonthlySummary{}, errs: map[string]error{}},
		oracle:     &fakeOracle{rate: decimal.Zero, failFor: map[string]bool{}},
		generator:  &fakeGenerator{failFor: map[string]bool{}},
		notifier:   &fakeNotifier{failFor: map[string]bool{}},
	}
	h.tx = &fakeTx{store: h.records}
	calc := NewCalculator(payroll.DefaultPolicy(), h.oracle)
	delivery := NewDelivery(h.generator, h.notifier, h.records)
	h.processor = NewProcessor(h.tx, h.employees, h.salaries, h.attendance, h.records, calc, delivery)
	h.processor.now = func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }
	return h
}

func (h *harness) add(e employee.Employee, s *salary.SalaryStructure, att attendance.MonthlySummary) {
	h.employees.all = append(h.employees.all, e)
	if s != nil {
		h.salaries.versions[e.ID] = append(h.salaries.versions[e.ID], *s)
	}
	h.attendance.summaries[e.ID] = att
}
