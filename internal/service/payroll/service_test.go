package payroll

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayrollRepo struct {
	*memRecords
}

func (f fakePayrollRepo) GetByID(ctx context.Context, id string) (payroll.Record, error) {
	for _, r := range f.snapshot() {
		if r.ID == id {
			return r, nil
		}
	}
	return payroll.Record{}, payroll.ErrPayrollRecordNotFound
}

func (f fakePayrollRepo) ListByMonth(ctx context.Context, month string) ([]payroll.Record, error) {
	var out []payroll.Record
	for _, r := range f.snapshot() {
		if r.Month == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakePayrollRepo) ListByEmployee(ctx context.Context, employeeID string, filter payroll.EmployeePayrollFilter) ([]payroll.Record, error) {
	var out []payroll.Record
	for _, r := range f.snapshot() {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
}

func (f fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func withClaims(t *testing.T, userID string, role user.Role, employeeID *string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("secret"), nil)
	claims := map[string]interface{}{"user_id": userID, "role": string(role), "type": "access"}
	if employeeID != nil {
		claims["employee_id"] = *employeeID
	}
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type serviceHarness struct {
	*harness
	files storage.FileStorage
	svc   payroll.PayrollService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	h := newHarness()
	files, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	byID := map[string]employee.Employee{}
	for _, e := range []employee.Employee{emp("e1", "Asha"), emp("e2", "Bala")} {
		s := structure(e.ID, 30000, "2024-01-01")
		h.add(e, &s, present(30))
		byID[e.ID] = e
	}

	delivery := NewDelivery(h.generator, h.notifier, h.records)
	svc := NewPayrollService(h.processor, delivery, fakePayrollRepo{h.records}, fakeEmployeeRepo{byID: byID}, files, nil)
	return &serviceHarness{harness: h, files: files, svc: svc}
}

func TestService_ProcessPayrollValidatesMonth(t *testing.T) {
	sh := newServiceHarness(t)

	_, err := sh.svc.ProcessPayroll(context.Background(), payroll.ProcessPayrollRequest{Month: "2025-13"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "month")
	assert.Zero(t, sh.records.count())
}

func TestService_ProcessPayrollStampsCaller(t *testing.T) {
	sh := newServiceHarness(t)
	ctx := withClaims(t, "hr-1", user.RoleHR, nil)

	resp, err := sh.svc.ProcessPayroll(ctx, payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Processed)

	rec, _ := sh.records.get("e1", "2025-01")
	require.NotNil(t, rec.ProcessedBy)
	assert.Equal(t, "hr-1", *rec.ProcessedBy)
}

func TestService_MonthPayrollSummary(t *testing.T) {
	sh := newServiceHarness(t)
	_, err := sh.svc.ProcessPayroll(context.Background(), payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	resp, err := sh.svc.GetMonthPayroll(context.Background(), "2025-01")
	require.NoError(t, err)
	assert.Len(t, resp.Records, 2)
	assert.Equal(t, 2, resp.Summary.TotalEmployees)
	assert.Equal(t, "60000.00", resp.Summary.TotalGross.StringFixed(2))
	assert.Equal(t, "60000.00", resp.Summary.TotalNet.StringFixed(2))
}

func TestService_EmployeeSeesOnlyOwnPayroll(t *testing.T) {
	sh := newServiceHarness(t)
	_, err := sh.svc.ProcessPayroll(context.Background(), payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	own := "e1"
	ctx := withClaims(t, "u-e1", user.RoleEmployee, &own)

	records, err := sh.svc.GetEmployeePayroll(ctx, "e1", payroll.EmployeePayrollFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = sh.svc.GetEmployeePayroll(ctx, "e2", payroll.EmployeePayrollFilter{})
	assert.ErrorIs(t, err, user.ErrSelfAccessOnly)

	other, _ := sh.records.get("e2", "2025-01")
	_, err = sh.svc.GetPayslip(ctx, other.ID)
	assert.ErrorIs(t, err, user.ErrSelfAccessOnly)
}

func TestService_DownloadPayslip(t *testing.T) {
	sh := newServiceHarness(t)
	_, err := sh.svc.ProcessPayroll(context.Background(), payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	rec, _ := sh.records.get("e1", "2025-01")
	ctx := withClaims(t, "admin", user.RoleAdmin, nil)

	// The fake generator returns a path without writing the file.
	_, _, err = sh.svc.DownloadPayslip(ctx, rec.ID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotGenerated)

	_, err = sh.files.Upload(ctx, strings.NewReader("%PDF-1.3"), *rec.PayslipPath, "application/pdf")
	require.NoError(t, err)

	rc, filename, err := sh.svc.DownloadPayslip(ctx, rec.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "%PDF-1.3", string(body))
	assert.Equal(t, "payslip_e1_2025-01.pdf", filename)
}

func TestService_DownloadWithoutPayslip(t *testing.T) {
	sh := newServiceHarness(t)
	sh.generator.failFor["e1"] = true
	_, err := sh.svc.ProcessPayroll(context.Background(), payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	rec, _ := sh.records.get("e1", "2025-01")
	_, _, err = sh.svc.DownloadPayslip(withClaims(t, "admin", user.RoleAdmin, nil), rec.ID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotGenerated)
}

func TestService_RegeneratePayslip(t *testing.T) {
	sh := newServiceHarness(t)
	sh.generator.failFor["e1"] = true
	_, err := sh.svc.ProcessPayroll(context.Background(), payroll.ProcessPayrollRequest{Month: "2025-01"})
	require.NoError(t, err)

	rec, _ := sh.records.get("e1", "2025-01")
	require.Nil(t, rec.PayslipPath)

	delete(sh.generator.failFor, "e1")
	sent := len(sh.notifier.sent)

	resp, err := sh.svc.RegeneratePayslip(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.PayslipPath)
	assert.Equal(t, "payslips/e1/payslip_e1_2025-01.pdf", *resp.PayslipPath)
	assert.Len(t, sh.notifier.sent, sent+1, "regeneration re-sends the email")

	stored, _ := sh.records.get("e1", "2025-01")
	require.NotNil(t, stored.PayslipPath)

	_, err = sh.svc.RegeneratePayslip(context.Background(), "nope")
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}
