package payslip

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData(t *testing.T) Data {
	t.Helper()
	month, err := period.ParseMonth("2025-01")
	require.NoError(t, err)
	bank := "123456789012"
	return Data{
		Employee: employee.Employee{
			ID:          "emp-1",
			Name:        "Asha Rao",
			Email:       "asha@example.com",
			Designation: "Engineer",
			Department:  "Platform",
			BankAccount: &bank,
		},
		Record: payroll.Record{
			ID:         "rec-1",
			EmployeeID: "emp-1",
			Month:      "2025-01",
			Breakdown: payroll.Breakdown{
				BasicSalary:     decimal.NewFromInt(30000),
				GrossSalary:     decimal.NewFromInt(30000),
				PFDeduction:     decimal.NewFromInt(1800),
				TotalDeductions: decimal.NewFromInt(1800),
				NetSalary:       decimal.NewFromInt(28200),
				DaysPresent:     30,
				WorkingDays:     30,
			},
		},
		Month: month,
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	g := NewGenerator(nil, "Acme Corp")
	g.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, sampleData(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestGenerate_StoresUnderEmployeePath(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	g := NewGenerator(store, "Acme Corp")
	path, err := g.Generate(context.Background(), sampleData(t))
	require.NoError(t, err)
	assert.Equal(t, "payslips/emp-1/payslip_emp-1_2025-01.pdf", path)

	rc, err := store.Download(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestPathAndFilename(t *testing.T) {
	assert.Equal(t, "payslips/e/payslip_e_2024-12.pdf", Path("e", "2024-12"))
	assert.Equal(t, "payslip_e_2024-12.pdf", Filename("e", "2024-12"))
}
