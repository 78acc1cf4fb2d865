// Package payslip renders monthly payslips as PDF documents.
package payslip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const contentType = "application/pdf"

// Data is everything printed on one payslip.
type Data struct {
	Employee employee.Employee
	Record   payroll.Record
	Month    period.Month
}

// Path is where the payslip for (employeeID, month) is stored.
func Path(employeeID, month string) string {
	return fmt.Sprintf("payslips/%s/payslip_%s_%s.pdf", employeeID, employeeID, month)
}

// Filename is the download name of a payslip.
func Filename(employeeID, month string) string {
	return fmt.Sprintf("payslip_%s_%s.pdf", employeeID, month)
}

type Generator struct {
	storage     storage.FileStorage
	companyName string
	now         func() time.Time
}

func NewGenerator(store storage.FileStorage, companyName string) *Generator {
	return &Generator{storage: store, companyName: companyName, now: time.Now}
}

// Generate renders the payslip and stores it, returning the stored path.
func (g *Generator) Generate(ctx context.Context, d Data) (string, error) {
	var buf bytes.Buffer
	if err := g.Render(&buf, d); err != nil {
		return "", err
	}

	path, err := g.storage.Upload(ctx, &buf, Path(d.Employee.ID, d.Month.String()), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store payslip: %w", err)
	}
	return path, nil
}

// Render writes the PDF document to w.
func (g *Generator) Render(w io.Writer, d Data) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", d.Employee.Name, d.Month.Title()), false)
	pdf.SetAuthor(g.companyName, false)
	pdf.SetCreationDate(g.now())
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, g.companyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Payslip for "+d.Month.Title(), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section(pdf, "Employee Details")
	e := d.Employee
	row(pdf, "Employee ID", e.ID, "Name", e.Name)
	row(pdf, "Designation", e.Designation, "Department", e.Department)
	row(pdf, "Bank Account", deref(e.BankAccount), "PAN", deref(e.PANNumber))
	pdf.Ln(4)

	r := d.Record
	section(pdf, "Attendance Summary")
	row(pdf, "Working Days", fmt.Sprint(r.WorkingDays), "Days Present", fmt.Sprint(r.DaysPresent))
	row(pdf, "Half Days", fmt.Sprint(r.DaysHalf), "Leave Days", fmt.Sprint(r.DaysLeave))
	row(pdf, "Days Absent", fmt.Sprint(r.DaysAbsent), "Overtime Hours", r.OvertimeHours.String())
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Earnings", "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 8, "Deductions", "1", 1, "L", true, 0, "")

	earnings := []line{
		{"Basic Salary", r.BasicSalary},
		{"HRA", r.HRA},
		{"DA", r.DA},
		{"TA", r.TA},
		{"Medical Allowance", r.MedicalAllowance},
		{"Special Allowance", r.SpecialAllowance},
		{"Overtime Pay", r.OvertimePay},
	}
	deductions := []line{
		{"Provident Fund", r.PFDeduction},
		{"Professional Tax", r.ProfessionalTax},
		{"ESI", r.ESI},
		{"TDS", r.TDS},
	}

	pdf.SetFont("Helvetica", "", 10)
	for i := 0; i < len(earnings); i++ {
		amountCell(pdf, earnings[i], 0)
		if i < len(deductions) {
			amountCell(pdf, deductions[i], 1)
		} else {
			pdf.CellFormat(90, 7, "", "LR", 1, "L", false, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "B", 10)
	amountCellBorder(pdf, line{"Gross Salary", r.GrossSalary}, 0, "1")
	amountCellBorder(pdf, line{"Total Deductions", r.TotalDeductions}, 1, "1")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 10, "Net Pay", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 10, "INR "+r.NetSalary.StringFixed(2), "1", 1, "R", true, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "This is a system generated payslip and does not require a signature.", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render payslip: %w", err)
	}
	return nil
}

type line struct {
	label  string
	amount decimal.Decimal
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func row(pdf *fpdf.Fpdf, k1, v1, k2, v2 string) {
	pdf.CellFormat(35, 6, k1, "", 0, "L", false, 0, "")
	pdf.CellFormat(55, 6, v1, "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, k2, "", 0, "L", false, 0, "")
	pdf.CellFormat(55, 6, v2, "", 1, "L", false, 0, "")
}

func amountCell(pdf *fpdf.Fpdf, l line, ln int) {
	amountCellBorder(pdf, l, ln, "LR")
}

func amountCellBorder(pdf *fpdf.Fpdf, l line, ln int, border string) {
	pdf.CellFormat(55, 7, l.label, border, 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, l.amount.StringFixed(2), border, ln, "R", false, 0, "")
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
