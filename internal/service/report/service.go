package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	now        func() time.Time
}

func NewReportService(reportRepo report.ReportRepository) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

func (s *ReportServiceImpl) generatedAt() string {
	return s.now().Format(time.RFC3339)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GeneratePayrollSummary loads the per-month rows and the range totals in
// parallel.
func (s *ReportServiceImpl) GeneratePayrollSummary(ctx context.Context, req report.PayrollSummaryRequest) (report.PayrollSummaryReport, error) {
	if err := req.Validate(); err != nil {
		return report.PayrollSummaryReport{}, err
	}

	var (
		months []report.PayrollSummaryRow
		totals report.PayrollTotals
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.reportRepo.PayrollSummary(gCtx, req.StartMonth, req.EndMonth)
		if err != nil {
			return err
		}
		months = rows
		return nil
	})
	g.Go(func() error {
		t, err := s.reportRepo.PayrollTotals(gCtx, req.StartMonth, req.EndMonth)
		if err != nil {
			return err
		}
		totals = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.PayrollSummaryReport{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	if months == nil {
		months = []report.PayrollSummaryRow{}
	}

	return report.PayrollSummaryReport{
		StartMonth:  optional(req.StartMonth),
		EndMonth:    optional(req.EndMonth),
		GeneratedAt: s.generatedAt(),
		Months:      months,
		Totals:      totals,
	}, nil
}

// GenerateDepartmentReport defaults to the current month.
func (s *ReportServiceImpl) GenerateDepartmentReport(ctx context.Context, req report.DepartmentReportRequest) (report.DepartmentReport, error) {
	if err := req.Validate(); err != nil {
		return report.DepartmentReport{}, err
	}

	month := req.Month
	if month == "" {
		month = period.MonthOf(s.now()).String()
	}

	rows, err := s.reportRepo.DepartmentWise(ctx, month)
	if err != nil {
		return report.DepartmentReport{}, fmt.Errorf("failed to get department report: %w", err)
	}
	if rows == nil {
		rows = []report.DepartmentRow{}
	}

	return report.DepartmentReport{
		Month:       month,
		GeneratedAt: s.generatedAt(),
		Departments: rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateAttendanceSummary(ctx context.Context, req report.AttendanceSummaryRequest) (report.AttendanceSummaryReport, error) {
	if err := req.Validate(); err != nil {
		return report.AttendanceSummaryReport{}, err
	}

	var (
		from, to string
		month    *string
	)
	if m, ok := req.Period(); ok {
		from = m.FirstDay().Format("2006-01-02")
		to = m.LastDay().Format("2006-01-02")
		month = optional(m.String())
	}

	rows, err := s.reportRepo.AttendanceSummary(ctx, from, to)
	if err != nil {
		return report.AttendanceSummaryReport{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}
	if rows == nil {
		rows = []report.AttendanceSummaryRow{}
	}

	return report.AttendanceSummaryReport{
		Month:       month,
		GeneratedAt: s.generatedAt(),
		Employees:   rows,
	}, nil
}

func (s *ReportServiceImpl) year(req report.YearRequest) int {
	if req.Year != 0 {
		return req.Year
	}
	return s.now().Year()
}

func (s *ReportServiceImpl) GenerateLeaveSummary(ctx context.Context, req report.YearRequest) (report.LeaveSummaryReport, error) {
	if err := req.Validate(); err != nil {
		return report.LeaveSummaryReport{}, err
	}

	year := s.year(req)
	rows, err := s.reportRepo.LeaveSummary(ctx, year)
	if err != nil {
		return report.LeaveSummaryReport{}, fmt.Errorf("failed to get leave summary: %w", err)
	}
	if rows == nil {
		rows = []report.LeaveSummaryRow{}
	}

	return report.LeaveSummaryReport{
		Year:        year,
		GeneratedAt: s.generatedAt(),
		Employees:   rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateTaxReport(ctx context.Context, req report.YearRequest) (report.TaxReport, error) {
	if err := req.Validate(); err != nil {
		return report.TaxReport{}, err
	}

	year := s.year(req)
	rows, err := s.reportRepo.TaxReport(ctx, year)
	if err != nil {
		return report.TaxReport{}, fmt.Errorf("failed to get tax report: %w", err)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.AnnualTDS)
	}
	if rows == nil {
		rows = []report.TaxReportRow{}
	}

	return report.TaxReport{
		Year:        year,
		GeneratedAt: s.generatedAt(),
		Employees:   rows,
		TotalTDS:    total,
	}, nil
}
