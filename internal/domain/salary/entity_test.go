package salary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestSelectEffective(t *testing.T) {
	versions := []SalaryStructure{
		{ID: "v3", EffectiveFrom: day("2025-04-01")},
		{ID: "v2", EffectiveFrom: day("2025-01-15"), EffectiveTo: ptr(day("2025-03-31"))},
		{ID: "v1", EffectiveFrom: day("2024-01-01"), EffectiveTo: ptr(day("2025-01-14"))},
	}

	tests := []struct {
		name   string
		on     string
		wantID string
		found  bool
	}{
		{"open version", "2025-04-30", "v3", true},
		{"closed version covering month end", "2025-02-28", "v2", true},
		{"closed exactly on the day", "2025-03-31", "v2", true},
		{"older version", "2024-12-31", "v1", true},
		{"before any version", "2023-12-31", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectEffective(versions, day(tt.on))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestSelectEffective_StartsAfterMonthEnd(t *testing.T) {
	versions := []SalaryStructure{{ID: "future", EffectiveFrom: day("2025-06-01")}}
	_, ok := SelectEffective(versions, day("2025-05-31"))
	assert.False(t, ok)
}

func TestSelectEffective_ClosedMidMonthIsIgnored(t *testing.T) {
	// A version ending before the last day of the month does not apply to that month.
	versions := []SalaryStructure{{ID: "old", EffectiveFrom: day("2025-01-01"), EffectiveTo: ptr(day("2025-05-20"))}}
	_, ok := SelectEffective(versions, day("2025-05-31"))
	assert.False(t, ok)
}

func TestSalaryStructureTotals(t *testing.T) {
	s := SalaryStructure{
		BasicSalary:      decimal.NewFromInt(30000),
		HRA:              decimal.NewFromInt(12000),
		DA:               decimal.NewFromInt(3000),
		TA:               decimal.NewFromInt(1600),
		MedicalAllowance: decimal.NewFromInt(1250),
		SpecialAllowance: decimal.NewFromInt(2150),
		PFDeduction:      decimal.NewFromInt(1800),
		ProfessionalTax:  decimal.NewFromInt(200),
		ESI:              decimal.NewFromInt(0),
	}

	assert.True(t, decimal.NewFromInt(50000).Equal(s.MonthlyGross()))
	assert.True(t, decimal.NewFromInt(2000).Equal(s.FixedDeductions()))

	resp := NewCurrentSalaryResponse(s)
	assert.True(t, decimal.NewFromInt(48000).Equal(resp.NetSalary))
}
