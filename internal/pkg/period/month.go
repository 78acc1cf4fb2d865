// Package period handles the "YYYY-MM" payroll month.
package period

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month in UTC.
type Month struct {
	start time.Time
}

// ParseMonth parses a strict "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil || len(s) != len(monthLayout) {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Month{start: t}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{start: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

// NewMonth builds a month from a year and a 1-12 month number.
func NewMonth(year int, month time.Month) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("invalid month number %d", month)
	}
	return Month{start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (m Month) String() string {
	return m.start.Format(monthLayout)
}

func (m Month) IsZero() bool {
	return m.start.IsZero()
}

func (m Month) Year() int {
	return m.start.Year()
}

func (m Month) FirstDay() time.Time {
	return m.start
}

// LastDay is the last calendar day of the month at midnight.
func (m Month) LastDay() time.Time {
	return m.start.AddDate(0, 1, -1)
}

func (m Month) Previous() Month {
	return Month{start: m.start.AddDate(0, -1, 0)}
}

func (m Month) Next() Month {
	return Month{start: m.start.AddDate(0, 1, 0)}
}

// Title renders the month as "January 2025".
func (m Month) Title() string {
	return m.start.Format("January 2006")
}
