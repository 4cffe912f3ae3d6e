package pit38

import (
	"testing"
	"time"
)

func TestUSSettlementHolidays(t *testing.T) {
	cal := USSettlement()
	holidays := []string{
		"2024-01-01", // New Year's Day
		"2024-03-29", // Good Friday
		"2024-05-27", // Memorial Day
		"2024-06-19", // Juneteenth
		"2024-07-04", // Independence Day
		"2024-11-28", // Thanksgiving
		"2024-12-25", // Christmas Day
		"2021-07-05", // Independence Day 2021 observed (July 4 is a Sunday)
	}
	for _, day := range holidays {
		if cal.IsBusinessDay(MustParseDate(day)) {
			t.Errorf("%s should not be a business day on %s", day, cal.Name())
		}
	}
	// Juneteenth only entered the table in 2021.
	if !cal.IsBusinessDay(MustParseDate("2020-06-19")) {
		t.Error("2020-06-19 should be a business day")
	}
}

func TestPolandHolidays(t *testing.T) {
	cal := Poland()
	holidays := []string{
		"2024-01-01",
		"2024-01-06", // Trzech Króli
		"2024-04-01", // Poniedziałek Wielkanocny (Easter 2024-03-31)
		"2024-05-01",
		"2024-05-03",
		"2024-05-19", // Zielone Świątki
		"2024-05-30", // Boże Ciało
		"2024-11-11",
		"2025-12-24", // Wigilia, first observed in 2025
	}
	for _, day := range holidays {
		if _, ok := cal.IsHoliday(MustParseDate(day)); !ok {
			t.Errorf("%s should be a holiday on %s", day, cal.Name())
		}
	}
	if _, ok := cal.IsHoliday(MustParseDate("2024-12-24")); ok {
		t.Error("2024-12-24 should not yet be a holiday")
	}
	if _, ok := cal.IsHoliday(MustParseDate("2010-01-06")); ok {
		t.Error("2010-01-06 should not yet be a holiday")
	}
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		cal  *Calendar
		base string
		n    int
		want string
	}{
		// plain weekday step
		{USSettlement(), "2024-06-03", 1, "2024-06-04"},
		// over a weekend
		{USSettlement(), "2024-06-07", 1, "2024-06-10"},
		// over Independence Day
		{USSettlement(), "2024-07-03", 1, "2024-07-05"},
		// two days over Memorial Day weekend
		{USSettlement(), "2024-05-24", 2, "2024-05-29"},
		// backward over a weekend
		{Poland(), "2024-06-03", -1, "2024-05-31"},
		// backward over Święto Pracy
		{Poland(), "2024-05-02", -1, "2024-04-30"},
		// zero leaves the date alone even on a holiday
		{Poland(), "2024-05-01", 0, "2024-05-01"},
	}
	for _, tt := range tests {
		got := tt.cal.AddBusinessDays(MustParseDate(tt.base), tt.n)
		if got != MustParseDate(tt.want) {
			t.Errorf("%s.AddBusinessDays(%s, %d) = %s, want %s", tt.cal.Name(), tt.base, tt.n, got, tt.want)
		}
	}
}

func TestAddBusinessDaysOutsideCoverage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a date outside the calendar coverage")
		}
	}()
	USSettlement().AddBusinessDays(NewDate(1999, time.March, 1), 1)
}
