package model

import (
	"testing"
	"time"
)

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2025, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("DaysInMonth(%d, %s) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestWeekDatesStartsOnSunday(t *testing.T) {
	wed := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	days := WeekDates(wed)
	if len(days) != 7 || FormatDate(days[0]) != "2025-06-01" || FormatDate(days[6]) != "2025-06-07" {
		t.Fatalf("unexpected week: %v", days)
	}
	if days[0].Weekday() != time.Sunday {
		t.Fatalf("week starts on %s", days[0].Weekday())
	}
}

func TestWeeksAtMonth(t *testing.T) {
	// June 2025 starts on a Sunday and spans five rows.
	weeks := WeeksAtMonth(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if len(weeks) != 5 {
		t.Fatalf("rows = %d, want 5", len(weeks))
	}
	if weeks[0][0] != 1 || weeks[4][1] != 30 || weeks[4][2] != 0 {
		t.Fatalf("unexpected grid: %v", weeks)
	}

	// February 2025 starts on a Saturday.
	feb := WeeksAtMonth(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if feb[0][5] != 0 || feb[0][6] != 1 || len(feb) != 5 {
		t.Fatalf("unexpected feb grid: %v", feb)
	}
}

func TestParseClock(t *testing.T) {
	if got, err := ParseClock("09:05"); err != nil || got != 545 {
		t.Fatalf("ParseClock = %d, %v", got, err)
	}
	for _, bad := range []string{"9:05", "24:00", "12:60", "ab:cd", ""} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if FormatClock(545) != "09:05" {
		t.Fatalf("FormatClock = %s", FormatClock(545))
	}
}

func TestFormatMonthAndWeek(t *testing.T) {
	d := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	if got := FormatMonth(d); got != "2025년 7월" {
		t.Fatalf("FormatMonth = %q", got)
	}
	if got := FormatWeek(d); got != "2025년 7월 2주" {
		t.Fatalf("FormatWeek = %q", got)
	}
	// The week of 2025-06-29 has its Thursday on 2025-07-03.
	if got := FormatWeek(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)); got != "2025년 7월 1주" {
		t.Fatalf("FormatWeek cross-month = %q", got)
	}
}

func TestIsDateInRangeInclusive(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	if !IsDateInRange(end.Add(23*time.Hour), start, end) {
		t.Fatal("expected end day to be in range")
	}
	if IsDateInRange(end.AddDate(0, 0, 1), start, end) {
		t.Fatal("expected day after end to be out of range")
	}
}

func TestAddMonthsClamped(t *testing.T) {
	got := AddMonthsClamped(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 1)
	if FormatDate(got) != "2025-02-28" {
		t.Fatalf("AddMonthsClamped = %s", FormatDate(got))
	}
}
