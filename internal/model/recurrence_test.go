package model

import (
	"errors"
	"testing"
)

func fixedSeriesID() string { return "series-1" }

func dates(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Date)
	}
	return out
}

func sameDates(t *testing.T, got []Event, want ...string) {
	t.Helper()
	gd := dates(got)
	if len(gd) != len(want) {
		t.Fatalf("dates = %v, want %v", gd, want)
	}
	for i := range want {
		if gd[i] != want[i] {
			t.Fatalf("dates = %v, want %v", gd, want)
		}
	}
}

func baseEvent(date string) Event {
	return Event{
		Title:            "Standup",
		Description:      "daily sync",
		Location:         "room 1",
		Category:         "업무",
		Date:             date,
		StartTime:        "09:00",
		EndTime:          "09:30",
		NotificationTime: 10,
	}
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	rule := RepeatRule{Type: RepeatMonthly, Interval: 1, EndDate: "2025-04-30"}
	got, err := Expand(baseEvent("2025-01-31"), rule, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand monthly: %v", err)
	}
	sameDates(t, got, "2025-01-31", "2025-03-31")
}

func TestExpandYearlyLeapDay(t *testing.T) {
	rule := RepeatRule{Type: RepeatYearly, Interval: 1, EndDate: "2027-03-01"}
	got, err := Expand(baseEvent("2024-02-29"), rule, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand yearly: %v", err)
	}
	sameDates(t, got, "2024-02-29")

	rule.EndDate = "2028-12-31"
	got, err = Expand(baseEvent("2024-02-29"), rule, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand yearly to 2028: %v", err)
	}
	sameDates(t, got, "2024-02-29", "2028-02-29")
}

func TestExpandDailyAndWeeklyIntervals(t *testing.T) {
	daily, err := Expand(baseEvent("2025-05-30"), RepeatRule{Type: RepeatDaily, Interval: 2, EndDate: "2025-06-05"}, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand daily: %v", err)
	}
	sameDates(t, daily, "2025-05-30", "2025-06-01", "2025-06-03", "2025-06-05")

	weekly, err := Expand(baseEvent("2025-06-02"), RepeatRule{Type: RepeatWeekly, Interval: 2, EndDate: "2025-07-01"}, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand weekly: %v", err)
	}
	sameDates(t, weekly, "2025-06-02", "2025-06-16", "2025-06-30")
}

func TestExpandSharesSeriesIDAndCopiesFields(t *testing.T) {
	calls := 0
	gen := func() string {
		calls++
		return "series-x"
	}
	base := baseEvent("2025-06-01")
	got, err := Expand(base, RepeatRule{Type: RepeatDaily, Interval: 1, EndDate: "2025-06-03"}, ExpandOptions{NewSeriesID: gen})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if calls != 1 {
		t.Fatalf("series id generator called %d times, want 1", calls)
	}
	for _, e := range got {
		if e.Repeat.ID != "series-x" || e.Repeat.Type != RepeatDaily || e.Repeat.EndDate != "2025-06-03" {
			t.Fatalf("unexpected repeat on occurrence: %#v", e.Repeat)
		}
		if e.Title != base.Title || e.StartTime != base.StartTime || e.NotificationTime != base.NotificationTime {
			t.Fatalf("occurrence lost base fields: %#v", e)
		}
	}
}

func TestExpandIsDeterministicWithStubbedID(t *testing.T) {
	rule := RepeatRule{Type: RepeatWeekly, Interval: 1, EndDate: "2025-08-01"}
	a, err := Expand(baseEvent("2025-06-04"), rule, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand a: %v", err)
	}
	b, err := Expand(baseEvent("2025-06-04"), rule, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand b: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("occurrence %d differs: %#v vs %#v", i, a[i], b[i])
		}
	}
}

func TestExpandNoneReturnsBase(t *testing.T) {
	base := baseEvent("2025-06-04")
	base.Repeat.ID = "stale"
	got, err := Expand(base, RepeatRule{Type: RepeatNone}, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand none: %v", err)
	}
	if len(got) != 1 || got[0].Date != base.Date || got[0].Repeat.ID != "" {
		t.Fatalf("unexpected none expansion: %#v", got)
	}
}

func TestExpandEndBeforeStartYieldsBaseOnly(t *testing.T) {
	got, err := Expand(baseEvent("2025-06-10"), RepeatRule{Type: RepeatDaily, Interval: 1, EndDate: "2025-06-01"}, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	sameDates(t, got, "2025-06-10")
}

func TestExpandOpenEndedIsCapped(t *testing.T) {
	got, err := Expand(baseEvent("2025-01-01"), RepeatRule{Type: RepeatDaily, Interval: 1}, ExpandOptions{NewSeriesID: fixedSeriesID, MaxOccurrences: 30})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(got) != 30 {
		t.Fatalf("len = %d, want 30", len(got))
	}

	yearly, err := Expand(baseEvent("2025-01-01"), RepeatRule{Type: RepeatYearly, Interval: 1}, ExpandOptions{NewSeriesID: fixedSeriesID})
	if err != nil {
		t.Fatalf("expand yearly: %v", err)
	}
	// 2025 through 2030 inclusive of the horizon day.
	if len(yearly) != DefaultHorizonYears+1 {
		t.Fatalf("yearly len = %d, want %d", len(yearly), DefaultHorizonYears+1)
	}
}

func TestExpandRejectsInvalidRules(t *testing.T) {
	_, err := Expand(baseEvent("2025-01-01"), RepeatRule{Type: RepeatDaily, Interval: 0}, ExpandOptions{})
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "repeat.interval" {
		t.Fatalf("expected validation error on repeat.interval, got %v", err)
	}

	_, err = Expand(baseEvent("2025-01-01"), RepeatRule{Type: "hourly", Interval: 1}, ExpandOptions{})
	if !errors.Is(err, ErrInvalidRepeatType) {
		t.Fatalf("expected ErrInvalidRepeatType, got %v", err)
	}

	_, err = Expand(baseEvent("2025-13-40"), RepeatRule{Type: RepeatDaily, Interval: 1}, ExpandOptions{})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
