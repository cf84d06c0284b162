package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// civil drops the clock and location so date arithmetic is DST-free.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekDates returns the Sunday-first week containing t.
func WeekDates(t time.Time) []time.Time {
	day := civil(t)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = sunday.AddDate(0, 0, i)
	}
	return out
}

// WeeksAtMonth lays out t's month as Sunday-first rows of day numbers.
// Cells outside the month are 0.
func WeeksAtMonth(t time.Time) [][]int {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	days := DaysInMonth(y, m)
	offset := int(first.Weekday())

	weeks := make([][]int, 0, 6)
	week := make([]int, 7)
	col := offset
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = make([]int, 7)
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// DayString formats day-of-month day within t's month as YYYY-MM-DD.
func DayString(t time.Time, day int) string {
	y, m, _ := t.Date()
	return FormatDate(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%d년 %d월", t.Year(), int(t.Month()))
}

// FormatWeek labels a week by the month holding its Thursday.
func FormatWeek(t time.Time) string {
	thursday := WeekDates(t)[4]
	week := (thursday.Day()-1)/7 + 1
	return fmt.Sprintf("%d년 %d월 %d주", thursday.Year(), int(thursday.Month()), week)
}

// IsDateInRange is inclusive on both ends and ignores the clock.
func IsDateInRange(d, start, end time.Time) bool {
	c := civil(d)
	return !c.Before(civil(start)) && !c.After(civil(end))
}

func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysInMonth(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}
