package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type View string

const (
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

func (v View) IsValid() bool {
	switch v {
	case ViewWeek, ViewMonth:
		return true
	default:
		return false
	}
}

func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("model: invalid view %q", s)
	}
	return v, nil
}

// Search matches term case-insensitively against title, description,
// location and category. An empty term matches everything.
func Search(events []Event, term string) []Event {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if needle == "" || matches(e, needle) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e Event, needle string) bool {
	for _, field := range []string{e.Title, e.Description, e.Location, e.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ViewRange returns the first and last date shown by view around focus.
func ViewRange(view View, focus time.Time) (time.Time, time.Time) {
	if view == ViewWeek {
		days := WeekDates(focus)
		return days[0], days[6]
	}
	return MonthRange(focus)
}

func FilterByView(events []Event, view View, focus time.Time) []Event {
	start, end := ViewRange(view, focus)
	out := make([]Event, 0, len(events))
	for _, e := range events {
		d, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		if IsDateInRange(d, start, end) {
			out = append(out, e)
		}
	}
	return out
}

func EventsForDay(events []Event, date string) []Event {
	out := make([]Event, 0)
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	SortByStart(out)
	return out
}

// SortByStart orders by date, then start time, then title. Dates and clocks
// are zero-padded so string order is chronological.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.Title < b.Title
	})
}
