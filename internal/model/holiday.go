package model

import "strings"

// Solar-calendar public holidays, keyed by MM-DD.
var fixedHolidays = map[string]string{
	"01-01": "신정",
	"03-01": "삼일절",
	"05-05": "어린이날",
	"06-06": "현충일",
	"08-15": "광복절",
	"10-03": "개천절",
	"10-09": "한글날",
	"12-25": "크리스마스",
}

// Lunar-calendar holidays resolved to their solar dates.
var lunarHolidays = map[string]string{
	"2024-02-09": "설날",
	"2024-02-10": "설날",
	"2024-02-11": "설날",
	"2024-05-15": "부처님오신날",
	"2024-09-16": "추석",
	"2024-09-17": "추석",
	"2024-09-18": "추석",
	"2025-01-28": "설날",
	"2025-01-29": "설날",
	"2025-01-30": "설날",
	"2025-05-05": "부처님오신날",
	"2025-10-05": "추석",
	"2025-10-06": "추석",
	"2025-10-07": "추석",
	"2026-02-16": "설날",
	"2026-02-17": "설날",
	"2026-02-18": "설날",
	"2026-05-24": "부처님오신날",
	"2026-09-24": "추석",
	"2026-09-25": "추석",
	"2026-09-26": "추석",
}

// HolidayCalendar names the public holidays shown on the calendar. Extra
// entries, keyed by YYYY-MM-DD, replace the built-in name for their date.
type HolidayCalendar struct {
	extra map[string]string
}

func NewHolidayCalendar(extra map[string]string) HolidayCalendar {
	c := HolidayCalendar{extra: make(map[string]string, len(extra))}
	for date, name := range extra {
		name = strings.TrimSpace(name)
		if _, err := ParseDate(date); err != nil || name == "" {
			continue
		}
		c.extra[date] = name
	}
	return c
}

// Name returns the holiday on date, or "" when it is a regular day. Two
// holidays on one date are joined with "·".
func (c HolidayCalendar) Name(date string) string {
	if name, ok := c.extra[date]; ok {
		return name
	}
	if len(date) != len("2006-01-02") {
		return ""
	}
	var names []string
	if name, ok := fixedHolidays[date[5:]]; ok {
		names = append(names, name)
	}
	if name, ok := lunarHolidays[date]; ok {
		names = append(names, name)
	}
	return strings.Join(names, "·")
}
