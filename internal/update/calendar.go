package update

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/views"
)

func (m *Model) setView(v model.View) {
	m.CurrentView = v
	m.Cursor = 0
	m.refreshVisible()
	m.Status = StatusBar{Text: fmt.Sprintf("view: %s", v)}
}

// shiftFocus moves one period back or forward. Month steps keep the day of
// month when possible and clamp to the last day otherwise.
func (m *Model) shiftFocus(delta int) {
	if m.CurrentView == model.ViewWeek {
		m.FocusDate = m.FocusDate.AddDate(0, 0, 7*delta)
	} else {
		m.FocusDate = model.AddMonthsClamped(m.FocusDate, delta)
	}
	m.Cursor = 0
	m.refreshVisible()
	m.Status = StatusBar{Text: m.periodLabel()}
}

func (m *Model) goToday() {
	m.focusOn(m.today())
}

func (m *Model) focusOn(d time.Time) {
	m.FocusDate = d
	m.Cursor = 0
	m.refreshVisible()
	m.Status = StatusBar{Text: m.periodLabel()}
}

func (m Model) monthData() views.MonthData {
	today := model.FormatDate(m.today())
	focus := model.FormatDate(m.FocusDate)
	grid := model.WeeksAtMonth(m.FocusDate)

	weeks := make([][]views.DayCell, 0, len(grid))
	for _, row := range grid {
		cells := make([]views.DayCell, 0, len(row))
		for _, day := range row {
			if day == 0 {
				cells = append(cells, views.DayCell{})
				continue
			}
			date := model.DayString(m.FocusDate, day)
			cell := views.DayCell{Day: day, Date: date, Holiday: m.holidays.Name(date), Today: date == today, Focus: date == focus}
			for _, e := range model.EventsForDay(m.Visible, date) {
				cell.Titles = append(cell.Titles, e.Title)
				if m.isNotified(e) {
					cell.Notified = true
				}
			}
			cells = append(cells, cell)
		}
		weeks = append(weeks, cells)
	}
	return views.MonthData{Title: model.FormatMonth(m.FocusDate), Weeks: weeks}
}

func (m Model) weekData() views.WeekData {
	today := model.FormatDate(m.today())
	focus := model.FormatDate(m.FocusDate)
	dates := model.WeekDates(m.FocusDate)

	days := make([]views.WeekDay, 0, len(dates))
	for _, d := range dates {
		date := model.FormatDate(d)
		day := views.WeekDay{Date: date, Holiday: m.holidays.Name(date), Today: date == today, Focus: date == focus}
		for _, e := range model.EventsForDay(m.Visible, date) {
			day.Events = append(day.Events, m.eventItem(e, false))
		}
		days = append(days, day)
	}
	return views.WeekData{Title: model.FormatWeek(m.FocusDate), Days: days}
}
