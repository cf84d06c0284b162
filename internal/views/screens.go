package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var weekdayLabels = []string{"일", "월", "화", "수", "목", "금", "토"}

type EventItem struct {
	ID           string
	Title        string
	Date         string
	StartTime    string
	EndTime      string
	Description  string
	Location     string
	Category     string
	Repeat       string
	Notification string
	Notified     bool
	Selected     bool
}

type DayCell struct {
	Day      int
	Date     string
	Holiday  string
	Titles   []string
	Notified bool
	Today    bool
	Focus    bool
}

type MonthData struct {
	Title string
	Weeks [][]DayCell
}

type WeekDay struct {
	Date    string
	Holiday string
	Today   bool
	Focus   bool
	Events  []EventItem
}

type WeekData struct {
	Title string
	Days  []WeekDay
}

type EventListData struct {
	Query string
	Items []EventItem
}

const cellWidth = 10

func RenderMonth(data MonthData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(data.Title) + "\n")

	head := make([]string, 0, len(weekdayLabels))
	for _, l := range weekdayLabels {
		head = append(head, lipgloss.NewStyle().Width(cellWidth).Render(l))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, head...) + "\n")

	for _, week := range data.Weeks {
		cells := make([]string, 0, len(week))
		for _, cell := range week {
			cells = append(cells, renderDayCell(cell))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderDayCell(cell DayCell) string {
	style := lipgloss.NewStyle().Width(cellWidth).Height(2)
	if cell.Day == 0 {
		return style.Render("")
	}
	day := fmt.Sprintf("%2d", cell.Day)
	switch {
	case cell.Focus:
		day = selectedStyle.Render(day)
	case cell.Today:
		day = todayStyle.Render(day)
	case cell.Holiday != "":
		day = holidayStyle.Render(day)
	}
	room := cellWidth - 4
	if cell.Notified {
		day += notifiedStyle.Render(" !")
		room -= 2
	}
	if cell.Holiday != "" {
		day += " " + holidayStyle.Render(ansi.Truncate(cell.Holiday, room, "…"))
	}

	second := ""
	switch len(cell.Titles) {
	case 0:
	case 1:
		second = ansi.Truncate(cell.Titles[0], cellWidth-1, "…")
	default:
		second = ansi.Truncate(cell.Titles[0], cellWidth-4, "…") + fmt.Sprintf(" +%d", len(cell.Titles)-1)
	}
	return style.Render(day + "\n" + mutedStyle.Render(second))
}

func RenderWeek(data WeekData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(data.Title) + "\n")
	for i, day := range data.Days {
		label := fmt.Sprintf("%s %s", weekdayLabels[i%7], day.Date)
		if day.Holiday != "" {
			label += " " + day.Holiday
		}
		switch {
		case day.Focus:
			label = selectedStyle.Render(label)
		case day.Today:
			label = todayStyle.Render(label)
		}
		b.WriteString(label + "\n")
		if len(day.Events) == 0 {
			b.WriteString(mutedStyle.Render("  -") + "\n")
			continue
		}
		for _, ev := range day.Events {
			line := fmt.Sprintf("  %s-%s %s", ev.StartTime, ev.EndTime, ev.Title)
			if ev.Repeat != "" {
				line += " ↻"
			}
			if ev.Notified {
				line = notifiedStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderEventList shows every visible event as a card. The selected card
// is expanded with its details.
func RenderEventList(data EventListData) string {
	var b strings.Builder
	title := "일정 목록"
	if strings.TrimSpace(data.Query) != "" {
		title = fmt.Sprintf("일정 검색: %s", data.Query)
	}
	b.WriteString(headerStyle.Render(title) + "\n")
	if len(data.Items) == 0 {
		b.WriteString("검색 결과가 없습니다.")
		return b.String()
	}
	for i, item := range data.Items {
		b.WriteString(renderEventCard(i+1, item))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderEventCard(index int, item EventItem) string {
	cursor := " "
	if item.Selected {
		cursor = ">"
	}
	marker := ""
	if item.Notified {
		marker = "! "
	}
	if item.Repeat != "" {
		marker += "↻ "
	}
	title := marker + item.Title
	if item.Notified {
		title = notifiedStyle.Render(title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d. %s\n", cursor, index, title)
	fmt.Fprintf(&b, "     %s %s-%s\n", item.Date, item.StartTime, item.EndTime)
	if !item.Selected {
		return b.String()
	}
	if item.Description != "" {
		fmt.Fprintf(&b, "     %s\n", item.Description)
	}
	if item.Location != "" {
		fmt.Fprintf(&b, "     %s\n", item.Location)
	}
	if item.Category != "" {
		fmt.Fprintf(&b, "     카테고리: %s\n", item.Category)
	}
	if item.Repeat != "" {
		fmt.Fprintf(&b, "     반복: %s\n", item.Repeat)
	}
	fmt.Fprintf(&b, "     알림: %s\n", item.Notification)
	return b.String()
}

// RenderNotifications stacks the pending notification messages, oldest
// first.
func RenderNotifications(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	lines := make([]string, 0, len(messages)+1)
	for i, msg := range messages {
		lines = append(lines, notifiedStyle.Render(fmt.Sprintf("%d. 🔔 %s", i+1, msg)))
	}
	lines = append(lines, mutedStyle.Render("[x] 알림 닫기 · [1-9] 번호로 닫기"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func RenderOverlapDialog(entries []string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("일정 겹침 경고") + "\n")
	b.WriteString("다음 일정과 겹칩니다:\n")
	for _, e := range entries {
		b.WriteString(e + "\n")
	}
	b.WriteString("\n계속 진행하시겠습니까? [y] 계속 진행  [n] 취소")
	return dialogStyle.Render(b.String())
}

// RenderSeriesDialog asks whether an edit or delete targets one occurrence
// or the whole series. mode is "edit" or "delete".
func RenderSeriesDialog(mode, title string) string {
	heading, question := "반복 일정 수정", "해당 일정만 수정하시겠어요?"
	if mode == "delete" {
		heading, question = "반복 일정 삭제", "해당 일정만 삭제하시겠어요?"
	}
	body := fmt.Sprintf("%s\n%s\n%s\n\n[y] 예 (이 일정만)  [n] 아니오 (전체 반복)  [esc] 취소",
		headerStyle.Render(heading), title, question)
	return dialogStyle.Render(body)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderHelpPanel(markdown, bindings string) string {
	return panelStyle.Render(strings.TrimSpace(RenderMarkdown(markdown) + "\n\n" + bindings))
}
