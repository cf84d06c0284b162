package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.poller != nil {
		return waitForNotificationCmd(m.poller.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m.quit()
		}
		if m.Dialog != nil {
			return m.handleDialogKey(typed), nil
		}
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			next, cmd := m.handlePaletteKey(typed)
			return next, cmd
		}
		return m.handleKey(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ReloadMsg:
		m.reload()
		return m, nil
	case NotificationMsg:
		m.receiveNotification(typed.Notification)
		if m.poller != nil {
			return m, waitForNotificationCmd(m.poller.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Quitting = true
	m.persistViewState()
	return m, tea.Quit
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Palette:
		m.openPalette("")
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		return m.quit()
	case m.Keys.Dismiss:
		m.dismissNotification()
	case m.Keys.Month:
		m.setView(model.ViewMonth)
	case m.Keys.Week:
		m.setView(model.ViewWeek)
	case m.Keys.Today:
		m.goToday()
	case "h", "left":
		m.shiftFocus(-1)
	case "l", "right":
		m.shiftFocus(1)
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "j", "down":
		if m.Cursor < len(m.Visible)-1 {
			m.Cursor++
		}
	case m.Keys.Edit:
		if _, ok := m.selected(); ok {
			m.openPalette(fmt.Sprintf("edit %d ", m.Cursor+1))
		}
	case m.Keys.Delete:
		if ev, ok := m.selected(); ok {
			res, err := m.deleteEvent(ev, "")
			m.setResult(res, err)
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.dismissNotificationAt(int(msg.Runes[0] - '0'))
	case "esc":
		if m.SearchTerm != "" {
			m.SearchTerm = ""
			m.refreshVisible()
			m.Status = StatusBar{Text: "검색 해제"}
		}
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	var calendar string
	if m.CurrentView == model.ViewWeek {
		calendar = views.RenderWeek(m.weekData())
	} else {
		calendar = views.RenderMonth(m.monthData())
	}

	overlay := ""
	switch {
	case m.Dialog != nil:
		overlay = m.renderDialog()
	case m.Palette.Active:
		overlay = views.RenderCommandPalette(true, m.commandInput.View())
	}
	if m.HelpVisible {
		overlay = strings.TrimSpace(overlay + "\n" + m.renderHelpView())
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("eventd | %s | %s", m.periodLabel(), m.CurrentView),
		Notifications: m.renderNotifications(),
		Calendar:      calendar,
		List:          views.RenderEventList(m.listData()),
		Overlay:       overlay,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Footer:        fmt.Sprintf("keys: h/l 이동 | %s 오늘 | %s/%s 월/주 | j/k 선택 | %s 수정 | %s 삭제 | %s 명령 | %s 도움말 | %s 종료", m.Keys.Today, m.Keys.Month, m.Keys.Week, m.Keys.Edit, m.Keys.Delete, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) periodLabel() string {
	if m.CurrentView == model.ViewWeek {
		return model.FormatWeek(m.FocusDate)
	}
	return model.FormatMonth(m.FocusDate)
}

func (m Model) listData() views.EventListData {
	items := make([]views.EventItem, 0, len(m.Visible))
	for i, e := range m.Visible {
		items = append(items, m.eventItem(e, i == m.Cursor))
	}
	return views.EventListData{Query: m.SearchTerm, Items: items}
}

func (m Model) eventItem(e model.Event, selected bool) views.EventItem {
	return views.EventItem{
		ID:           e.ID,
		Title:        e.Title,
		Date:         e.Date,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Description:  e.Description,
		Location:     e.Location,
		Category:     e.Category,
		Repeat:       e.RepeatSummary(),
		Notification: model.NotificationLabel(e.NotificationTime),
		Notified:     m.isNotified(e),
		Selected:     selected,
	}
}
