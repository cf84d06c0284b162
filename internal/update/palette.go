package update

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eventd/internal/commands"
	"github.com/sandeepkv93/eventd/internal/ics"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/service"
)

func (m *Model) openPalette(prefill string) {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand(), nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.commandInput.CursorEnd()
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			draft := model.Event{
				Title:            a.Title,
				Date:             m.resolveDate(a.Date),
				StartTime:        a.StartTime,
				EndTime:          a.EndTime,
				Description:      a.Description,
				Location:         a.Location,
				Category:         a.Category,
				Repeat:           a.Repeat,
				NotificationTime: m.defaultNotify,
			}
			if a.Notify != nil {
				draft.NotificationTime = *a.Notify
			}
			msg, err := m.run(pendingOp{kind: opCreate, event: draft}, service.SaveOptions{})
			return commands.Result{Message: msg}, err
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			ev, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			msg, err := m.editEvent(ev, a)
			return commands.Result{Message: msg}, err
		},
		Delete: func(a commands.DeleteArgs) (commands.Result, error) {
			ev, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			msg, err := m.deleteEvent(ev, string(a.Scope))
			return commands.Result{Message: msg}, err
		},
		Move: func(a commands.MoveArgs) (commands.Result, error) {
			ev, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			msg, err := m.moveEvent(ev, m.resolveDate(a.Date), string(a.Scope))
			return commands.Result{Message: msg}, err
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.SearchTerm = strings.TrimSpace(a.Term)
			m.Cursor = 0
			m.refreshVisible()
			if m.SearchTerm == "" {
				return commands.Result{Message: "검색 해제"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("검색: %s (%d건)", m.SearchTerm, len(m.Visible))}, nil
		},
		View: func(a commands.ViewArgs) (commands.Result, error) {
			m.setView(a.View)
			return commands.Result{Message: fmt.Sprintf("view: %s", a.View)}, nil
		},
		Goto: func(a commands.GotoArgs) (commands.Result, error) {
			d, err := model.ParseDate(m.resolveDate(a.Date))
			if err != nil {
				return commands.Result{}, err
			}
			m.focusOn(d)
			return commands.Result{Message: m.periodLabel()}, nil
		},
		Next: func() (commands.Result, error) {
			m.shiftFocus(1)
			return commands.Result{Message: m.periodLabel()}, nil
		},
		Prev: func() (commands.Result, error) {
			m.shiftFocus(-1)
			return commands.Result{Message: m.periodLabel()}, nil
		},
		Today: func() (commands.Result, error) {
			m.goToday()
			return commands.Result{Message: m.periodLabel()}, nil
		},
		Export: func(a commands.FileArgs) (commands.Result, error) {
			return m.exportICS(a.Path)
		},
		Import: func(a commands.FileArgs) (commands.Result, error) {
			return m.importICS(a.Path)
		},
		Dismiss: func(a commands.DismissArgs) (commands.Result, error) {
			if a.All {
				n := len(m.Notifications)
				m.Notifications = nil
				return commands.Result{Message: fmt.Sprintf("알림 %d개를 닫았습니다.", n)}, nil
			}
			if !m.dismissNotificationAt(a.Index) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no notification %d", a.Index)}
			}
			return commands.Result{Message: "알림을 닫았습니다."}, nil
		},
	})
	m.setResult(res.Message, err)
	return m
}

// resolveDate maps commands.FocusedDate to the focused calendar date.
func (m Model) resolveDate(date string) string {
	if date == commands.FocusedDate {
		return model.FormatDate(m.FocusDate)
	}
	return date
}

// resolveTarget accepts a 1-based index into the visible list, "." for the
// selected event, or a unique id prefix.
func (m Model) resolveTarget(target string) (model.Event, error) {
	if target == "." {
		if ev, ok := m.selected(); ok {
			return ev, nil
		}
		return model.Event{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no event selected"}
	}
	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(m.Visible) {
			return model.Event{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no event at index %d", n)}
		}
		return m.Visible[n-1], nil
	}
	var found []model.Event
	for _, e := range m.Events {
		if strings.HasPrefix(strings.ToLower(e.ID), target) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return model.Event{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no event matches %q", target)}
	case 1:
		return found[0], nil
	default:
		return model.Event{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("%q matches %d events", target, len(found))}
	}
}

func (m *Model) editEvent(ev model.Event, a commands.EditArgs) (string, error) {
	edited := ev
	if a.Title != nil {
		edited.Title = *a.Title
	}
	if a.Date != nil {
		edited.Date = *a.Date
	}
	if a.StartTime != nil {
		edited.StartTime = *a.StartTime
	}
	if a.EndTime != nil {
		edited.EndTime = *a.EndTime
	}
	if a.Notify != nil {
		edited.NotificationTime = *a.Notify
	}
	if a.Category != nil {
		edited.Category = *a.Category
	}
	if a.Location != nil {
		edited.Location = *a.Location
	}
	if a.Description != nil {
		edited.Description = *a.Description
	}

	if !ev.InSeries() {
		return m.run(pendingOp{kind: opUpdate, event: edited}, service.SaveOptions{})
	}

	one := pendingOp{kind: opUpdateOccurrence, event: edited}
	all := pendingOp{kind: opUpdateSeries, repeatID: ev.Repeat.ID, patch: service.SeriesPatch{
		Title:            a.Title,
		Description:      a.Description,
		Location:         a.Location,
		Category:         a.Category,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		NotificationTime: a.Notify,
	}}
	switch a.Scope {
	case commands.ScopeOne:
		return m.run(one, service.SaveOptions{})
	case commands.ScopeAll:
		if a.Date != nil {
			return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "date cannot be changed for a whole series"}
		}
		return m.run(all, service.SaveOptions{})
	}
	if a.Date != nil {
		return m.run(one, service.SaveOptions{})
	}
	m.Dialog = &Dialog{Kind: DialogSeries, Mode: "edit", Title: ev.Title, one: one, all: all}
	return "반복 일정 수정 범위를 선택하세요.", nil
}

func (m *Model) exportICS(path string) (commands.Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return commands.Result{}, err
	}
	events := m.Visible
	if m.SearchTerm == "" {
		events = m.Events
	}
	if err := ics.Export(f, events, ics.ExportOptions{Location: m.loc, Now: m.now}); err != nil {
		f.Close()
		return commands.Result{}, err
	}
	if err := f.Close(); err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: fmt.Sprintf("%d개 일정을 %s에 내보냈습니다.", len(events), path)}, nil
}

func (m *Model) importICS(path string) (commands.Result, error) {
	if m.svc == nil {
		return commands.Result{}, fmt.Errorf("event service not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return commands.Result{}, err
	}
	defer f.Close()
	decoded, err := ics.Import(f, ics.ImportOptions{Location: m.loc, DefaultNotification: m.defaultNotify})
	if err != nil {
		return commands.Result{}, err
	}
	stored, skipped, err := m.svc.Import(m.ctx, decoded)
	if err != nil {
		return commands.Result{}, err
	}
	m.reload()
	msg := fmt.Sprintf("%d개 일정을 가져왔습니다.", len(stored))
	if skipped > 0 {
		msg += fmt.Sprintf(" (%d개 건너뜀)", skipped)
	}
	return commands.Result{Message: msg}, nil
}
