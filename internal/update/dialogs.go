package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/service"
	"github.com/sandeepkv93/eventd/internal/views"
)

type DialogKind string

const (
	DialogOverlap DialogKind = "overlap"
	DialogSeries  DialogKind = "series"
)

// Dialog is a modal confirmation. An overlap dialog retries its pending
// operation with overlaps allowed; a series dialog runs one of two
// operations depending on the scope picked.
type Dialog struct {
	Kind    DialogKind
	Mode    string
	Title   string
	Entries []string

	pending pendingOp
	one     pendingOp
	all     pendingOp
}

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opUpdateOccurrence
	opUpdateSeries
	opMove
	opMoveSeries
	opDelete
	opDeleteSeries
)

type pendingOp struct {
	kind     opKind
	event    model.Event
	patch    service.SeriesPatch
	repeatID string
	date     string
}

// run executes op. An overlap conflict opens the overlap dialog instead of
// failing; nothing is written until the user confirms.
func (m *Model) run(op pendingOp, opts service.SaveOptions) (string, error) {
	if m.svc == nil {
		return "", errors.New("event service not configured")
	}
	msg, err := m.apply(op, opts)
	var overlap *service.OverlapError
	if errors.As(err, &overlap) && !opts.AllowOverlap {
		m.Dialog = &Dialog{Kind: DialogOverlap, Entries: overlap.Lines(), pending: op}
		appLog.Debug("overlap dialog opened", "conflicts", len(overlap.Conflicts))
		return "일정 겹침 확인 필요", nil
	}
	if err != nil {
		return "", err
	}
	m.reload()
	return msg, nil
}

func (m *Model) apply(op pendingOp, opts service.SaveOptions) (string, error) {
	switch op.kind {
	case opCreate:
		created, err := m.svc.Create(m.ctx, op.event, opts)
		if err != nil {
			return "", err
		}
		if len(created) > 1 {
			return fmt.Sprintf("반복 일정 %d개가 추가되었습니다.", len(created)), nil
		}
		return "일정이 추가되었습니다.", nil
	case opUpdate:
		if _, err := m.svc.Update(m.ctx, op.event, opts); err != nil {
			return "", err
		}
		return "일정이 수정되었습니다.", nil
	case opUpdateOccurrence:
		if _, err := m.svc.UpdateOccurrence(m.ctx, op.event, opts); err != nil {
			return "", err
		}
		return "일정이 수정되었습니다.", nil
	case opUpdateSeries:
		updated, err := m.svc.UpdateSeries(m.ctx, op.repeatID, op.patch, opts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("반복 일정 %d개가 수정되었습니다.", len(updated)), nil
	case opMove:
		if _, err := m.svc.Move(m.ctx, op.event.ID, op.date, opts); err != nil {
			return "", err
		}
		return fmt.Sprintf("일정이 %s(으)로 이동되었습니다.", op.date), nil
	case opMoveSeries:
		moved, err := m.svc.MoveSeries(m.ctx, op.event.ID, op.date, opts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("반복 일정 %d개가 이동되었습니다.", len(moved)), nil
	case opDelete:
		if err := m.svc.Delete(m.ctx, op.event.ID); err != nil {
			return "", err
		}
		m.forgetNotified(op.event.ID)
		return "일정이 삭제되었습니다.", nil
	case opDeleteSeries:
		n, err := m.svc.DeleteSeries(m.ctx, op.repeatID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("반복 일정 %d개가 삭제되었습니다.", n), nil
	default:
		return "", fmt.Errorf("unknown operation %d", op.kind)
	}
}

func (m Model) handleDialogKey(msg tea.KeyMsg) Model {
	d := m.Dialog
	switch msg.String() {
	case "y", "Y", "enter":
		m.Dialog = nil
		if d.Kind == DialogOverlap {
			res, err := m.run(d.pending, service.SaveOptions{AllowOverlap: true})
			m.setResult(res, err)
		} else {
			res, err := m.run(d.one, service.SaveOptions{})
			m.setResult(res, err)
		}
	case "n", "N":
		m.Dialog = nil
		if d.Kind == DialogOverlap {
			m.Status = StatusBar{Text: "취소되었습니다."}
		} else {
			res, err := m.run(d.all, service.SaveOptions{})
			m.setResult(res, err)
		}
	case "esc":
		m.Dialog = nil
		m.Status = StatusBar{Text: "취소되었습니다."}
	}
	return m
}

func (m Model) renderDialog() string {
	if m.Dialog == nil {
		return ""
	}
	if m.Dialog.Kind == DialogOverlap {
		return views.RenderOverlapDialog(m.Dialog.Entries)
	}
	return views.RenderSeriesDialog(m.Dialog.Mode, m.Dialog.Title)
}

// setResult reports the outcome of an operation on the status line.
func (m *Model) setResult(msg string, err error) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: describeError(err), IsError: true}
		appLog.Error("operation failed", err)
		return
	}
	m.LastError = nil
	m.Status = StatusBar{Text: msg}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, model.ErrTitleRequired):
		return "필수 정보를 모두 입력해주세요."
	case errors.Is(err, model.ErrInvalidTimeRange):
		return "시간 설정을 확인해주세요."
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrSeriesNotFound):
		return "일정을 찾을 수 없습니다."
	default:
		return err.Error()
	}
}

// moveEvent moves ev to date. A series member asks whether the occurrence
// alone or the whole series shifts, like an edit.
func (m *Model) moveEvent(ev model.Event, date string, scope string) (string, error) {
	one := pendingOp{kind: opMove, event: ev, date: date}
	if !ev.InSeries() {
		return m.run(one, service.SaveOptions{})
	}
	all := pendingOp{kind: opMoveSeries, event: ev, date: date}
	switch scope {
	case "one":
		return m.run(one, service.SaveOptions{})
	case "all":
		return m.run(all, service.SaveOptions{})
	}
	m.Dialog = &Dialog{Kind: DialogSeries, Mode: "edit", Title: ev.Title, one: one, all: all}
	return "반복 일정 수정 범위를 선택하세요.", nil
}

func (m *Model) deleteEvent(ev model.Event, scope string) (string, error) {
	one := pendingOp{kind: opDelete, event: ev}
	if !ev.InSeries() {
		return m.run(one, service.SaveOptions{})
	}
	all := pendingOp{kind: opDeleteSeries, repeatID: ev.Repeat.ID}
	switch scope {
	case "one":
		return m.run(one, service.SaveOptions{})
	case "all":
		return m.run(all, service.SaveOptions{})
	}
	m.Dialog = &Dialog{Kind: DialogSeries, Mode: "delete", Title: ev.Title, one: one, all: all}
	return "반복 일정 삭제 범위를 선택하세요.", nil
}
