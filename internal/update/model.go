package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/scheduler"
	"github.com/sandeepkv93/eventd/internal/service"
)

// EventService is the part of the service layer the UI drives.
type EventService interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	Create(ctx context.Context, draft model.Event, opts service.SaveOptions) ([]model.Event, error)
	Update(ctx context.Context, ev model.Event, opts service.SaveOptions) (model.Event, error)
	UpdateOccurrence(ctx context.Context, ev model.Event, opts service.SaveOptions) (model.Event, error)
	UpdateSeries(ctx context.Context, repeatID string, patch service.SeriesPatch, opts service.SaveOptions) ([]model.Event, error)
	Move(ctx context.Context, id, date string, opts service.SaveOptions) (model.Event, error)
	MoveSeries(ctx context.Context, id, date string, opts service.SaveOptions) ([]model.Event, error)
	Delete(ctx context.Context, id string) error
	DeleteSeries(ctx context.Context, repeatID string) (int, error)
	Import(ctx context.Context, events []model.Event) ([]model.Event, int, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Palette string
	Help    string
	Quit    string
	Dismiss string
	Month   string
	Week    string
	Today   string
	Delete  string
	Edit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView model.View
	FocusDate   time.Time
	// Events holds everything stored; Visible is the current view range
	// narrowed by SearchTerm, in start order.
	Events        []model.Event
	Visible       []model.Event
	Cursor        int
	SearchTerm    string
	Notifications []scheduler.Notification
	// Notified holds the schedules that produced a notification on screen.
	Notified      *scheduler.FiredSet
	Palette       CommandPaletteState
	HelpVisible   bool
	Dialog        *Dialog
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	DesktopEnabled bool
	notifier       DesktopNotifier

	svc           EventService
	poller        *scheduler.Poller
	ctx           context.Context
	loc           *time.Location
	now           func() time.Time
	defaultNotify int
	stateFilePath string
	holidays      model.HolidayCalendar

	commandInput textinput.Model
	helpModel    help.Model
}

type Options struct {
	Service              EventService
	Poller               *scheduler.Poller
	Notifier             DesktopNotifier
	DesktopNotifications bool
	Location             *time.Location
	Now                  func() time.Time
	DefaultView          model.View
	DefaultNotification  int
	StateFile            string
	Holidays             map[string]string
	Context              context.Context
}

type DesktopNotifier interface {
	Send(title, body string) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(string, string) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type NotificationMsg struct {
	Notification scheduler.Notification
}

// ReloadMsg asks the model to re-read events from the service.
type ReloadMsg struct{}

func NewModel(opts Options) Model {
	m := Model{
		CurrentView:   model.ViewMonth,
		Notified:      scheduler.NewFiredSet(),
		notifier:      NoopDesktopNotifier{},
		svc:           opts.Service,
		poller:        opts.Poller,
		ctx:           opts.Context,
		loc:           opts.Location,
		now:           opts.Now,
		defaultNotify: opts.DefaultNotification,
		stateFilePath: strings.TrimSpace(opts.StateFile),
		holidays:      model.NewHolidayCalendar(opts.Holidays),
		Keys: GlobalKeyMap{
			Palette: "/",
			Help:    "?",
			Quit:    "q",
			Dismiss: "x",
			Month:   "m",
			Week:    "w",
			Today:   "t",
			Delete:  "d",
			Edit:    "e",
		},
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.defaultNotify < 0 {
		m.defaultNotify = 0
	}
	if opts.DefaultView.IsValid() {
		m.CurrentView = opts.DefaultView
	}
	m.DesktopEnabled = opts.DesktopNotifications
	if opts.Notifier != nil {
		m.notifier = opts.Notifier
	}
	m.FocusDate = m.today()

	if m.stateFilePath != "" {
		state, err := loadViewState(m.stateFilePath)
		if err != nil {
			appLog.Error("view state load failed", err, "path", m.stateFilePath)
		} else {
			m.applyViewState(state)
		}
	}

	m.initBubbleComponents()
	m.reload()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 64
	m.commandInput.Placeholder = "add 2025-06-02 10:00-11:00 회의 repeat=weekly"

	m.helpModel = help.New()
}

// today is the current civil date in the event location, as a UTC midnight.
func (m Model) today() time.Time {
	y, mo, d := m.now().In(m.loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// reload refreshes Events from the service and rebuilds the visible list.
func (m *Model) reload() {
	if m.svc == nil {
		m.refreshVisible()
		return
	}
	events, err := m.svc.ListEvents(m.ctx)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("일정 로딩 실패: %v", err), IsError: true}
		appLog.Error("events load failed", err)
		return
	}
	m.Events = events
	m.refreshVisible()
}

func (m *Model) refreshVisible() {
	matched := model.Search(m.Events, m.SearchTerm)
	m.Visible = model.FilterByView(matched, m.CurrentView, m.FocusDate)
	model.SortByStart(m.Visible)
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) selected() (model.Event, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return model.Event{}, false
	}
	return m.Visible[m.Cursor], true
}

// isNotified reports whether e fired under its current schedule. An edit
// to the date, start time or lead time clears the mark.
func (m Model) isNotified(e model.Event) bool {
	if m.Notified.Has(e) {
		return true
	}
	return m.poller != nil && m.poller.Fired().Has(e)
}
