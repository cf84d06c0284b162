package update

import (
	tea "github.com/charmbracelet/bubbletea"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/scheduler"
	"github.com/sandeepkv93/eventd/internal/views"
)

const maxNotifications = 20

func waitForNotificationCmd(ch <-chan scheduler.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationMsg{Notification: n}
	}
}

// receiveNotification pushes n onto the stack and marks its event as
// notified for the rest of the session.
func (m *Model) receiveNotification(n scheduler.Notification) {
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	fired := n.Event
	if fired.ID == "" {
		fired.ID = n.EventID
	}
	m.Notified.Mark(fired)
	m.Status = StatusBar{Text: n.Message}
	if m.DesktopEnabled && m.notifier != nil {
		if err := m.notifier.Send("eventd", n.Message); err != nil {
			appLog.Error("desktop notification failed", err, "event_id", n.EventID)
		}
	}
}

// dismissNotification drops the oldest notification. The event stays
// marked as notified, so it never fires again this session.
func (m *Model) dismissNotification() {
	m.dismissNotificationAt(1)
}

// dismissNotificationAt drops the n-th notification on the stack, oldest
// first. It reports false when there is no such notification.
func (m *Model) dismissNotificationAt(n int) bool {
	if n < 1 || n > len(m.Notifications) {
		return false
	}
	m.Notifications = append(m.Notifications[:n-1:n-1], m.Notifications[n:]...)
	return true
}

func (m *Model) forgetNotified(eventID string) {
	m.Notified.Forget(eventID)
	if m.poller != nil {
		m.poller.Fired().Forget(eventID)
	}
}

func (m Model) renderNotifications() string {
	messages := make([]string, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		messages = append(messages, n.Message)
	}
	return views.RenderNotifications(messages)
}
