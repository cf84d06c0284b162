package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header        string
	Notifications string
	Calendar      string
	List          string
	Overlay       string
	StatusLine    string
	StatusIsError bool
	Footer        string
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dialogStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	notifiedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	holidayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderApp lays out the screen: notifications on top, calendar and event
// list side by side, then any open dialog or palette and the status line.
func RenderApp(data AppData) string {
	lines := []string{headerStyle.Render(data.Header)}
	if data.Notifications != "" {
		lines = append(lines, data.Notifications)
	}

	left := panelStyle.Render(data.Calendar)
	right := panelStyle.Width(48).Render(data.List)
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, left, right))

	if data.Overlay != "" {
		lines = append(lines, data.Overlay)
	}
	if data.StatusLine != "" {
		if data.StatusIsError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
