package update

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/eventd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const commandHelp = `# 명령어

- ` + "`add <date> <start>-<end> <title> [repeat=weekly/2] [until=<date>] [notify=10] [cat=] [loc=] [desc=]`" + `
- ` + "`edit <n|id> [title=] [date=] [time=HH:MM-HH:MM] [notify=] [scope=one|all]`" + `
- ` + "`delete <n|id> [scope=one|all]`" + `, ` + "`move <n|id> <date> [scope=one|all]`" + `
- ` + "`dismiss [n|all]`" + `
- ` + "`search <term>`" + `, ` + "`view month|week`" + `, ` + "`goto <date>`" + `, ` + "`next`" + `, ` + "`prev`" + `, ` + "`today`" + `
- ` + "`export <file.ics>`" + `, ` + "`import <file.ics>`" + `

날짜 자리에 ` + "`.`" + `를 쓰면 현재 선택한 날짜가 들어갑니다.

반복 유형: daily, weekly, monthly, yearly. 31일 월간 반복과 2월 29일 연간 반복은 해당 날짜가 없는 달(해)을 건너뜁니다.
`

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	return views.RenderHelpPanel(commandHelp, m.helpModel.View(helpKeyMap{
		short: bindings,
		full:  [][]key.Binding{bindings},
	}))
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "h/l", Action: "previous/next period"},
		{Key: "j/k", Action: "move selection"},
		{Key: m.Keys.Today, Action: "today"},
		{Key: m.Keys.Month, Action: "month view"},
		{Key: m.Keys.Week, Action: "week view"},
		{Key: m.Keys.Edit, Action: "edit selected"},
		{Key: m.Keys.Delete, Action: "delete selected"},
		{Key: m.Keys.Dismiss, Action: "dismiss oldest notification"},
		{Key: "1-9", Action: "dismiss numbered notification"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
