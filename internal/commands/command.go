package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/eventd/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeEdit   Type = "edit"
	TypeDelete Type = "delete"
	TypeMove   Type = "move"
	TypeSearch Type = "search"
	TypeView   Type = "view"
	TypeGoto   Type = "goto"
	TypeNext   Type = "next"
	TypePrev   Type = "prev"
	TypeToday  Type = "today"
	TypeExport Type = "export"
	TypeImport Type = "import"

	TypeDismiss Type = "dismiss"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidArg(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Scope selects which members of a series an edit or delete touches. The
// zero value leaves the choice to the caller, which usually asks.
type Scope string

const (
	ScopeAsk Scope = ""
	ScopeOne Scope = "one"
	ScopeAll Scope = "all"
)

// FocusedDate stands for the date the calendar is focused on. The handler
// resolves it.
const FocusedDate = "."

type AddArgs struct {
	Date        string
	StartTime   string
	EndTime     string
	Title       string
	Repeat      model.RepeatRule
	Notify      *int
	Category    string
	Location    string
	Description string
}

type EditArgs struct {
	Target      string
	Title       *string
	Date        *string
	StartTime   *string
	EndTime     *string
	Notify      *int
	Category    *string
	Location    *string
	Description *string
	Scope       Scope
}

func (a EditArgs) Empty() bool {
	return a.Title == nil && a.Date == nil && a.StartTime == nil && a.EndTime == nil &&
		a.Notify == nil && a.Category == nil && a.Location == nil && a.Description == nil
}

type DeleteArgs struct {
	Target string
	Scope  Scope
}

type MoveArgs struct {
	Target string
	Date   string
	Scope  Scope
}

type SearchArgs struct {
	Term string
}

type ViewArgs struct {
	View model.View
}

type GotoArgs struct {
	Date string
}

type FileArgs struct {
	Path string
}

// DismissArgs picks the notification to close. Index is 1-based, oldest
// first.
type DismissArgs struct {
	Index int
	All   bool
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Edit    *EditArgs
	Delete  *DeleteArgs
	Move    *MoveArgs
	Search  *SearchArgs
	View    *ViewArgs
	Goto    *GotoArgs
	File    *FileArgs
	Dismiss *DismissArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts, err := splitArgs(raw)
	if err != nil {
		return Command{}, err
	}
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypeMove:
		return parseMove(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Term: strings.Join(args, " ")}}, nil
	case TypeView:
		return parseView(input, args)
	case TypeGoto:
		return parseGoto(input, args)
	case TypeNext, TypePrev, TypeToday:
		return Command{Type: Type(head), Raw: input}, nil
	case TypeExport, TypeImport:
		if len(args) == 0 {
			return Command{}, invalidArg("%s requires a file path", head)
		}
		return Command{Type: Type(head), Raw: input, File: &FileArgs{Path: strings.Join(args, " ")}}, nil
	case TypeDismiss:
		return parseDismiss(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, invalidArg("add requires <date> <start>-<end> <title>")
	}
	date, err := parseDayArg(args[0])
	if err != nil {
		return Command{}, err
	}
	start, end, err := parseTimeRange(args[1])
	if err != nil {
		return Command{}, err
	}

	out := AddArgs{
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Repeat:    model.RepeatRule{Type: model.RepeatNone, Interval: 1},
	}
	var title []string
	for _, arg := range args[2:] {
		key, value, ok := option(arg)
		if !ok {
			title = append(title, arg)
			continue
		}
		switch key {
		case "repeat":
			rule, err := parseRepeat(value)
			if err != nil {
				return Command{}, err
			}
			rule.EndDate = out.Repeat.EndDate
			out.Repeat = rule
		case "until":
			d, err := parseDateArg(value)
			if err != nil {
				return Command{}, err
			}
			out.Repeat.EndDate = d
		case "notify":
			n, err := parseNotify(value)
			if err != nil {
				return Command{}, err
			}
			out.Notify = &n
		case "cat":
			out.Category = value
		case "loc":
			out.Location = value
		case "desc":
			out.Description = value
		default:
			title = append(title, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(title, " "))
	if out.Title == "" {
		return Command{}, invalidArg("add requires a title")
	}
	if out.Repeat.EndDate != "" && out.Repeat.Type == model.RepeatNone {
		return Command{}, invalidArg("until requires repeat")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalidArg("edit requires target and at least one field")
	}
	out := EditArgs{Target: strings.ToLower(args[0])}
	for _, arg := range args[1:] {
		key, value, ok := option(arg)
		if !ok {
			return Command{}, invalidArg("expected key=value, got %q", arg)
		}
		switch key {
		case "title":
			if strings.TrimSpace(value) == "" {
				return Command{}, invalidArg("title must not be empty")
			}
			out.Title = &value
		case "date":
			d, err := parseDateArg(value)
			if err != nil {
				return Command{}, err
			}
			out.Date = &d
		case "time":
			start, end, err := parseTimeRange(value)
			if err != nil {
				return Command{}, err
			}
			out.StartTime, out.EndTime = &start, &end
		case "notify":
			n, err := parseNotify(value)
			if err != nil {
				return Command{}, err
			}
			out.Notify = &n
		case "cat":
			out.Category = &value
		case "loc":
			out.Location = &value
		case "desc":
			out.Description = &value
		case "scope":
			s, err := parseScope(value)
			if err != nil {
				return Command{}, err
			}
			out.Scope = s
		default:
			return Command{}, invalidArg("unknown field: %s", key)
		}
	}
	if out.Empty() {
		return Command{}, invalidArg("edit requires at least one field")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &out}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalidArg("delete requires a target")
	}
	out := DeleteArgs{Target: strings.ToLower(args[0])}
	for _, arg := range args[1:] {
		key, value, ok := option(arg)
		if !ok || key != "scope" {
			return Command{}, invalidArg("unexpected argument: %s", arg)
		}
		s, err := parseScope(value)
		if err != nil {
			return Command{}, err
		}
		out.Scope = s
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &out}, nil
}

func parseMove(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalidArg("move requires target and date")
	}
	d, err := parseDayArg(args[1])
	if err != nil {
		return Command{}, err
	}
	out := MoveArgs{Target: strings.ToLower(args[0]), Date: d}
	for _, arg := range args[2:] {
		key, value, ok := option(arg)
		if !ok || key != "scope" {
			return Command{}, invalidArg("unexpected argument: %s", arg)
		}
		s, err := parseScope(value)
		if err != nil {
			return Command{}, err
		}
		out.Scope = s
	}
	return Command{Type: TypeMove, Raw: raw, Move: &out}, nil
}

func parseDismiss(raw string, args []string) (Command, error) {
	out := DismissArgs{Index: 1}
	switch {
	case len(args) == 0:
	case len(args) == 1 && strings.EqualFold(args[0], "all"):
		out = DismissArgs{All: true}
	case len(args) == 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return Command{}, invalidArg("dismiss takes a notification number or all")
		}
		out.Index = n
	default:
		return Command{}, invalidArg("dismiss takes a notification number or all")
	}
	return Command{Type: TypeDismiss, Raw: raw, Dismiss: &out}, nil
}

func parseView(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalidArg("view requires month or week")
	}
	v, err := model.ParseView(args[0])
	if err != nil {
		return Command{}, invalidArg("unknown view: %s", args[0])
	}
	return Command{Type: TypeView, Raw: raw, View: &ViewArgs{View: v}}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalidArg("goto requires a date")
	}
	d, err := parseDayArg(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Date: d}}, nil
}

func option(arg string) (string, string, bool) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", false
	}
	return strings.ToLower(key), value, true
}

// parseDayArg is parseDateArg that also accepts FocusedDate.
func parseDayArg(v string) (string, error) {
	if v == FocusedDate {
		return v, nil
	}
	return parseDateArg(v)
}

func parseDateArg(v string) (string, error) {
	if _, err := model.ParseDate(v); err != nil {
		return "", invalidArg("invalid date %q, want YYYY-MM-DD", v)
	}
	return v, nil
}

func parseTimeRange(v string) (string, string, error) {
	start, end, ok := strings.Cut(v, "-")
	if !ok {
		return "", "", invalidArg("invalid time range %q, want HH:MM-HH:MM", v)
	}
	s, err := model.ParseClock(start)
	if err != nil {
		return "", "", invalidArg("invalid start time %q", start)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return "", "", invalidArg("invalid end time %q", end)
	}
	if s >= e {
		return "", "", invalidArg("start time must be before end time")
	}
	return start, end, nil
}

func parseRepeat(v string) (model.RepeatRule, error) {
	name, every, hasInterval := strings.Cut(v, "/")
	t, err := model.ParseRepeatType(strings.ToLower(name))
	if err != nil {
		return model.RepeatRule{}, invalidArg("unknown repeat type: %s", name)
	}
	interval := 1
	if hasInterval {
		n, err := strconv.Atoi(every)
		if err != nil || n <= 0 {
			return model.RepeatRule{}, invalidArg("repeat interval must be a positive number")
		}
		interval = n
	}
	return model.RepeatRule{Type: t, Interval: interval}, nil
}

func parseNotify(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, invalidArg("notify must be a non-negative number of minutes")
	}
	return n, nil
}

func parseScope(v string) (Scope, error) {
	switch Scope(strings.ToLower(v)) {
	case ScopeOne:
		return ScopeOne, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return ScopeAsk, invalidArg("scope must be one or all")
	}
}

// splitArgs splits on whitespace. Double quotes group words, also after
// "key=".
func splitArgs(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, invalidArg("unterminated quote")
	}
	if started {
		out = append(out, cur.String())
	}
	if len(out) == 0 {
		return nil, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	return out, nil
}
