package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/eventd/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add 2025-06-02 10:00-11:00 team sync", TypeAdd},
		{"edit 2 title=standup", TypeEdit},
		{"delete ab12 scope=all", TypeDelete},
		{"move 1 2025-06-09", TypeMove},
		{"search", TypeSearch},
		{"view week", TypeView},
		{"goto 2025-12-25", TypeGoto},
		{"next", TypeNext},
		{"PREV", TypePrev},
		{"today", TypeToday},
		{"export out.ics", TypeExport},
		{"import in.ics", TypeImport},
		{"dismiss", TypeDismiss},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddWithOptions(t *testing.T) {
	cmd, err := Parse(`add 2025-01-31 09:00-09:30 월간 보고 repeat=monthly/2 until=2025-12-31 notify=60 cat=업무 loc="회의실 B" desc="분기 정리"`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	a := cmd.Add
	if a.Title != "월간 보고" || a.Date != "2025-01-31" || a.StartTime != "09:00" || a.EndTime != "09:30" {
		t.Fatalf("unexpected add args: %+v", a)
	}
	want := model.RepeatRule{Type: model.RepeatMonthly, Interval: 2, EndDate: "2025-12-31"}
	if a.Repeat != want {
		t.Fatalf("repeat = %+v, want %+v", a.Repeat, want)
	}
	if a.Notify == nil || *a.Notify != 60 || a.Category != "업무" || a.Location != "회의실 B" || a.Description != "분기 정리" {
		t.Fatalf("unexpected options: %+v", a)
	}
}

func TestParseAddDefaults(t *testing.T) {
	cmd, err := Parse("add 2025-06-02 10:00-11:00 lunch")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Notify != nil || cmd.Add.Repeat.Type != model.RepeatNone || cmd.Add.Repeat.Interval != 1 {
		t.Fatalf("unexpected defaults: %+v", cmd.Add)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"add 2025-06-02 10:00-11:00",
		"add 2025-02-30 10:00-11:00 x",
		"add 2025-06-02 11:00-10:00 x",
		"add 2025-06-02 10:00-11:00 x repeat=hourly",
		"add 2025-06-02 10:00-11:00 x repeat=daily/0",
		"add 2025-06-02 10:00-11:00 x notify=-5",
		"add 2025-06-02 10:00-11:00 x until=2025-07-01",
		"edit 1",
		"edit 1 color=red",
		"edit 1 scope=one",
		"delete",
		"delete 1 scope=some",
		"move 1",
		"move 1 2025-06-09 scope=both",
		"add . 10:00 x",
		"view day",
		"goto tomorrow",
		"export",
		"dismiss 0",
		"dismiss 1 2",
		`add 2025-06-02 10:00-11:00 "open`,
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseFocusedDate(t *testing.T) {
	cmd, err := Parse("add . 10:00-11:00 lunch")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Date != FocusedDate {
		t.Fatalf("add date = %q, want %q", cmd.Add.Date, FocusedDate)
	}
	cmd, err = Parse("move 2 . scope=all")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Move.Date != FocusedDate || cmd.Move.Scope != ScopeAll || cmd.Move.Target != "2" {
		t.Fatalf("unexpected move args: %+v", cmd.Move)
	}
	if _, err := Parse("add 2025-06-02 10:00-11:00 x repeat=daily until=."); err == nil {
		t.Fatal("until accepted the focused date marker")
	}
}

func TestParseDismiss(t *testing.T) {
	cases := map[string]DismissArgs{
		"dismiss":     {Index: 1},
		"dismiss 3":   {Index: 3},
		"dismiss ALL": {All: true},
	}
	for in, want := range cases {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		if *cmd.Dismiss != want {
			t.Fatalf("parse %q = %+v, want %+v", in, *cmd.Dismiss, want)
		}
	}
}

func TestParseEditFields(t *testing.T) {
	cmd, err := Parse(`edit AB12 title="new title" time=14:00-15:30 notify=0 scope=one`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	e := cmd.Edit
	if e.Target != "ab12" || *e.Title != "new title" || *e.StartTime != "14:00" || *e.EndTime != "15:30" {
		t.Fatalf("unexpected edit args: %+v", e)
	}
	if *e.Notify != 0 || e.Scope != ScopeOne || e.Date != nil {
		t.Fatalf("unexpected edit args: %+v", e)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add 2025-06-02 10:00-11:00 write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteNavigation(t *testing.T) {
	var got []string
	h := Handlers{
		Next:  func() (Result, error) { got = append(got, "next"); return Result{}, nil },
		Prev:  func() (Result, error) { got = append(got, "prev"); return Result{}, nil },
		Today: func() (Result, error) { got = append(got, "today"); return Result{}, nil },
	}
	for _, in := range []string{"next", "prev", "today"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if _, err := Execute(cmd, h); err != nil {
			t.Fatalf("execute %q: %v", in, err)
		}
	}
	if len(got) != 3 || got[0] != "next" || got[2] != "today" {
		t.Fatalf("unexpected dispatch order: %v", got)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("search 회의")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
