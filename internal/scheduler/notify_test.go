package scheduler

import (
	"testing"
	"time"

	"github.com/sandeepkv93/eventd/internal/model"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func meeting(id string, notify int) model.Event {
	return model.Event{
		ID:               id,
		Title:            "팀 회의",
		Date:             "2025-06-01",
		StartTime:        "10:00",
		EndTime:          "11:00",
		NotificationTime: notify,
	}
}

func TestEvaluateFiresOnceInsideWindow(t *testing.T) {
	fired := NewFiredSet()
	events := []model.Event{meeting("e1", 10)}

	got, errs := Evaluate(at(t, "2025-06-01 09:49"), events, fired, time.UTC)
	if len(got) != 0 || len(errs) != 0 {
		t.Fatalf("expected dormant before window, got %#v %v", got, errs)
	}

	got, _ = Evaluate(at(t, "2025-06-01 09:50"), events, fired, time.UTC)
	if len(got) != 1 || got[0].EventID != "e1" {
		t.Fatalf("expected one notification at window start, got %#v", got)
	}
	if got[0].Message != "10분 후 팀 회의 일정이 시작됩니다." {
		t.Fatalf("unexpected message: %q", got[0].Message)
	}
	if !fired.Has(got[0].Event) || got[0].Event.StartTime != events[0].StartTime {
		t.Fatalf("notification should carry the fired schedule: %#v", got[0].Event)
	}

	for _, now := range []string{"2025-06-01 09:51", "2025-06-01 09:55", "2025-06-01 09:59"} {
		again, _ := Evaluate(at(t, now), events, fired, time.UTC)
		if len(again) != 0 {
			t.Fatalf("event fired twice at %s: %#v", now, again)
		}
	}
	if !fired.Notified("e1") {
		t.Fatal("expected e1 to be recorded as notified")
	}
}

func TestEvaluateSkipsPastAndDisabled(t *testing.T) {
	fired := NewFiredSet()
	events := []model.Event{meeting("past", 10), meeting("off", 0)}
	got, _ := Evaluate(at(t, "2025-06-01 10:00"), events, fired, time.UTC)
	if len(got) != 0 {
		t.Fatalf("expected no notification at start time, got %#v", got)
	}
	got, _ = Evaluate(at(t, "2025-06-01 12:00"), events, fired, time.UTC)
	if len(got) != 0 || fired.Len() != 0 {
		t.Fatalf("expected past event to stay dormant, got %#v", got)
	}
}

func TestEvaluateReportsMalformedButContinues(t *testing.T) {
	bad := meeting("bad", 10)
	bad.StartTime = "10h"
	events := []model.Event{bad, meeting("good", 30)}
	got, errs := Evaluate(at(t, "2025-06-01 09:45"), events, NewFiredSet(), time.UTC)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if len(got) != 1 || got[0].EventID != "good" {
		t.Fatalf("expected good to fire, got %#v", got)
	}
}

func TestEvaluateRearmsAfterReschedule(t *testing.T) {
	fired := NewFiredSet()
	e := meeting("e1", 10)
	if got, _ := Evaluate(at(t, "2025-06-01 09:55"), []model.Event{e}, fired, time.UTC); len(got) != 1 {
		t.Fatalf("expected first fire, got %#v", got)
	}
	e.StartTime = "10:30"
	e.EndTime = "11:30"
	if got, _ := Evaluate(at(t, "2025-06-01 10:25"), []model.Event{e}, fired, time.UTC); len(got) != 1 {
		t.Fatalf("expected moved event to fire again, got %#v", got)
	}
}

func TestEvaluateUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	e := meeting("e1", 60)
	now := time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC) // 09:30 KST
	got, _ := Evaluate(now, []model.Event{e}, NewFiredSet(), seoul)
	if len(got) != 1 {
		t.Fatalf("expected notification in KST window, got %#v", got)
	}
}

func TestFiredSetForget(t *testing.T) {
	fired := NewFiredSet()
	e := meeting("e1", 10)
	if !fired.Mark(e) || fired.Mark(e) {
		t.Fatal("mark should only succeed once")
	}
	fired.Forget("e1")
	if fired.Has(e) || fired.Notified("e1") {
		t.Fatal("forget did not clear e1")
	}
}
