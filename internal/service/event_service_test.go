package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/storage"
)

func newService(t *testing.T) *EventService {
	t.Helper()
	n := 0
	return NewEventService(storage.NewMemoryRepository(), model.ExpandOptions{
		NewSeriesID: func() string {
			n++
			return fmt.Sprintf("series-%d", n)
		},
	})
}

func draft(title, date, start, end string) model.Event {
	return model.Event{
		Title:            title,
		Date:             date,
		StartTime:        start,
		EndTime:          end,
		Category:         "업무",
		NotificationTime: 10,
	}
}

func mustCreate(t *testing.T, svc *EventService, ev model.Event) []model.Event {
	t.Helper()
	out, err := svc.Create(context.Background(), ev, SaveOptions{})
	if err != nil {
		t.Fatalf("create %q: %v", ev.Title, err)
	}
	return out
}

func TestCreateSingleAssignsID(t *testing.T) {
	svc := newService(t)
	out := mustCreate(t, svc, draft("Lunch", "2025-06-01", "12:00", "13:00"))
	if len(out) != 1 || out[0].ID == "" || out[0].Repeat.Type != model.RepeatNone || out[0].Repeat.ID != "" {
		t.Fatalf("unexpected created event: %#v", out)
	}
	got, err := svc.Get(context.Background(), out[0].ID)
	if err != nil || got.Title != "Lunch" {
		t.Fatalf("get = %#v, %v", got, err)
	}
}

func TestCreateRecurringPersistsSeries(t *testing.T) {
	svc := newService(t)
	ev := draft("Standup", "2025-01-31", "09:00", "09:15")
	ev.Repeat = model.RepeatRule{Type: model.RepeatMonthly, Interval: 1, EndDate: "2025-04-30"}
	out := mustCreate(t, svc, ev)
	if len(out) != 2 || out[0].Date != "2025-01-31" || out[1].Date != "2025-03-31" {
		t.Fatalf("unexpected series: %#v", out)
	}
	if out[0].Repeat.ID != "series-1" || out[1].Repeat.ID != "series-1" || out[0].ID == out[1].ID {
		t.Fatalf("series identity wrong: %#v", out)
	}
	members, err := svc.SeriesMembers(context.Background(), "series-1")
	if err != nil || len(members) != 2 {
		t.Fatalf("members = %#v, %v", members, err)
	}
}

func TestCreateRejectsInvalidWithoutWriting(t *testing.T) {
	for _, interval := range []int{-1, 0} {
		svc := newService(t)
		ev := draft("Bad", "2025-01-01", "09:00", "10:00")
		ev.Repeat = model.RepeatRule{Type: model.RepeatDaily, Interval: interval, EndDate: "2025-01-05"}
		_, err := svc.Create(context.Background(), ev, SaveOptions{})
		if !errors.Is(err, model.ErrInvalidInterval) {
			t.Fatalf("interval %d: expected ErrInvalidInterval, got %v", interval, err)
		}
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("interval %d: expected ValidationError, got %T", interval, err)
		}
		all, _ := svc.List(context.Background())
		if len(all) != 0 {
			t.Fatalf("interval %d: expected nothing stored, got %#v", interval, all)
		}
	}
}

func TestCreateOverlapRequiresConfirmation(t *testing.T) {
	svc := newService(t)
	mustCreate(t, svc, draft("Review", "2025-06-01", "09:00", "10:00"))

	_, err := svc.Create(context.Background(), draft("Sync", "2025-06-01", "09:30", "10:30"), SaveOptions{})
	var oe *OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
	if lines := oe.Lines(); len(lines) != 1 || lines[0] != "Review (2025-06-01 09:00-10:00)" {
		t.Fatalf("unexpected overlap lines: %v", lines)
	}
	all, _ := svc.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("cancelled save must not persist, got %d events", len(all))
	}

	if _, err := svc.Create(context.Background(), draft("Sync", "2025-06-01", "09:30", "10:30"), SaveOptions{AllowOverlap: true}); err != nil {
		t.Fatalf("forced create: %v", err)
	}
	all, _ = svc.List(context.Background())
	if len(all) != 2 {
		t.Fatalf("expected both events after confirmation, got %d", len(all))
	}

	if _, err := svc.Create(context.Background(), draft("After", "2025-06-01", "10:30", "11:00"), SaveOptions{}); err != nil {
		t.Fatalf("back-to-back create should not warn: %v", err)
	}
}

func TestCreateRecurringChecksAllOccurrences(t *testing.T) {
	svc := newService(t)
	mustCreate(t, svc, draft("Dentist", "2025-06-15", "09:00", "10:00"))
	ev := draft("Gym", "2025-06-01", "09:30", "10:30")
	ev.Repeat = model.RepeatRule{Type: model.RepeatWeekly, Interval: 1, EndDate: "2025-06-30"}
	_, err := svc.Create(context.Background(), ev, SaveOptions{})
	var oe *OverlapError
	if !errors.As(err, &oe) || len(oe.Conflicts) != 1 || oe.Conflicts[0].Title != "Dentist" {
		t.Fatalf("expected dentist conflict, got %v", err)
	}
}

func TestUpdateExcludesSelfFromOverlap(t *testing.T) {
	svc := newService(t)
	ev := mustCreate(t, svc, draft("Review", "2025-06-01", "09:00", "10:00"))[0]
	ev.EndTime = "10:30"
	ev.Title = "Long review"
	updated, err := svc.Update(context.Background(), ev, SaveOptions{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EndTime != "10:30" {
		t.Fatalf("unexpected update result: %#v", updated)
	}

	if _, err := svc.Update(context.Background(), model.Event{ID: "ghost", Title: "x", Date: "2025-06-01", StartTime: "01:00", EndTime: "02:00"}, SaveOptions{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func weeklySeries(t *testing.T, svc *EventService) []model.Event {
	t.Helper()
	ev := draft("Class", "2025-06-02", "18:00", "19:00")
	ev.Repeat = model.RepeatRule{Type: model.RepeatWeekly, Interval: 1, EndDate: "2025-06-30"}
	return mustCreate(t, svc, ev)
}

func TestUpdateOccurrenceDetachesFromSeries(t *testing.T) {
	svc := newService(t)
	series := weeklySeries(t, svc)
	one := series[1]
	one.Title = "Special class"
	out, err := svc.UpdateOccurrence(context.Background(), one, SaveOptions{})
	if err != nil {
		t.Fatalf("update occurrence: %v", err)
	}
	if out.IsRecurring() || out.Repeat.ID != "" {
		t.Fatalf("occurrence still in series: %#v", out.Repeat)
	}
	members, _ := svc.SeriesMembers(context.Background(), series[0].Repeat.ID)
	if len(members) != len(series)-1 {
		t.Fatalf("members = %d, want %d", len(members), len(series)-1)
	}
	for _, m := range members {
		if m.Title != "Class" {
			t.Fatalf("sibling changed: %#v", m)
		}
	}
}

func TestUpdateSeriesAppliesPatch(t *testing.T) {
	svc := newService(t)
	series := weeklySeries(t, svc)
	repeatID := series[0].Repeat.ID

	title := "Evening class"
	start, end := "19:00", "20:00"
	until := "2025-06-16"
	out, err := svc.UpdateSeries(context.Background(), repeatID, SeriesPatch{Title: &title, StartTime: &start, EndTime: &end, EndDate: &until}, SaveOptions{})
	if err != nil {
		t.Fatalf("update series: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("kept %d members, want 3", len(out))
	}
	members, _ := svc.SeriesMembers(context.Background(), repeatID)
	if len(members) != 3 {
		t.Fatalf("stored members = %d, want 3", len(members))
	}
	for _, m := range members {
		if m.Title != title || m.StartTime != start || m.Repeat.EndDate != until || m.Description != "" {
			t.Fatalf("unexpected member: %#v", m)
		}
	}

	if _, err := svc.UpdateSeries(context.Background(), "nope", SeriesPatch{Title: &title}, SaveOptions{}); !errors.Is(err, ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound, got %v", err)
	}
}

func TestUpdateSeriesOverlapAgainstOthers(t *testing.T) {
	svc := newService(t)
	series := weeklySeries(t, svc)
	mustCreate(t, svc, draft("Dinner", "2025-06-09", "19:30", "20:30"))
	start, end := "19:00", "20:00"
	_, err := svc.UpdateSeries(context.Background(), series[0].Repeat.ID, SeriesPatch{StartTime: &start, EndTime: &end}, SaveOptions{})
	var oe *OverlapError
	if !errors.As(err, &oe) || len(oe.Conflicts) != 1 {
		t.Fatalf("expected dinner conflict, got %v", err)
	}
}

func TestMoveDetachesAndChecksOverlap(t *testing.T) {
	svc := newService(t)
	series := weeklySeries(t, svc)
	moved, err := svc.Move(context.Background(), series[0].ID, "2025-06-04", SaveOptions{})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Date != "2025-06-04" || moved.InSeries() {
		t.Fatalf("unexpected moved event: %#v", moved)
	}

	_, err = svc.Move(context.Background(), moved.ID, "2025-06-09", SaveOptions{})
	var oe *OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("expected overlap moving onto series member, got %v", err)
	}
	if _, err := svc.Move(context.Background(), moved.ID, "June 9", SaveOptions{}); !errors.Is(err, model.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoveSeriesShiftsEveryMember(t *testing.T) {
	svc := newService(t)
	series := weeklySeries(t, svc)
	moved, err := svc.MoveSeries(context.Background(), series[1].ID, "2025-06-10", SaveOptions{})
	if err != nil {
		t.Fatalf("move series: %v", err)
	}
	if len(moved) != len(series) {
		t.Fatalf("moved %d members, want %d", len(moved), len(series))
	}
	members, err := svc.SeriesMembers(context.Background(), series[0].Repeat.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	want := []string{"2025-06-03", "2025-06-10", "2025-06-17", "2025-06-24", "2025-07-01"}
	for i, m := range members {
		if m.Date != want[i] || m.Repeat.EndDate != "2025-07-01" {
			t.Fatalf("member %d = %s (end %s), want %s", i, m.Date, m.Repeat.EndDate, want[i])
		}
	}

	mustCreate(t, svc, draft("Gym", "2025-06-11", "18:30", "19:30"))
	_, err = svc.MoveSeries(context.Background(), series[1].ID, "2025-06-11", SaveOptions{})
	var oe *OverlapError
	if !errors.As(err, &oe) || len(oe.Conflicts) != 1 {
		t.Fatalf("expected gym conflict, got %v", err)
	}
	members, _ = svc.SeriesMembers(context.Background(), series[0].Repeat.ID)
	if members[0].Date != "2025-06-03" {
		t.Fatalf("series changed despite conflict: %#v", members[0])
	}
}

func TestDeleteAndDeleteSeries(t *testing.T) {
	svc := newService(t)
	series := weeklySeries(t, svc)
	single := mustCreate(t, svc, draft("Solo", "2025-06-03", "08:00", "09:00"))[0]

	if err := svc.Delete(context.Background(), single.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), single.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	n, err := svc.DeleteSeries(context.Background(), series[0].Repeat.ID)
	if err != nil || n != len(series) {
		t.Fatalf("delete series = %d, %v", n, err)
	}
	if _, err := svc.DeleteSeries(context.Background(), series[0].Repeat.ID); !errors.Is(err, ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound, got %v", err)
	}
	if _, err := svc.DeleteSeries(context.Background(), ""); !errors.Is(err, ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound for empty id, got %v", err)
	}
}

func TestImportRemapsSeriesAndSkipsInvalid(t *testing.T) {
	svc := newService(t)
	in := []model.Event{
		{ID: "x1", Title: "A", Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00", Repeat: model.RepeatRule{Type: model.RepeatDaily, Interval: 1, ID: "old"}},
		{ID: "x2", Title: "A", Date: "2025-06-02", StartTime: "09:00", EndTime: "10:00", Repeat: model.RepeatRule{Type: model.RepeatDaily, Interval: 1, ID: "old"}},
		{Title: "", Date: "2025-06-03", StartTime: "09:00", EndTime: "10:00"},
	}
	out, skipped, err := svc.Import(context.Background(), in)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if skipped != 1 || len(out) != 2 {
		t.Fatalf("imported %d skipped %d", len(out), skipped)
	}
	if out[0].Repeat.ID == "old" || out[0].Repeat.ID != out[1].Repeat.ID || out[0].ID == "x1" {
		t.Fatalf("series not remapped: %#v", out)
	}
}
