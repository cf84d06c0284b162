package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/sandeepkv93/eventd/internal/model"
)

type Notification struct {
	EventID string
	Message string
	StartAt time.Time
	FireAt  time.Time
	// Event is the event as it was scheduled when the notification fired.
	Event   model.Event
}

func FormatMessage(minutes int, title string) string {
	return fmt.Sprintf("%d분 후 %s 일정이 시작됩니다.", minutes, title)
}

// firedKey ties the fired state to the schedule that produced it, so moving
// an event or changing its lead time arms it again.
type firedKey struct {
	eventID          string
	date             string
	startTime        string
	notificationTime int
}

func keyOf(e model.Event) firedKey {
	return firedKey{eventID: e.ID, date: e.Date, startTime: e.StartTime, notificationTime: e.NotificationTime}
}

// FiredSet remembers which event schedules already produced a notification
// in this session. It is safe for concurrent use.
type FiredSet struct {
	mu   sync.Mutex
	keys map[firedKey]struct{}
}

func NewFiredSet() *FiredSet {
	return &FiredSet{keys: make(map[firedKey]struct{})}
}

func (f *FiredSet) Has(e model.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[keyOf(e)]
	return ok
}

// Mark records e as fired and reports whether it was newly added.
func (f *FiredSet) Mark(e model.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(e)
	if _, ok := f.keys[k]; ok {
		return false
	}
	f.keys[k] = struct{}{}
	return true
}

// Notified reports whether any schedule of eventID has fired.
func (f *FiredSet) Notified(eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.keys {
		if k.eventID == eventID {
			return true
		}
	}
	return false
}

func (f *FiredSet) Forget(eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.keys {
		if k.eventID == eventID {
			delete(f.keys, k)
		}
	}
}

func (f *FiredSet) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

// Evaluate returns the notifications whose window [start-N, start) contains
// now and marks them fired. Events already started are never notified.
// Malformed events are skipped and reported without blocking the rest.
func Evaluate(now time.Time, events []model.Event, fired *FiredSet, loc *time.Location) ([]Notification, []error) {
	out := make([]Notification, 0)
	var errs []error
	for _, e := range events {
		if e.NotificationTime <= 0 || fired.Has(e) {
			continue
		}
		start, err := e.StartAt(loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("scheduler: event %s: %w", e.ID, err))
			continue
		}
		fireAt := start.Add(-time.Duration(e.NotificationTime) * time.Minute)
		if now.Before(fireAt) || !now.Before(start) {
			continue
		}
		if !fired.Mark(e) {
			continue
		}
		out = append(out, Notification{
			EventID: e.ID,
			Message: FormatMessage(e.NotificationTime, e.Title),
			StartAt: start,
			FireAt:  fireAt,
			Event:   e,
		})
	}
	return out, errs
}
