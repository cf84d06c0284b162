package storage

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID               string
	Title            string
	Description      string
	Location         string
	Category         string
	Date             string
	StartTime        string
	EndTime          string
	RepeatType       string
	RepeatInterval   int
	RepeatEndDate    string
	RepeatID         string
	NotificationTime int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EventListFilter narrows ListEvents. From and To are inclusive ISO dates.
type EventListFilter struct {
	RepeatID string
	From     string
	To       string
	Limit    int
	Offset   int
}

// prepareNew assigns ids and timestamps to rows about to be inserted.
func prepareNew(in []Event, now time.Time) []Event {
	out := make([]Event, len(in))
	for i, ev := range in {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		ev.UpdatedAt = now
		out[i] = ev
	}
	return out
}

func (f EventListFilter) matches(ev Event) bool {
	if f.RepeatID != "" && ev.RepeatID != f.RepeatID {
		return false
	}
	if f.From != "" && ev.Date < f.From {
		return false
	}
	if f.To != "" && ev.Date > f.To {
		return false
	}
	return true
}
