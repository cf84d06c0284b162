package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRepeatType   = errors.New("model: invalid repeat type")
	ErrInvalidInterval     = errors.New("model: invalid repeat interval")
	ErrInvalidDate         = errors.New("model: invalid date")
	ErrInvalidClock        = errors.New("model: invalid time of day")
	ErrInvalidTimeRange    = errors.New("model: start time must be before end time")
	ErrTitleRequired       = errors.New("model: event title is required")
	ErrInvalidNotification = errors.New("model: invalid notification time")
)

// ValidationError reports which field of an event or repeat rule was
// rejected. Unwrap exposes the sentinel for errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

func (r RepeatType) IsValid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	default:
		return false
	}
}

func ParseRepeatType(s string) (RepeatType, error) {
	t := RepeatType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return RepeatNone, nil
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRepeatType, s)
	}
	return t, nil
}

// RepeatRule describes how an event recurs. ID is the series identity shared
// by every member of one expansion; it is empty for standalone events.
type RepeatRule struct {
	Type     RepeatType
	Interval int
	EndDate  string
	ID       string
}

func (r RepeatRule) Validate() error {
	if !r.Type.IsValid() {
		return invalid("repeat.type", fmt.Errorf("%w: %q", ErrInvalidRepeatType, r.Type))
	}
	if r.Type == RepeatNone {
		return nil
	}
	if r.Interval <= 0 {
		return invalid("repeat.interval", fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval))
	}
	if r.EndDate != "" {
		if _, err := ParseDate(r.EndDate); err != nil {
			return invalid("repeat.endDate", err)
		}
	}
	return nil
}

type Event struct {
	ID               string
	Title            string
	Description      string
	Location         string
	Category         string
	Date             string
	StartTime        string
	EndTime          string
	Repeat           RepeatRule
	NotificationTime int
}

func (e Event) IsRecurring() bool {
	return e.Repeat.Type != RepeatNone && e.Repeat.Type != "" && e.Repeat.Interval > 0
}

// InSeries reports whether e belongs to a persisted recurring series.
func (e Event) InSeries() bool {
	return e.IsRecurring() && e.Repeat.ID != ""
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return invalid("title", ErrTitleRequired)
	}
	if _, err := ParseDate(e.Date); err != nil {
		return invalid("date", err)
	}
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return invalid("startTime", err)
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return invalid("endTime", err)
	}
	if start >= end {
		return invalid("endTime", ErrInvalidTimeRange)
	}
	if e.NotificationTime < 0 {
		return invalid("notificationTime", fmt.Errorf("%w: %d", ErrInvalidNotification, e.NotificationTime))
	}
	if e.Repeat.Type == "" {
		return nil
	}
	return e.Repeat.Validate()
}

// StartAt returns the wall-clock start of e in loc.
func (e Event) StartAt(loc *time.Location) (time.Time, error) {
	return combine(e.Date, e.StartTime, loc)
}

func (e Event) EndAt(loc *time.Location) (time.Time, error) {
	return combine(e.Date, e.EndTime, loc)
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, minutes/60, minutes%60, 0, 0, loc), nil
}

// DetachFromSeries returns a copy of e that no longer belongs to any series.
func (e Event) DetachFromSeries() Event {
	e.Repeat = RepeatRule{Type: RepeatNone, Interval: 1}
	return e
}

// Normalize fills the zero repeat rule and clears the series id on
// standalone events. Recurring rules keep their interval so Validate can
// reject a non-positive one.
func (e Event) Normalize() Event {
	if e.Repeat.Type == "" {
		e.Repeat.Type = RepeatNone
	}
	if e.Repeat.Type == RepeatNone {
		e.Repeat.Interval = 1
		e.Repeat.ID = ""
		e.Repeat.EndDate = ""
	}
	return e
}

func RepeatLabel(t RepeatType) string {
	switch t {
	case RepeatDaily:
		return "일"
	case RepeatWeekly:
		return "주"
	case RepeatMonthly:
		return "월"
	case RepeatYearly:
		return "년"
	default:
		return ""
	}
}

// RepeatSummary renders the recurrence badge shown next to recurring events,
// e.g. "2주마다 반복 (종료: 2025-10-30)".
func (e Event) RepeatSummary() string {
	if !e.IsRecurring() {
		return ""
	}
	out := fmt.Sprintf("%d%s마다 반복", e.Repeat.Interval, RepeatLabel(e.Repeat.Type))
	if e.Repeat.EndDate != "" {
		out += fmt.Sprintf(" (종료: %s)", e.Repeat.EndDate)
	}
	return out
}

type NotificationOption struct {
	Minutes int
	Label   string
}

var NotificationOptions = []NotificationOption{
	{Minutes: 1, Label: "1분 전"},
	{Minutes: 10, Label: "10분 전"},
	{Minutes: 60, Label: "1시간 전"},
	{Minutes: 120, Label: "2시간 전"},
	{Minutes: 1440, Label: "1일 전"},
}

func NotificationLabel(minutes int) string {
	for _, opt := range NotificationOptions {
		if opt.Minutes == minutes {
			return opt.Label
		}
	}
	if minutes <= 0 {
		return "알림 없음"
	}
	return fmt.Sprintf("%d분 전", minutes)
}
