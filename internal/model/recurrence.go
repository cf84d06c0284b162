package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const (
	DefaultMaxOccurrences = 366
	DefaultHorizonYears   = 5

	// boundedOccurrenceCap limits expansions that carry an explicit end date.
	boundedOccurrenceCap = 5000
)

type ExpandOptions struct {
	// NewSeriesID generates the id shared by every occurrence. Defaults to
	// uuid.NewString.
	NewSeriesID func() string
	// MaxOccurrences caps open-ended series. Defaults to DefaultMaxOccurrences.
	MaxOccurrences int
	// HorizonYears bounds open-ended series in calendar years after the base
	// date. Defaults to DefaultHorizonYears.
	HorizonYears int
}

func (o ExpandOptions) withDefaults() ExpandOptions {
	if o.NewSeriesID == nil {
		o.NewSeriesID = uuid.NewString
	}
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = DefaultMaxOccurrences
	}
	if o.HorizonYears <= 0 {
		o.HorizonYears = DefaultHorizonYears
	}
	return o
}

// Expand turns base plus rule into the concrete occurrences of a series.
// Months lacking the base day-of-month and Feb 29 on non-leap years are
// skipped, never clamped. Every occurrence carries the same fresh series id.
func Expand(base Event, rule RepeatRule, opts ExpandOptions) ([]Event, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	start, err := ParseDate(base.Date)
	if err != nil {
		return nil, invalid("date", err)
	}
	opts = opts.withDefaults()

	if rule.Type == RepeatNone {
		single := base
		single.Repeat = RepeatRule{Type: RepeatNone, Interval: 1}
		return []Event{single}, nil
	}

	seriesID := opts.NewSeriesID()
	stamp := func(date time.Time) Event {
		occ := base
		occ.Date = FormatDate(date)
		occ.Repeat = RepeatRule{
			Type:     rule.Type,
			Interval: rule.Interval,
			EndDate:  rule.EndDate,
			ID:       seriesID,
		}
		return occ
	}

	until := start.AddDate(opts.HorizonYears, 0, 0)
	limit := opts.MaxOccurrences
	if rule.EndDate != "" {
		end, _ := ParseDate(rule.EndDate)
		if end.Before(start) {
			return []Event{stamp(start)}, nil
		}
		until = end
		limit = boundedOccurrenceCap
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     frequency(rule.Type),
		Interval: rule.Interval,
		Dtstart:  start,
		Until:    until,
		Count:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("model: build recurrence: %w", err)
	}

	dates := r.All()
	out := make([]Event, 0, len(dates))
	for _, d := range dates {
		out = append(out, stamp(d))
	}
	return out, nil
}

func frequency(t RepeatType) rrule.Frequency {
	switch t {
	case RepeatDaily:
		return rrule.DAILY
	case RepeatWeekly:
		return rrule.WEEKLY
	case RepeatMonthly:
		return rrule.MONTHLY
	default:
		return rrule.YEARLY
	}
}
