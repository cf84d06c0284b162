package ics

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
)

var errMissingStart = errors.New("ics: missing DTSTART")

type ImportOptions struct {
	Location *time.Location
	// DefaultNotification applies to VEVENTs without a usable VALARM.
	DefaultNotification int
}

// Import decodes every VEVENT in r into a standalone or series event.
// Events spanning midnight are clamped to their start day; all-day events
// cover the whole day. VEVENTs without a start are skipped.
func Import(r io.Reader, opts ImportOptions) ([]model.Event, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar: %w", err)
	}

	out := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := fromVEvent(ve, opts)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "uid", propValue(ve, ical.ComponentPropertyUniqueId))
			continue
		}
		out = append(out, ev)
	}
	appLog.Info("ics import parsed", "event_count", len(out))
	return out, nil
}

func fromVEvent(ve *ical.VEvent, opts ImportOptions) (model.Event, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || strings.TrimSpace(dtStart.Value) == "" {
		return model.Event{}, errMissingStart
	}
	allDay := !strings.Contains(dtStart.Value, "T")

	var start, end time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("ics: parse DTSTART: %w", err)
	}
	if !allDay {
		end, _ = ve.GetEndAt()
	}

	ev := model.Event{
		ID:               strings.TrimSuffix(propValue(ve, ical.ComponentPropertyUniqueId), uidSuffix),
		Title:            unescape(propValue(ve, ical.ComponentPropertySummary)),
		Description:      unescape(propValue(ve, ical.ComponentPropertyDescription)),
		Location:         unescape(propValue(ve, ical.ComponentPropertyLocation)),
		Category:         unescape(propValue(ve, ical.ComponentPropertyCategories)),
		Repeat:           model.RepeatRule{Type: model.RepeatNone, Interval: 1},
		NotificationTime: opts.DefaultNotification,
	}
	if ev.Title == "" {
		ev.Title = "(제목 없음)"
	}

	if allDay {
		ev.Date = model.FormatDate(start)
		ev.StartTime, ev.EndTime = "00:00", "23:59"
	} else {
		local := start.In(opts.Location)
		ev.Date = model.FormatDate(local)
		ev.StartTime, ev.EndTime = clampSpan(local, end)
	}

	if rule, ok := decodeRepeat(unescape(propValue(ve, propSeriesKey(propRepeat)))); ok {
		if series := unescape(propValue(ve, propSeriesKey(propSeries))); series != "" {
			rule.ID = series
			ev.Repeat = rule
		}
	}

	if minutes, ok := alarmMinutes(ve); ok {
		ev.NotificationTime = minutes
	}
	return ev, nil
}

// clampSpan returns same-day start and end clocks. Ends past midnight are
// cut to 23:59; an event starting at 23:59 starts a minute earlier so it
// keeps a non-empty span.
func clampSpan(start, end time.Time) (string, string) {
	startClock := start.Format("15:04")
	if startClock == "23:59" {
		return "23:58", "23:59"
	}
	if end.IsZero() {
		end = start.Add(time.Hour)
	}
	end = end.In(start.Location())
	if !end.After(start) {
		end = start.Add(time.Hour)
	}
	if model.FormatDate(end) != model.FormatDate(start) {
		return startClock, "23:59"
	}
	endClock := end.Format("15:04")
	if endClock == startClock {
		// Sub-minute span.
		return startClock, start.Add(time.Minute).Format("15:04")
	}
	return startClock, endClock
}

func propSeriesKey(name string) ical.ComponentProperty {
	return ical.ComponentProperty(name)
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func alarmMinutes(ve *ical.VEvent) (int, bool) {
	for _, alarm := range ve.Alarms() {
		trigger := alarm.GetProperty(ical.ComponentPropertyTrigger)
		if trigger == nil {
			continue
		}
		if d, ok := parseTrigger(trigger.Value); ok {
			return d, true
		}
	}
	return 0, false
}

var triggerPattern = regexp.MustCompile(`^-P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseTrigger converts a negative RFC 5545 duration such as -PT10M or -P1D
// into whole minutes before start.
func parseTrigger(v string) (int, bool) {
	m := triggerPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0, false
	}
	weights := []int{7 * 24 * 60, 24 * 60, 60, 1, 0}
	total := 0
	for i, w := range weights {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * w
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(v string) string {
	return textUnescaper.Replace(v)
}
