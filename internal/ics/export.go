package ics

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/scheduler"
)

const (
	productID  = "-//eventd//Calendar//KO"
	uidSuffix  = "@eventd"
	propSeries = "X-EVENTD-SERIES"
	propRepeat = "X-EVENTD-REPEAT"
)

type ExportOptions struct {
	Location *time.Location
	Now      func() time.Time
}

// Export writes events as one VCALENDAR. Series members are emitted as
// individual VEVENTs tagged with their series so an import keeps them
// grouped.
func Export(w io.Writer, events []model.Event, opts ExportOptions) error {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stamp := opts.Now().UTC()

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)

	for _, e := range events {
		vevent, err := toVEvent(e, opts.Location, stamp)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, vevent.Component)
	}

	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("ics: encode calendar: %w", err)
	}
	return nil
}

func toVEvent(e model.Event, loc *time.Location, stamp time.Time) (*goical.Event, error) {
	start, err := e.StartAt(loc)
	if err != nil {
		return nil, fmt.Errorf("ics: event %s: %w", e.ID, err)
	}
	end, err := e.EndAt(loc)
	if err != nil {
		return nil, fmt.Errorf("ics: event %s: %w", e.ID, err)
	}

	vevent := goical.NewEvent()
	vevent.Props.SetText(goical.PropUID, e.ID+uidSuffix)
	vevent.Props.SetText(goical.PropSummary, e.Title)
	if e.Description != "" {
		vevent.Props.SetText(goical.PropDescription, e.Description)
	}
	if e.Location != "" {
		vevent.Props.SetText(goical.PropLocation, e.Location)
	}
	if e.Category != "" {
		vevent.Props.SetText(goical.PropCategories, e.Category)
	}
	vevent.Props.SetDateTime(goical.PropDateTimeStart, start.UTC())
	vevent.Props.SetDateTime(goical.PropDateTimeEnd, end.UTC())
	vevent.Props.SetDateTime(goical.PropDateTimeStamp, stamp)

	if e.InSeries() {
		setExtension(vevent.Props, propSeries, e.Repeat.ID)
		setExtension(vevent.Props, propRepeat, encodeRepeat(e.Repeat))
	}

	if e.NotificationTime > 0 {
		alarm := goical.NewComponent(goical.CompAlarm)
		alarm.Props.SetText(goical.PropAction, "DISPLAY")
		alarm.Props.SetText(goical.PropDescription, scheduler.FormatMessage(e.NotificationTime, e.Title))
		trigger := goical.NewProp(goical.PropTrigger)
		trigger.Value = fmt.Sprintf("-PT%dM", e.NotificationTime)
		alarm.Props.Set(trigger)
		vevent.Children = append(vevent.Children, alarm)
	}
	return vevent, nil
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// setExtension writes an X- property without the VALUE=TEXT parameter that
// SetText adds to names it does not know.
func setExtension(props goical.Props, name, value string) {
	prop := goical.NewProp(name)
	prop.Value = textEscaper.Replace(value)
	props.Set(prop)
}

// encodeRepeat renders a rule as "type;interval;endDate".
func encodeRepeat(r model.RepeatRule) string {
	return strings.Join([]string{string(r.Type), strconv.Itoa(r.Interval), r.EndDate}, ";")
}

func decodeRepeat(v string) (model.RepeatRule, bool) {
	parts := strings.Split(v, ";")
	if len(parts) != 3 {
		return model.RepeatRule{}, false
	}
	t, err := model.ParseRepeatType(parts[0])
	if err != nil {
		return model.RepeatRule{}, false
	}
	interval, err := strconv.Atoi(parts[1])
	if err != nil || interval <= 0 {
		return model.RepeatRule{}, false
	}
	return model.RepeatRule{Type: t, Interval: interval, EndDate: parts[2]}, true
}
