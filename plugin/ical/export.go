// Package ical exports alarms as iCalendar events.
package ical

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
)

// ProductID identifies alarmbot as the calendar producer.
const ProductID = "-//hrygo//alarmbot//EN"

// ContentType is the MIME type of an encoded calendar.
const ContentType = "text/calendar; charset=utf-8"

// Calendar builds a calendar with one event per alarm. Each event carries a
// display alarm that triggers at its start.
func Calendar(alarms []*reminder.Alarm, now time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, a := range alarms {
		event, err := eventOf(a, now)
		if err != nil {
			return nil, errors.Wrapf(err, "alarm %d", a.ID)
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal, nil
}

// Encode writes alarms as an iCalendar stream.
func Encode(w io.Writer, alarms []*reminder.Alarm, now time.Time) error {
	cal, err := Calendar(alarms, now)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return errors.Wrap(err, "failed to encode calendar")
	}
	return nil
}

// Bytes returns alarms as an iCalendar document.
func Bytes(alarms []*reminder.Alarm, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, alarms, now); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UID is the stable event UID of an alarm.
func UID(alarm *reminder.Alarm) string {
	return fmt.Sprintf("alarm-%d@alarmbot", alarm.ID)
}

func eventOf(a *reminder.Alarm, now time.Time) (*ical.Event, error) {
	loc := now.Location()
	start, err := firstStart(a, loc)
	if err != nil {
		return nil, err
	}
	if a.Date == nil {
		// Anchor daily alarms at their next ring so calendars show them soon.
		if next, ok := NextFire(a, now); ok {
			start = next
		}
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, UID(a))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Minute))
	event.Props.SetText(ical.PropSummary, a.Description)

	r, err := Recurrence(a, loc)
	if err != nil {
		return nil, err
	}
	if r != nil {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = r.OrigOptions.RRuleString()
		event.Props.Set(prop)
	}

	valarm := ical.NewComponent(ical.CompAlarm)
	valarm.Props.SetText(ical.PropAction, "DISPLAY")
	valarm.Props.SetText(ical.PropDescription, reminder.NotificationBody(a))
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = "PT0S"
	valarm.Props.Set(trigger)
	event.Children = append(event.Children, valarm)

	return event, nil
}
