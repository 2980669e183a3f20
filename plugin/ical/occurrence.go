package ical

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
)

// Recurrence returns the recurrence rule of an alarm. Undated alarms ring
// every day at their clock; dated alarms ring once and have none.
func Recurrence(alarm *reminder.Alarm, loc *time.Location) (*rrule.RRule, error) {
	if alarm.Date != nil {
		return nil, nil
	}
	start, err := firstStart(alarm, loc)
	if err != nil {
		return nil, err
	}
	return rrule.NewRRule(rrule.ROption{Freq: rrule.DAILY, Dtstart: start})
}

// NextFire returns the next time at or after now that alarm rings.
// It reports false for a dated alarm whose time has passed.
func NextFire(alarm *reminder.Alarm, now time.Time) (time.Time, bool) {
	hour, minute, ok := clock(alarm.Time)
	if !ok {
		return time.Time{}, false
	}
	loc := now.Location()
	minuteStart := now.Truncate(time.Minute)

	if alarm.Date != nil {
		date, err := time.ParseInLocation(reminder.DateLayout, *alarm.Date, loc)
		if err != nil {
			return time.Time{}, false
		}
		at := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
		return at, !at.Before(minuteStart)
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc).AddDate(0, 0, -1),
	})
	if err != nil {
		return time.Time{}, false
	}
	next := r.After(minuteStart, true)
	return next, !next.IsZero()
}

// firstStart is the first ring time of an alarm: its date, or the Unix
// epoch day for undated alarms, at the alarm's clock.
func firstStart(alarm *reminder.Alarm, loc *time.Location) (time.Time, error) {
	hour, minute, ok := clock(alarm.Time)
	if !ok {
		return time.Time{}, reminder.ErrInvalidTime
	}
	if alarm.Date == nil {
		return time.Date(1970, 1, 1, hour, minute, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation(reminder.DateLayout, *alarm.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}

func clock(s string) (hour, minute int, ok bool) {
	t, err := time.Parse(reminder.ClockLayout, s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
