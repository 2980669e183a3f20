// Package reminder manages the alarm collection and fires alarms when due.
package reminder

import (
	"fmt"
	"time"
)

const (
	// DefaultDescription is used when a command names no description.
	DefaultDescription = "No description"
	// ClockLayout is the layout of Alarm.Time.
	ClockLayout = "15:04"
	// DateLayout is the layout of Alarm.Date.
	DateLayout = "2006-01-02"
)

// Alarm represents a stored alarm. The JSON field names are the persisted layout.
type Alarm struct {
	ID          int64   `json:"id"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
	IsRinging   bool    `json:"isRinging"`
	Date        *string `json:"date"`
}

// FormatClock formats an hour and minute as HH:MM.
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ValidClock reports whether hour and minute form a valid 24-hour clock.
func ValidClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

// Clone returns a deep copy of the alarm.
func (a *Alarm) Clone() *Alarm {
	clone := *a
	if a.Date != nil {
		date := *a.Date
		clone.Date = &date
	}
	return &clone
}

// Due reports whether the alarm should start ringing at now.
func (a *Alarm) Due(now time.Time) bool {
	if a.IsRinging || a.Time != now.Format(ClockLayout) {
		return false
	}
	return a.Date == nil || *a.Date == now.Format(DateLayout)
}

// DateLabel returns the short date shown next to a dated alarm, e.g. "(Mon, Jan 2)".
// Undated alarms return "".
func (a *Alarm) DateLabel() string {
	if a.Date == nil {
		return ""
	}
	date, err := time.ParseInLocation(DateLayout, *a.Date, time.Local)
	if err != nil {
		return "(" + *a.Date + ")"
	}
	return date.Format("(Mon, Jan 2)")
}

// DateTime returns the alarm date as a local midnight, or nil when undated.
func (a *Alarm) DateTime() *time.Time {
	if a.Date == nil {
		return nil
	}
	date, err := time.ParseInLocation(DateLayout, *a.Date, time.Local)
	if err != nil {
		return nil
	}
	return &date
}
