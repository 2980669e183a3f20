package reminder

import (
	"fmt"
	"strings"
	"time"
)

// Notification text for a firing alarm.
const NotificationTitle = "Alarm!"

// Replies that do not depend on an alarm.
const (
	NoAlarmsMessage      = "You don't have any alarms set."
	NoRingingMessage     = "There are no alarms currently ringing."
	DeletedAllMessage    = "I've removed all alarms."
	createdDateLayout    = "Monday, January 2, 2006"
	alarmListHeader      = "Here are your alarms:"
	notificationBodyHead = "Time for: "
)

// CreatedMessage confirms a new alarm and how long until it fires.
func CreatedMessage(alarm *Alarm, date *time.Time, remaining time.Duration) string {
	on := ""
	if date != nil {
		on = " on " + date.Format(createdDateLayout)
	}
	return fmt.Sprintf("I've set an alarm for %s%s (%s) with description: %s",
		alarm.Time, on, FormatRemaining(remaining), alarm.Description)
}

// DeletedMessage confirms a removed alarm.
func DeletedMessage(alarm *Alarm) string {
	return fmt.Sprintf("I've removed the alarm for %s with description: %s", alarm.Time, alarm.Description)
}

// NotFoundMessage reports that no alarm is set at clock.
func NotFoundMessage(clock string) string {
	return fmt.Sprintf("I couldn't find an alarm set for %s.", clock)
}

// ListMessage renders the alarm list as chat text.
func ListMessage(alarms []*Alarm) string {
	if len(alarms) == 0 {
		return NoAlarmsMessage
	}
	var b strings.Builder
	b.WriteString(alarmListHeader)
	for _, a := range alarms {
		fmt.Fprintf(&b, "\n- %s: %s", a.Time, a.Description)
	}
	return b.String()
}

// StoppedMessage confirms a stopped alarm.
func StoppedMessage(alarm *Alarm) string {
	return fmt.Sprintf("Alarm stopped and removed: %s at %s", alarm.Description, alarm.Time)
}

// RingMessage announces a firing alarm.
func RingMessage(alarm *Alarm) string {
	return fmt.Sprintf("🔔 ALARM: %s at %s", alarm.Description, alarm.Time)
}

// NotificationBody is the notification text for a firing alarm.
func NotificationBody(alarm *Alarm) string {
	return notificationBodyHead + alarm.Description
}
