package reminder

import (
	"fmt"
	"time"
)

// TimeUntil returns how long until an alarm at hour:minute fires, counted
// from now truncated to the minute. An undated alarm whose clock already
// passed today rolls to tomorrow. The result is never negative.
func TimeUntil(now time.Time, hour, minute int, date *time.Time) time.Duration {
	loc := now.Location()
	base := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, loc)

	var target time.Time
	if date != nil {
		target = time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
	} else {
		target = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if target.Before(base) {
			target = target.AddDate(0, 0, 1)
		}
	}

	if d := target.Sub(base); d > 0 {
		return d
	}
	return 0
}

// FormatRemaining renders a wait as "D days, H hours and M minutes",
// "H hours and M minutes" or "M minutes", whichever is the largest nonzero form.
func FormatRemaining(d time.Duration) string {
	total := int(d / time.Minute)
	days := total / (24 * 60)
	hours := total % (24 * 60) / 60
	minutes := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%s, %s and %s", plural(days, "day"), plural(hours, "hour"), plural(minutes, "minute"))
	case hours > 0:
		return fmt.Sprintf("%s and %s", plural(hours, "hour"), plural(minutes, "minute"))
	default:
		return plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
