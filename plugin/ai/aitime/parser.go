package aitime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrUnrecognized is returned when no rule can read a time from the input.
var ErrUnrecognized = errors.New("unrecognized time expression")

const weekdayAlternation = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

// maxRelativeAmount bounds "in N minutes" so the offset cannot overflow time.Duration.
const maxRelativeAmount = 1_000_000

// Patterns for time parsing
var (
	// in 5 minutes, in 2 hrs, in 1 hour and 30 minutes
	relativePattern = regexp.MustCompile(`(?i)in\s+(\d+)\s*(minute|hour|min|hr)s?(?:\s+and\s+(\d+)\s*(minute|min)s?)?`)

	// tomorrow at 7:30 am, next friday 9pm, on monday at 10
	dayPattern = regexp.MustCompile(`(?i)(tomorrow|next\s+(?:` + weekdayAlternation + `)|on\s+(?:` + weekdayAlternation + `))\s+(?:at\s+)?(\d{1,2}):?(\d{2})?\s*(?:(am|pm)\b)?`)

	// 7 o'clock, 7 oclock pm
	oClockPattern = regexp.MustCompile(`(?i)(\d{1,2})\s*o['’]?clock\s*(?:(am|pm)\b)?`)

	// 19:15
	hour24Pattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

	// 7pm, 7:30 am for gym
	hour12Pattern = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{2})?\s*(am|pm)\b(?:\s+for\s+(.+))?`)

	// remove 7:30 am, delete 19:15
	deletePattern = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{2})?\s*(?:(am|pm)\b)?`)

	meridiemSuffix = regexp.MustCompile(`(?i)^\s*(am|pm)\b`)
	strayMeridiem  = regexp.MustCompile(`(?i)\s*\b(am|pm)\b\s*`)
	leadingFor     = regexp.MustCompile(`(?i)^for\s+`)
)

// weekdays maps English weekday names to time.Weekday.
var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Matcher is a single create-time rule. Match returns nil when the rule does
// not apply to the input.
type Matcher struct {
	Rule  Rule
	Match func(input string, now time.Time) *Resolution
}

// CreateMatchers lists the create-time rules in precedence order.
// The first non-nil result wins and later rules are never consulted.
// Day-qualified must precede 24-hour, and 24-hour must precede 12-hour.
var CreateMatchers = []Matcher{
	{Rule: RuleRelative, Match: matchRelative},
	{Rule: RuleDayQualified, Match: matchDayQualified},
	{Rule: RuleOClock, Match: matchOClock},
	{Rule: Rule24Hour, Match: match24Hour},
	{Rule: Rule12Hour, Match: match12Hour},
}

// CreateRuleOrder returns the rule names of CreateMatchers in order.
func CreateRuleOrder() []Rule {
	order := make([]Rule, 0, len(CreateMatchers))
	for _, m := range CreateMatchers {
		order = append(order, m.Rule)
	}
	return order
}

// Resolve runs CreateMatchers against input. now anchors relative and
// day-qualified expressions.
func Resolve(input string, now time.Time) (*Resolution, error) {
	for _, m := range CreateMatchers {
		if res := m.Match(input, now); res != nil {
			return res, nil
		}
	}
	return nil, errors.Wrapf(ErrUnrecognized, "resolve %q", input)
}

// ResolveDelete reads the alarm time named by a delete command. The first
// number in the input wins; "all" only applies when no number is present.
func ResolveDelete(input string) (*DeleteTarget, error) {
	if m := deletePattern.FindStringSubmatch(input); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		hour = applyMeridiem(hour, m[3])
		return &DeleteTarget{Time: fmt.Sprintf("%02d:%02d", hour, minute)}, nil
	}

	if strings.Contains(strings.ToLower(input), "all") {
		return &DeleteTarget{All: true}, nil
	}

	return nil, errors.Wrapf(ErrUnrecognized, "resolve delete %q", input)
}

// matchRelative handles "in N minutes/hours [and M minutes]".
func matchRelative(input string, now time.Time) *Resolution {
	loc := relativePattern.FindStringSubmatchIndex(input)
	if loc == nil {
		return nil
	}
	m := submatches(input, loc)

	amount, err := strconv.Atoi(m[1])
	if err != nil || amount > maxRelativeAmount {
		return nil
	}
	offset := unitDuration(m[2], amount)

	if m[3] != "" {
		extra, err := strconv.Atoi(m[3])
		if err != nil || extra > maxRelativeAmount {
			return nil
		}
		offset += unitDuration(m[4], extra)
	}

	at := now.Add(offset)
	res := &Resolution{
		Hour:        at.Hour(),
		Minute:      at.Minute(),
		Description: trailing(input, loc[1]),
		Rule:        RuleRelative,
	}

	// Pin the date once the offset crosses midnight, otherwise the alarm
	// would match today's clock first.
	if !sameDay(at, now) {
		date := dateOf(at)
		res.Date = &date
	}

	return res
}

// matchDayQualified handles "tomorrow", "next <weekday>" and "on <weekday>".
func matchDayQualified(input string, now time.Time) *Resolution {
	loc := dayPattern.FindStringSubmatchIndex(input)
	if loc == nil {
		return nil
	}
	m := submatches(input, loc)

	hour, minute, ok := clockOf(m[2], m[3], m[4])
	if !ok {
		return nil
	}

	date := dateOf(now).AddDate(0, 0, daysUntil(strings.ToLower(m[1]), now))
	description := leadingFor.ReplaceAllString(trailing(input, loc[1]), "")

	return &Resolution{
		Hour:        hour,
		Minute:      minute,
		Date:        &date,
		Description: strings.TrimSpace(description),
		Rule:        RuleDayQualified,
	}
}

// matchOClock handles "H o'clock [am|pm]".
func matchOClock(input string, _ time.Time) *Resolution {
	loc := oClockPattern.FindStringSubmatchIndex(input)
	if loc == nil {
		return nil
	}
	m := submatches(input, loc)

	hour, minute, ok := clockOf(m[1], "", m[2])
	if !ok {
		return nil
	}

	return &Resolution{
		Hour:        hour,
		Minute:      minute,
		Description: trailing(input, loc[1]),
		Rule:        RuleOClock,
	}
}

// match24Hour handles "H:MM" without a meridiem.
func match24Hour(input string, _ time.Time) *Resolution {
	loc := hour24Pattern.FindStringSubmatchIndex(input)
	if loc == nil {
		return nil
	}

	// "7:30 pm" belongs to the 12-hour rule.
	if meridiemSuffix.MatchString(input[loc[1]:]) {
		return nil
	}

	m := submatches(input, loc)
	hour, minute, ok := clockOf(m[1], m[2], "")
	if !ok {
		return nil
	}

	return &Resolution{
		Hour:        hour,
		Minute:      minute,
		Description: trailing(input, loc[1]),
		Rule:        Rule24Hour,
	}
}

// match12Hour handles "H[:MM] am|pm [for <description>]".
func match12Hour(input string, _ time.Time) *Resolution {
	m := hour12Pattern.FindStringSubmatch(input)
	if m == nil {
		return nil
	}

	hour, minute, ok := clockOf(m[1], m[2], m[3])
	if !ok {
		return nil
	}

	return &Resolution{
		Hour:        hour,
		Minute:      minute,
		Description: strings.TrimSpace(replaceFirst(strayMeridiem, m[4], " ")),
		Rule:        Rule12Hour,
	}
}

// clockOf converts raw hour/minute/meridiem captures into a valid 24-hour
// clock. With a meridiem the hour must be 1-12.
func clockOf(rawHour, rawMinute, meridiem string) (hour, minute int, ok bool) {
	hour, err := strconv.Atoi(rawHour)
	if err != nil {
		return 0, 0, false
	}
	if rawMinute != "" {
		if minute, err = strconv.Atoi(rawMinute); err != nil {
			return 0, 0, false
		}
	}

	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		hour = applyMeridiem(hour, meridiem)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// applyMeridiem converts a 12-hour clock hour to 24-hour form.
func applyMeridiem(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// daysUntil returns the day offset named by a day-qualifier phrase.
// A bare weekday is the next strictly-future occurrence; "next" adds a week.
func daysUntil(phrase string, now time.Time) int {
	if strings.HasPrefix(phrase, "tomorrow") {
		return 1
	}

	fields := strings.Fields(phrase)
	target := weekdays[fields[len(fields)-1]]

	diff := int(target - now.Weekday())
	if diff <= 0 {
		diff += 7
	}
	if fields[0] == "next" {
		diff += 7
	}
	return diff
}

func unitDuration(unit string, amount int) time.Duration {
	if strings.HasPrefix(strings.ToLower(unit), "h") {
		return time.Duration(amount) * time.Hour
	}
	return time.Duration(amount) * time.Minute
}

// submatches expands a FindStringSubmatchIndex result, using "" for groups
// that did not participate.
func submatches(input string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if start := loc[2*i]; start >= 0 {
			out[i] = input[start:loc[2*i+1]]
		}
	}
	return out
}

func trailing(input string, end int) string {
	return strings.TrimSpace(input[end:])
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
