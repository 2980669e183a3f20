// Package filter evaluates CEL expressions against alarms.
//
// An expression sees these variables:
//
//	id          int     alarm id
//	time        string  "HH:MM"
//	hour        int
//	minute      int
//	description string
//	ringing     bool
//	dated       bool    whether the alarm is pinned to a date
//	date        string  "YYYY-MM-DD", or "" when undated
//
// Examples: `hour >= 12`, `ringing`, `description.contains("gym") && !dated`.
package filter

import (
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
)

// ErrInvalidFilter is returned for expressions that do not compile to a bool.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter is a compiled alarm filter. The zero expression matches everything.
type Filter struct {
	source  string
	program cel.Program
}

var alarmEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("time", cel.StringType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("minute", cel.IntType),
		cel.Variable("description", cel.StringType),
		cel.Variable("ringing", cel.BoolType),
		cel.Variable("dated", cel.BoolType),
		cel.Variable("date", cel.StringType),
	)
	if err != nil {
		panic(errors.Wrap(err, "failed to create filter environment"))
	}
	alarmEnv = env
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}

	ast, issues := alarmEnv.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(ErrInvalidFilter, "%s: %v", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Wrapf(ErrInvalidFilter, "%s: must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := alarmEnv.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFilter, "%s: %v", expr, err)
	}
	return &Filter{source: expr, program: program}, nil
}

// String returns the expression the filter was compiled from.
func (f *Filter) String() string {
	return f.source
}

// Match reports whether alarm satisfies the filter.
func (f *Filter) Match(alarm *reminder.Alarm) (bool, error) {
	if f.program == nil {
		return true, nil
	}

	out, _, err := f.program.Eval(activation(alarm))
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate filter for alarm %d", alarm.ID)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter returned %T", out.Value())
	}
	return matched, nil
}

// Apply returns the alarms that satisfy the filter, in order.
func (f *Filter) Apply(alarms []*reminder.Alarm) ([]*reminder.Alarm, error) {
	out := make([]*reminder.Alarm, 0, len(alarms))
	for _, a := range alarms {
		ok, err := f.Match(a)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func activation(a *reminder.Alarm) map[string]any {
	hour, minute := splitClock(a.Time)
	date := ""
	if a.Date != nil {
		date = *a.Date
	}
	return map[string]any{
		"id":          a.ID,
		"time":        a.Time,
		"hour":        hour,
		"minute":      minute,
		"description": a.Description,
		"ringing":     a.IsRinging,
		"dated":       a.Date != nil,
		"date":        date,
	}
}

// splitClock reads "HH:MM". Malformed clocks yield -1.
func splitClock(clock string) (int64, int64) {
	h, m, ok := strings.Cut(clock, ":")
	if !ok {
		return -1, -1
	}
	hour, err := strconv.ParseInt(h, 10, 64)
	if err != nil {
		return -1, -1
	}
	minute, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return -1, -1
	}
	return hour, minute
}
