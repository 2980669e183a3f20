// Package aitime resolves the time expressions found in alarm commands.
package aitime

import (
	"context"
	"fmt"
	"time"
)

// TimeService defines the time resolution interface used by the intent router.
type TimeService interface {
	// Resolve extracts the alarm time from a create command.
	// Supports: "in 5 minutes", "tomorrow at 7:30 am", "7 o'clock pm", "19:15", "7pm for gym"
	// reference: the wall clock used for relative and day-qualified expressions
	Resolve(ctx context.Context, input string, reference time.Time) (*Resolution, error)

	// ResolveDelete extracts the lookup key from a delete command.
	// Supports: "remove 7:30 am", "delete the 19:15 alarm", "remove all alarms"
	ResolveDelete(ctx context.Context, input string) (*DeleteTarget, error)
}

// Rule names one create-time resolution rule.
type Rule string

const (
	RuleRelative     Rule = "relative"
	RuleDayQualified Rule = "day_qualified"
	RuleOClock       Rule = "oclock"
	Rule24Hour       Rule = "24h"
	Rule12Hour       Rule = "12h"
)

// Resolution is the outcome of a successful create-time rule.
type Resolution struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	// Date is set only when the expression names a calendar day.
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description"`
	Rule        Rule       `json:"rule"`
}

// Clock returns the resolved time of day as HH:MM.
func (r *Resolution) Clock() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// DeleteTarget is the outcome of a delete-time resolution.
type DeleteTarget struct {
	// All is set for "remove all" style commands.
	All bool `json:"all"`
	// Time is the HH:MM lookup key when All is false.
	Time string `json:"time,omitempty"`
}
