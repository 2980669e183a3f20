package router

import "strings"

// RuleMatcher implements keyword-based intent classification.
// Matching is case-insensitive substring membership.
type RuleMatcher struct {
	alarmKeywords []string
	stages        []ruleStage
}

// ruleStage maps a keyword set to the intent it selects.
type ruleStage struct {
	kind     Kind
	keywords []string
}

// NewRuleMatcher creates a new rule matcher with the predefined keyword sets.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{
		alarmKeywords: []string{
			"alarm", "wake", "remind", "time", "schedule",
			"set", "create", "add", "remove", "delete", "cancel",
			"list", "show", "what", "stop", "snooze",
		},
		// Checked in order; the first stage with a hit wins.
		stages: []ruleStage{
			{kind: IntentCreate, keywords: []string{"create", "set", "add"}},
			{kind: IntentDelete, keywords: []string{"delete", "remove"}},
			{kind: IntentList, keywords: []string{"list", "show"}},
			{kind: IntentStop, keywords: []string{"stop", "snooze"}},
		},
	}
}

// IsAlarmRelated reports whether input mentions any alarm keyword.
func (m *RuleMatcher) IsAlarmRelated(input string) bool {
	return containsAny(strings.ToLower(input), m.alarmKeywords)
}

// Match classifies input. Alarm-related input that names no action is
// IntentClarify; everything else is IntentChitchat.
func (m *RuleMatcher) Match(input string) Kind {
	lower := strings.ToLower(input)
	if !containsAny(lower, m.alarmKeywords) {
		return IntentChitchat
	}

	for _, stage := range m.stages {
		if containsAny(lower, stage.keywords) {
			return stage.kind
		}
	}
	return IntentClarify
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
