// Package router turns chat input into alarm intents.
package router

import (
	"context"
	"time"

	"github.com/hrygo/alarmbot/plugin/ai/aitime"
)

// RouterService defines the intent parsing service interface.
// Consumers: agent (chat, voice and HTTP input share it).
type RouterService interface {
	// Parse classifies input and extracts the alarm parameters it carries.
	// It never fails: unparseable commands come back as IntentParseFailure.
	Parse(ctx context.Context, input string, now time.Time) *Intent
}

// Kind represents the type of user intent.
type Kind string

const (
	IntentCreate       Kind = "create"
	IntentDelete       Kind = "delete"
	IntentDeleteAll    Kind = "delete_all"
	IntentList         Kind = "list"
	IntentStop         Kind = "stop"
	IntentClarify      Kind = "clarify"
	IntentChitchat     Kind = "chitchat"
	IntentParseFailure Kind = "parse_failure"
)

// Intent is the parsed form of one user command.
type Intent struct {
	Kind Kind   `json:"kind"`
	Raw  string `json:"raw"`

	// Resolution is set for IntentCreate.
	Resolution *aitime.Resolution `json:"resolution,omitempty"`
	// Target is the HH:MM key for IntentDelete.
	Target string `json:"target,omitempty"`
	// Topic is set for IntentChitchat.
	Topic Topic `json:"topic,omitempty"`
	// Reply is the canned answer for chitchat, clarify and parse failures.
	Reply string `json:"reply,omitempty"`
}

// Replies for alarm commands that cannot be carried out.
const (
	ClarifyReply = "I can help you create, delete, or list alarms. What would you like to do?"

	CreateGuidance = "I couldn't understand the time. Please specify the time in format like " +
		"'7:30 AM', '14:30', '7 o'clock', 'in 5 minutes', or 'tomorrow at 7:30 AM'"

	DeleteGuidance = "I couldn't understand which alarm to remove. Please specify the time in format like " +
		"'7:30 AM' or say 'remove all alarms'."
)
