// Package agent dispatches alarm commands and alarm firings for one chat session.
package agent

import (
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/router"
)

// Sender identifies who a chat message is from.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// UI renders the conversation. Implementations are called only from the
// agent's dispatch goroutine.
type UI interface {
	RenderMessage(text string, sender Sender)
	// RenderStopButton shows a control that stops a ringing alarm.
	// onClick is safe to call from any goroutine.
	RenderStopButton(alarm *reminder.Alarm, onClick func())
	RenderAlarmList(alarms []*reminder.Alarm)
}

// EventType is the kind of inbound event.
type EventType string

const (
	EventCommand    EventType = "command"     // Typed chat input
	EventTranscript EventType = "transcript"  // Recognized speech
	EventListening  EventType = "listening"   // Voice capture started
	EventVoiceError EventType = "voice_error" // Voice capture failed
	EventStop       EventType = "stop"        // Stop button for AlarmID
	EventDelete     EventType = "delete"      // Delete button for AlarmID
)

// Event is one inbound command, independent of its source.
type Event struct {
	Type    EventType
	Text    string
	AlarmID int64
	Err     error

	reply chan *Result
}

// Message is one rendered chat line.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// Result is what handling one event produced.
type Result struct {
	Intent   *router.Intent    `json:"intent,omitempty"`
	Messages []Message         `json:"messages"`
	Alarms   []*reminder.Alarm `json:"alarms"`
}

// NopUI discards everything.
type NopUI struct{}

func (NopUI) RenderMessage(string, Sender)             {}
func (NopUI) RenderStopButton(*reminder.Alarm, func()) {}
func (NopUI) RenderAlarmList([]*reminder.Alarm)        {}
