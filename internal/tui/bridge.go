// Package tui is the terminal chat window for alarmbot.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
)

type messageMsg struct {
	text   string
	sender agent.Sender
}

type stopButtonMsg struct {
	alarm   *reminder.Alarm
	onClick func()
}

type alarmListMsg struct {
	alarms []*reminder.Alarm
}

// Bridge is the agent.UI of the terminal. The agent's dispatch goroutine
// writes to it and the model drains it between key presses.
type Bridge struct {
	msgs chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBridge creates a bridge that buffers up to size renders.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = 64
	}
	return &Bridge{msgs: make(chan tea.Msg, size), done: make(chan struct{})}
}

// Close drops every later render. Call it once the window is gone so the
// agent never blocks on a full buffer.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// RenderMessage queues a chat line.
func (b *Bridge) RenderMessage(text string, sender agent.Sender) {
	b.send(messageMsg{text: text, sender: sender})
}

// RenderStopButton queues a stop control for a ringing alarm.
func (b *Bridge) RenderStopButton(alarm *reminder.Alarm, onClick func()) {
	b.send(stopButtonMsg{alarm: alarm, onClick: onClick})
}

// RenderAlarmList queues the alarm panel contents.
func (b *Bridge) RenderAlarmList(alarms []*reminder.Alarm) {
	b.send(alarmListMsg{alarms: alarms})
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	case <-b.done:
	}
}

// wait blocks until the next render is queued. It returns nil once closed.
func (b *Bridge) wait() tea.Msg {
	select {
	case msg := <-b.msgs:
		return msg
	case <-b.done:
		return nil
	}
}

var _ agent.UI = (*Bridge)(nil)
