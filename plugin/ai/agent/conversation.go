package agent

import (
	"sync"
	"time"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
)

// Conversation is a UI that records the chat so it can be read back later,
// e.g. by HTTP clients polling for alarm messages.
type Conversation struct {
	mu sync.RWMutex

	SessionID string
	Entries   []Entry
	Alarms    []*reminder.Alarm

	// stopButtons holds the stop controls of alarms still on screen.
	stopButtons map[int64]func()
	nextSeq     int64
	limit       int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry is one recorded chat line.
type Entry struct {
	Seq       int64     `json:"seq"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	AlarmID   int64     `json:"alarm_id,omitempty"` // set for ring messages with a stop control
	Timestamp time.Time `json:"timestamp"`
}

// DefaultConversationLimit is how many entries a conversation keeps.
const DefaultConversationLimit = 200

// NewConversation creates a new conversation that keeps the last limit entries.
func NewConversation(sessionID string, limit int) *Conversation {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}
	return &Conversation{
		SessionID:   sessionID,
		Entries:     make([]Entry, 0),
		Alarms:      make([]*reminder.Alarm, 0),
		stopButtons: make(map[int64]func()),
		limit:       limit,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// RenderMessage records a chat line.
func (c *Conversation) RenderMessage(text string, sender Sender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(Entry{Text: text, Sender: sender})
}

// RenderStopButton attaches a stop control to the latest ring message.
func (c *Conversation) RenderStopButton(alarm *reminder.Alarm, onClick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopButtons[alarm.ID] = onClick
	if n := len(c.Entries); n > 0 && c.Entries[n-1].Text == reminder.RingMessage(alarm) {
		c.Entries[n-1].AlarmID = alarm.ID
	}
}

// RenderAlarmList records the current alarm list and drops stop controls
// of alarms that are gone or no longer ringing.
func (c *Conversation) RenderAlarmList(alarms []*reminder.Alarm) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Alarms = alarms
	ringing := make(map[int64]bool, len(alarms))
	for _, a := range alarms {
		if a.IsRinging {
			ringing[a.ID] = true
		}
	}
	for id := range c.stopButtons {
		if !ringing[id] {
			delete(c.stopButtons, id)
		}
	}
	c.UpdatedAt = time.Now()
}

// PressStop clicks the stop control for an alarm. It reports whether one was shown.
func (c *Conversation) PressStop(alarmID int64) bool {
	c.mu.RLock()
	onClick, ok := c.stopButtons[alarmID]
	c.mu.RUnlock()

	if ok {
		onClick()
	}
	return ok
}

// Since returns the entries with Seq greater than seq.
func (c *Conversation) Since(seq int64) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0)
	for _, e := range c.Entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// AlarmList returns the last rendered alarm list.
func (c *Conversation) AlarmList() []*reminder.Alarm {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*reminder.Alarm(nil), c.Alarms...)
}

// Caller holds c.mu.
func (c *Conversation) appendLocked(e Entry) {
	c.nextSeq++
	e.Seq = c.nextSeq
	e.Timestamp = time.Now()
	c.Entries = append(c.Entries, e)
	c.UpdatedAt = e.Timestamp

	// Keep only the last limit entries to manage memory
	if len(c.Entries) > c.limit {
		c.Entries = c.Entries[len(c.Entries)-c.limit:]
	}
}

var _ UI = (*Conversation)(nil)
