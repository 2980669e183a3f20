package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/voice"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ringStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// defaultLines is how many chat lines show before the window size is known.
const defaultLines = 12

const helpText = " enter: send • ctrl+v: voice • esc: cancel voice • ctrl+s: stop alarm • ↑/↓ + ctrl+d: delete alarm • ctrl+c: quit"

// Agent is the part of agent.Agent the chat window drives.
type Agent interface {
	Handle(ctx context.Context, text string) (*agent.Result, error)
	Listen(ctx context.Context) (*agent.Result, error)
	CancelListening()
	Submit(ctx context.Context, ev agent.Event) (*agent.Result, error)
}

// resultMsg reports the outcome of a command run against the agent.
type resultMsg struct {
	voice bool
	err   error
}

type line struct {
	text    string
	sender  agent.Sender
	alarmID int64
}

// Model is the bubbletea model of the chat window.
type Model struct {
	ctx    context.Context
	agent  Agent
	bridge *Bridge
	input  textinput.Model

	lines  []line
	alarms []*reminder.Alarm
	// stops holds the stop controls of ringing alarms, newest last in stopOrder.
	stops     map[int64]func()
	stopOrder []int64
	selected  int

	listening bool
	status    string
	height    int
}

// NewModel creates the chat window. Renders must arrive through bridge.
func NewModel(ctx context.Context, ag Agent, bridge *Bridge) *Model {
	t := textinput.New()
	t.Placeholder = "set an alarm for 7:30 am for gym"
	t.Prompt = "› "
	t.CharLimit = 256
	t.PromptStyle = selectStyle
	t.Focus()

	return &Model{
		ctx:    ctx,
		agent:  ag,
		bridge: bridge,
		input:  t,
		stops:  make(map[int64]func()),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.wait)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case messageMsg:
		m.lines = append(m.lines, line{text: msg.text, sender: msg.sender})
		return m, m.bridge.wait

	case stopButtonMsg:
		m.addStop(msg.alarm, msg.onClick)
		return m, m.bridge.wait

	case alarmListMsg:
		m.setAlarms(msg.alarms)
		return m, m.bridge.wait

	case resultMsg:
		if msg.voice {
			m.listening = false
		}
		m.status = ""
		if msg.err != nil && !errors.Is(msg.err, voice.ErrCanceled) {
			m.status = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.agent.CancelListening()
			return m, tea.Quit

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.handle(text)

		case "ctrl+v":
			if m.listening {
				return m, nil
			}
			m.listening = true
			return m, m.listen

		case "esc":
			if m.listening {
				m.agent.CancelListening()
			}
			return m, nil

		case "ctrl+s":
			m.pressStop()
			return m, nil

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.alarms)-1 {
				m.selected++
			}
			return m, nil

		case "ctrl+d":
			if len(m.alarms) == 0 {
				return m, nil
			}
			return m, m.delete(m.alarms[m.selected].ID)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handle(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.agent.Handle(m.ctx, text)
		return resultMsg{err: err}
	}
}

func (m *Model) listen() tea.Msg {
	_, err := m.agent.Listen(m.ctx)
	return resultMsg{voice: true, err: err}
}

func (m *Model) delete(id int64) tea.Cmd {
	return func() tea.Msg {
		_, err := m.agent.Submit(m.ctx, agent.Event{Type: agent.EventDelete, AlarmID: id})
		return resultMsg{err: err}
	}
}

// addStop attaches a stop control to the ring line of alarm.
func (m *Model) addStop(alarm *reminder.Alarm, onClick func()) {
	if _, ok := m.stops[alarm.ID]; !ok {
		m.stopOrder = append(m.stopOrder, alarm.ID)
	}
	m.stops[alarm.ID] = onClick

	ring := reminder.RingMessage(alarm)
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].text == ring {
			m.lines[i].alarmID = alarm.ID
			break
		}
	}
}

// setAlarms replaces the panel and drops stop controls of alarms no longer ringing.
func (m *Model) setAlarms(alarms []*reminder.Alarm) {
	m.alarms = alarms
	ringing := make(map[int64]bool, len(alarms))
	for _, a := range alarms {
		if a.IsRinging {
			ringing[a.ID] = true
		}
	}

	order := m.stopOrder[:0]
	for _, id := range m.stopOrder {
		if ringing[id] {
			order = append(order, id)
		} else {
			delete(m.stops, id)
		}
	}
	m.stopOrder = order

	if m.selected >= len(alarms) {
		m.selected = max(len(alarms)-1, 0)
	}
}

// pressStop clicks the stop control of the most recently rung alarm.
func (m *Model) pressStop() bool {
	if len(m.stopOrder) == 0 {
		return false
	}
	id := m.stopOrder[len(m.stopOrder)-1]
	m.stops[id]()
	return true
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("⏰ alarmbot") + "\n\n")
	b.WriteString(panelStyle.Render(m.alarmPanel()) + "\n\n")

	for _, l := range m.visibleLines() {
		b.WriteString(m.renderLine(l) + "\n")
	}

	b.WriteString("\n")
	if m.listening {
		b.WriteString(mutedStyle.Render(voice.ListeningMessage) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render("✗ "+m.status) + "\n")
	}
	b.WriteString(mutedStyle.Render(helpText))

	return b.String()
}

func (m *Model) alarmPanel() string {
	if len(m.alarms) == 0 {
		return mutedStyle.Render("No alarms")
	}

	rows := make([]string, 0, len(m.alarms))
	for i, a := range m.alarms {
		row := a.Time
		if label := a.DateLabel(); label != "" {
			row += " " + label
		}
		row += "  " + a.Description
		if a.IsRinging {
			row = ringStyle.Render(row + " 🔔")
		}

		if i == m.selected {
			rows = append(rows, selectStyle.Render("> ")+row)
		} else {
			rows = append(rows, "  "+row)
		}
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderLine(l line) string {
	if l.sender == agent.SenderUser {
		return userStyle.Render("you › ") + l.text
	}
	if _, ok := m.stops[l.alarmID]; ok && l.alarmID != 0 {
		return botStyle.Render("bot › ") + ringStyle.Render(l.text) + mutedStyle.Render("  [ctrl+s] stop")
	}
	return botStyle.Render("bot › ") + l.text
}

// visibleLines returns the chat lines that fit under the alarm panel.
func (m *Model) visibleLines() []line {
	limit := defaultLines
	if m.height > 0 {
		limit = m.height - len(m.alarms) - 10
	}
	limit = max(limit, 3)
	if len(m.lines) <= limit {
		return m.lines
	}
	return m.lines[len(m.lines)-limit:]
}

// Run shows the chat window until the user quits, then closes bridge.
func Run(ctx context.Context, ag Agent, bridge *Bridge) error {
	defer bridge.Close()

	p := tea.NewProgram(NewModel(ctx, ag, bridge), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "chat window failed")
	}
	return nil
}
