package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/router"
	"github.com/hrygo/alarmbot/plugin/ai/voice"
)

// ErrStopped is returned when submitting to an agent that is not running.
var ErrStopped = errors.New("agent is not running")

// Config holds the agent's collaborators. Only Alarms is required.
type Config struct {
	Router   router.RouterService
	Alarms   *reminder.Service
	UI       UI
	Ring     reminder.RingDevice
	Notifier reminder.Notifier
	Voice    *voice.Session
	Now      func() time.Time
}

// Agent owns the alarm service for one conversation. A single goroutine
// (Run) handles inbound events and fired alarms, so user commands and
// alarm side effects never interleave.
type Agent struct {
	router   router.RouterService
	alarms   *reminder.Service
	ui       UI
	ring     reminder.RingDevice
	notifier reminder.Notifier
	voice    *voice.Session
	now      func() time.Time

	events chan Event
	fired  chan []*reminder.Alarm
	done   chan struct{}
	logger *slog.Logger
}

// New creates an agent. Call Run to start dispatching.
func New(cfg Config) *Agent {
	a := &Agent{
		router:   cfg.Router,
		alarms:   cfg.Alarms,
		ui:       cfg.UI,
		ring:     cfg.Ring,
		notifier: cfg.Notifier,
		voice:    cfg.Voice,
		now:      cfg.Now,
		events:   make(chan Event),
		fired:    make(chan []*reminder.Alarm, 16),
		done:     make(chan struct{}),
		logger:   slog.Default(),
	}
	if a.router == nil {
		a.router = router.NewService(router.Config{})
	}
	if a.ui == nil {
		a.ui = NopUI{}
	}
	if a.ring == nil {
		a.ring = reminder.NopDevice{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Alarms returns the alarm service the agent dispatches to.
func (a *Agent) Alarms() *reminder.Service {
	return a.alarms
}

// Run dispatches events until ctx is done. It must be called once.
func (a *Agent) Run(ctx context.Context) error {
	defer close(a.done)

	a.ui.RenderAlarmList(a.alarms.List())
	a.logger.Info("agent started")

	for {
		select {
		case <-ctx.Done():
			_ = a.ring.Stop()
			a.logger.Info("agent stopped")
			return nil
		case ev := <-a.events:
			res := a.handle(ctx, ev)
			if ev.reply != nil {
				ev.reply <- res
			}
		case fired := <-a.fired:
			a.handleFired(ctx, fired)
		}
	}
}

// Submit queues an event and waits for its result.
func (a *Agent) Submit(ctx context.Context, ev Event) (*Result, error) {
	reply := make(chan *Result, 1)
	ev.reply = reply

	select {
	case a.events <- ev:
	case <-a.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Handle submits typed chat input.
func (a *Agent) Handle(ctx context.Context, text string) (*Result, error) {
	return a.Submit(ctx, Event{Type: EventCommand, Text: text})
}

// OnFired hands alarms that started ringing to the dispatch goroutine.
// It matches reminder.FireHandler.
func (a *Agent) OnFired(ctx context.Context, fired []*reminder.Alarm) {
	select {
	case a.fired <- fired:
	case <-a.done:
	case <-ctx.Done():
	}
}

// Listen captures one voice command and dispatches it like typed input.
func (a *Agent) Listen(ctx context.Context) (*Result, error) {
	if a.voice == nil || !a.voice.Available() {
		return a.Submit(ctx, Event{Type: EventVoiceError, Err: voice.ErrCapabilityUnavailable})
	}

	text, err := a.voice.ListenNotify(ctx, func() error {
		_, err := a.Submit(ctx, Event{Type: EventListening})
		return err
	})
	switch {
	case errors.Is(err, voice.ErrCanceled), errors.Is(err, voice.ErrBusy), errors.Is(err, ErrStopped):
		return nil, err
	case err != nil:
		return a.Submit(ctx, Event{Type: EventVoiceError, Err: err})
	}
	return a.Submit(ctx, Event{Type: EventTranscript, Text: text})
}

// CancelListening aborts a voice capture in progress.
func (a *Agent) CancelListening() {
	if a.voice != nil {
		a.voice.Cancel()
	}
}

// post queues an event without waiting for its result.
func (a *Agent) post(ev Event) {
	select {
	case a.events <- ev:
	case <-a.done:
	}
}
