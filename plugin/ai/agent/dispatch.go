package agent

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/router"
	"github.com/hrygo/alarmbot/plugin/ai/voice"
)

// turn collects the messages rendered while handling one event.
type turn struct {
	agent  *Agent
	result *Result
}

func (t *turn) say(text string, sender Sender) {
	t.agent.ui.RenderMessage(text, sender)
	t.result.Messages = append(t.result.Messages, Message{Text: text, Sender: sender})
}

// handle runs one event. Called only from Run.
func (a *Agent) handle(ctx context.Context, ev Event) *Result {
	t := &turn{agent: a, result: &Result{Messages: []Message{}}}

	switch ev.Type {
	case EventCommand:
		t.say(ev.Text, SenderUser)
		a.dispatch(ctx, t, ev.Text)

	case EventTranscript:
		t.say(voice.EchoMessage(ev.Text), SenderUser)
		a.dispatch(ctx, t, ev.Text)

	case EventListening:
		t.say(voice.ListeningMessage, SenderBot)

	case EventVoiceError:
		if errors.Is(ev.Err, voice.ErrCapabilityUnavailable) {
			t.say(voice.UnsupportedMessage, SenderBot)
		} else {
			t.say(voice.ErrorMessage(ev.Err), SenderBot)
		}

	case EventStop:
		a.stop(ctx, t, ev.AlarmID)

	case EventDelete:
		if _, err := a.alarms.DeleteByID(ctx, ev.AlarmID); err != nil {
			a.logger.Debug("delete button ignored", "alarm_id", ev.AlarmID, "error", err)
		}

	default:
		a.logger.Warn("unknown event type", "type", ev.Type)
	}

	t.result.Alarms = a.refreshList()
	return t.result
}

// dispatch parses a command and applies it to the alarm service.
func (a *Agent) dispatch(ctx context.Context, t *turn, text string) {
	intent := a.router.Parse(ctx, text, a.now())
	t.result.Intent = intent

	switch intent.Kind {
	case router.IntentCreate:
		res := intent.Resolution
		_, message, err := a.alarms.Create(ctx, res.Hour, res.Minute, res.Description, res.Date)
		if err != nil {
			a.logger.Warn("failed to create alarm", "error", err)
			t.say(router.CreateGuidance, SenderBot)
			return
		}
		t.say(message, SenderBot)

	case router.IntentDelete:
		removed, err := a.alarms.Delete(ctx, intent.Target)
		if err != nil {
			t.say(reminder.NotFoundMessage(intent.Target), SenderBot)
			return
		}
		t.say(reminder.DeletedMessage(removed), SenderBot)

	case router.IntentDeleteAll:
		a.alarms.DeleteAll(ctx)
		t.say(reminder.DeletedAllMessage, SenderBot)

	case router.IntentList:
		t.say(reminder.ListMessage(a.alarms.List()), SenderBot)

	case router.IntentStop:
		ringing := a.alarms.Ringing()
		if len(ringing) == 0 {
			t.say(reminder.NoRingingMessage, SenderBot)
			return
		}
		a.stop(ctx, t, ringing[0].ID)

	default:
		t.say(intent.Reply, SenderBot)
	}
}

// stop silences and removes a ringing alarm. The sound keeps playing while
// other alarms are still ringing.
func (a *Agent) stop(ctx context.Context, t *turn, id int64) {
	stopped, err := a.alarms.StopRinging(ctx, id)
	if err != nil {
		if errors.Is(err, reminder.ErrNotRinging) || errors.Is(err, reminder.ErrNotFound) {
			t.say(reminder.NoRingingMessage, SenderBot)
			return
		}
		a.logger.Warn("failed to stop alarm", "alarm_id", id, "error", err)
		return
	}

	if len(a.alarms.Ringing()) == 0 {
		if err := a.ring.Stop(); err != nil {
			a.logger.Warn("failed to stop alarm sound", "error", err)
		}
		if err := a.ring.Reset(); err != nil {
			a.logger.Warn("failed to reset alarm sound", "error", err)
		}
	}
	t.say(reminder.StoppedMessage(stopped), SenderBot)
}

// handleFired announces alarms that started ringing. Called only from Run.
func (a *Agent) handleFired(ctx context.Context, fired []*reminder.Alarm) {
	if err := a.ring.Play(true); err != nil {
		a.logger.Warn("failed to play alarm sound", "error", err)
	}

	for _, alarm := range fired {
		a.ui.RenderMessage(reminder.RingMessage(alarm), SenderBot)

		id := alarm.ID
		a.ui.RenderStopButton(alarm, func() {
			go a.post(Event{Type: EventStop, AlarmID: id})
		})

		if a.notifier != nil {
			if err := a.notifier.Notify(ctx, reminder.NotificationTitle, reminder.NotificationBody(alarm)); err != nil {
				a.logger.Warn("failed to send alarm notification", "alarm_id", alarm.ID, "error", err)
			}
		}
	}

	a.refreshList()
}

func (a *Agent) refreshList() []*reminder.Alarm {
	alarms := a.alarms.List()
	a.ui.RenderAlarmList(alarms)
	return alarms
}
