package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/plugin/ai/agent"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/ai/voice"
	"github.com/hrygo/alarmbot/store"
	"github.com/hrygo/alarmbot/store/db"
)

// app is the storage and alarm service every command starts from.
type app struct {
	profile *profile.Profile
	logger  *slog.Logger
	store   *store.Store
	alarms  *reminder.Service
}

// openApp validates the profile, opens and migrates the store, and loads the
// persisted alarms. Logs go to logOut.
func openApp(ctx context.Context, v *viper.Viper, logOut io.Writer) (*app, error) {
	instanceProfile := profile.FromViper(v)
	instanceProfile.Version = version
	if err := instanceProfile.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	logger := instanceProfile.LoggerTo(logOut)
	slog.SetDefault(logger)

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}

	alarms := reminder.NewService(reminder.NewBlobAlarmStore(storeInstance))
	alarms.SetLogger(logger)
	if err := alarms.Load(ctx); err != nil {
		_ = storeInstance.Close()
		return nil, errors.Wrap(err, "failed to load alarms")
	}

	return &app{
		profile: instanceProfile,
		logger:  logger,
		store:   storeInstance,
		alarms:  alarms,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newAgent wires the alarm service to ui and the configured side effects.
// The terminal bell, when used, is written to bell.
func (a *app) newAgent(ui agent.UI, bell io.Writer) *agent.Agent {
	return agent.New(agent.Config{
		Alarms:   a.alarms,
		UI:       ui,
		Ring:     a.ringDevice(bell),
		Notifier: a.notifier(),
		Voice:    a.voiceSession(),
	})
}

func (a *app) newScheduler(handler reminder.FireHandler) *reminder.Scheduler {
	scheduler := reminder.NewScheduler(a.alarms, reminder.SchedulerConfig{Interval: a.profile.TickInterval}, handler)
	scheduler.SetLogger(a.logger)
	return scheduler
}

func (a *app) ringDevice(bell io.Writer) reminder.RingDevice {
	if name, args := splitCommand(a.profile.RingCommand); name != "" {
		return reminder.NewCommandDevice(name, args...)
	}
	return reminder.NewBellDevice(bell, time.Second)
}

func (a *app) voiceSession() *voice.Session {
	name, args := splitCommand(a.profile.VoiceCommand)
	if name == "" {
		return nil
	}
	return voice.NewSession(voice.NewCommandRecognizer(name, args...))
}

func (a *app) notifier() reminder.Notifier {
	var requester reminder.PermissionRequester
	desktopName, desktopArgs := splitCommand(a.profile.NotifyCommand)
	var desktop *reminder.CommandSender
	if desktopName != "" {
		desktop = reminder.NewCommandSender(desktopName, desktopArgs...)
		requester = desktop
	}

	dispatcher := reminder.NewNotificationDispatcher(reminder.ParsePermission(a.profile.NotifyPermission), requester)
	dispatcher.Register(reminder.ChannelLog, reminder.NewLogSender())
	if desktop != nil {
		dispatcher.Register(reminder.ChannelDesktop, desktop)
	}
	if a.profile.WebhookURL != "" {
		dispatcher.Register(reminder.ChannelWebhook, reminder.NewWebhookSender(reminder.WebhookConfig{
			URL:    a.profile.WebhookURL,
			Secret: a.profile.WebhookSecret,
		}))
	}
	return dispatcher
}

func splitCommand(command string) (string, []string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
