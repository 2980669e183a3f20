package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/plugin/ai/reminder"
	"github.com/hrygo/alarmbot/plugin/filter"
)

func init() {
	color.NoColor = true
}

func runCLI(t *testing.T, dir, driver string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data", dir, "--driver", driver}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAlarmsCommands(t *testing.T) {
	for _, driver := range []string{"sqlite", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()

			out, err := runCLI(t, dir, driver, "alarms", "list")
			require.NoError(t, err)
			assert.Equal(t, reminder.NoAlarmsMessage+"\n", out)

			out, err = runCLI(t, dir, driver, "alarms", "add", "23:59", "late", "call")
			require.NoError(t, err)
			assert.Contains(t, out, "I've set an alarm for 23:59")
			assert.Contains(t, out, "with description: late call")

			out, err = runCLI(t, dir, driver, "alarms", "add", "6:15", "am", "-d", "run")
			require.NoError(t, err)
			assert.Contains(t, out, "I've set an alarm for 06:15")
			assert.Contains(t, out, "with description: run")

			out, err = runCLI(t, dir, driver, "alarms", "list")
			require.NoError(t, err)
			assert.Contains(t, out, "23:59  late call")
			assert.Contains(t, out, "06:15  run")

			out, err = runCLI(t, dir, driver, "alarms", "list", "--filter", "hour < 12")
			require.NoError(t, err)
			assert.Contains(t, out, "06:15  run")
			assert.NotContains(t, out, "late call")

			out, err = runCLI(t, dir, driver, "alarms", "export")
			require.NoError(t, err)
			assert.Contains(t, out, "BEGIN:VCALENDAR")
			assert.Contains(t, out, "SUMMARY:run")

			out, err = runCLI(t, dir, driver, "alarms", "delete", "11:59pm")
			require.NoError(t, err)
			assert.Equal(t, "I've removed the alarm for 23:59 with description: late call\n", out)

			out, err = runCLI(t, dir, driver, "alarms", "delete", "23:59")
			require.NoError(t, err)
			assert.Equal(t, reminder.NotFoundMessage("23:59")+"\n", out)

			out, err = runCLI(t, dir, driver, "alarms", "clear")
			require.NoError(t, err)
			assert.Equal(t, reminder.DeletedAllMessage+"\n", out)

			out, err = runCLI(t, dir, driver, "alarms", "list")
			require.NoError(t, err)
			assert.Equal(t, reminder.NoAlarmsMessage+"\n", out)
		})
	}
}

func TestAlarmsDeleteByID(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "sqlite", "alarms", "add", "7:00", "stretch")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "sqlite", "alarms", "delete", "42")
	require.NoError(t, err)
	assert.Equal(t, reminder.NotFoundMessage("42")+"\n", out)

	_, err = runCLI(t, dir, "sqlite", "alarms", "delete", "soon")
	assert.Error(t, err)
}

func TestAlarmsExportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alarms.ics")

	_, err := runCLI(t, dir, "sqlite", "alarms", "add", "8:00", "am", "for", "breakfast")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "sqlite", "alarms", "export", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SUMMARY:breakfast")
	assert.Contains(t, string(data), "RRULE:FREQ=DAILY")
}

func TestAlarmsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "sqlite", "alarms", "list", "--filter", "hour >=")
	assert.ErrorIs(t, err, filter.ErrInvalidFilter)

	_, err = runCLI(t, dir, "sqlite", "alarms", "add", "whenever")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "mysql", "alarms", "list")
	assert.ErrorContains(t, err, "unknown driver")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "alarmbot.yaml")
	require.NoError(t, os.WriteFile(config, []byte("driver: memory\n"), 0o600))

	run := func(args ...string) string {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"--config", config}, args...))
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String()
	}

	// The memory driver from the file starts empty on every run.
	assert.Contains(t, run("alarms", "add", "9:00", "x"), "I've set an alarm for 09:00")
	assert.Equal(t, reminder.NoAlarmsMessage+"\n", run("alarms", "list"))
	assert.NoFileExists(t, filepath.Join(dir, "alarmbot_dev.db"))

	_, err := runCLI(t, dir, "sqlite", "--config", filepath.Join(dir, "missing.yaml"), "alarms", "list")
	assert.Error(t, err)
}

func TestSplitCommand(t *testing.T) {
	name, args := splitCommand("  paplay --volume 65536 /usr/share/sounds/alarm.oga ")
	assert.Equal(t, "paplay", name)
	assert.Equal(t, []string{"--volume", "65536", "/usr/share/sounds/alarm.oga"}, args)

	name, args = splitCommand("")
	assert.Empty(t, name)
	assert.Nil(t, args)
}

func TestAppSideEffects(t *testing.T) {
	a := &app{profile: &profile.Profile{NotifyCommand: "", NotifyPermission: "granted"}}

	_, isBell := a.ringDevice(&bytes.Buffer{}).(*reminder.BellDevice)
	assert.True(t, isBell)
	assert.Nil(t, a.voiceSession())

	a.profile.RingCommand = "paplay alarm.oga"
	a.profile.VoiceCommand = "listen-once"
	_, isCommand := a.ringDevice(&bytes.Buffer{}).(*reminder.CommandDevice)
	assert.True(t, isCommand)
	assert.NotNil(t, a.voiceSession())

	dispatcher, ok := a.notifier().(*reminder.NotificationDispatcher)
	require.True(t, ok)
	assert.Equal(t, reminder.PermissionGranted, dispatcher.Permission())
}
