package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Listen(t *testing.T) {
	session := NewSession(NewMockRecognizer("  set an alarm for 7 am  "))
	require.True(t, session.Available())

	text, err := session.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "set an alarm for 7 am", text)
	assert.False(t, session.Busy())
}

func TestSession_Unavailable(t *testing.T) {
	session := NewSession(nil)
	assert.False(t, session.Available())

	_, err := session.Listen(context.Background())
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)

	missing := NewSession(NewCommandRecognizer("alarmbot-no-such-recognizer"))
	assert.False(t, missing.Available())
	_, err = missing.Listen(context.Background())
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
}

func TestSession_OneCaptureAtATime(t *testing.T) {
	recognizer := NewMockRecognizer()
	recognizer.Block = true
	session := NewSession(recognizer)

	done := make(chan error, 1)
	go func() {
		_, err := session.Listen(context.Background())
		done <- err
	}()

	<-recognizer.Started
	assert.True(t, session.Busy())

	_, err := session.Listen(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	session.Cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCanceled)
	case <-time.After(time.Second):
		t.Fatal("capture did not stop after Cancel")
	}
	assert.False(t, session.Busy())
}

func TestSession_ListenNotify(t *testing.T) {
	session := NewSession(NewMockRecognizer("list alarms"))
	ctx := context.Background()

	var starts, nestedStarts int
	text, err := session.ListenNotify(ctx, func() error {
		starts++
		assert.True(t, session.Busy())

		_, err := session.ListenNotify(ctx, func() error {
			nestedStarts++
			return nil
		})
		assert.ErrorIs(t, err, ErrBusy)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "list alarms", text)
	assert.Equal(t, 1, starts)
	assert.Zero(t, nestedStarts)

	hookErr := errors.New("ui gone")
	_, err = session.ListenNotify(ctx, func() error { return hookErr })
	assert.ErrorIs(t, err, hookErr)
	assert.False(t, session.Busy())
}

func TestSession_CancelWhenIdle(t *testing.T) {
	session := NewSession(NewMockRecognizer("list alarms"))
	session.Cancel()

	text, err := session.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "list alarms", text)
	session.Cancel()
}

func TestSession_Errors(t *testing.T) {
	recognizer := NewMockRecognizer()
	session := NewSession(recognizer)

	_, err := session.Listen(context.Background())
	assert.ErrorIs(t, err, ErrNoSpeech)

	recognizer.Err = errors.New("network")
	_, err = session.Listen(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network")
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "You said: list alarms", EchoMessage("list alarms"))
	assert.Equal(t,
		"Sorry, there was an error with voice recognition: no speech detected. Please try again or type your command.",
		ErrorMessage(ErrNoSpeech))
}
