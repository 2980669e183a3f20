package reminder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	assert.Equal(t, PermissionGranted, ParsePermission("granted"))
	assert.Equal(t, PermissionDenied, ParsePermission("denied"))
	assert.Equal(t, PermissionUnknown, ParsePermission(""))
	assert.Equal(t, PermissionUnknown, ParsePermission("maybe"))
}

func TestNotificationDispatcher_Granted(t *testing.T) {
	dispatcher := NewNotificationDispatcher(PermissionGranted, nil)
	mock := NewMockNotifier()
	dispatcher.Register(ChannelLog, mock)

	err := dispatcher.Notify(context.Background(), NotificationTitle, "Time for: gym")
	require.NoError(t, err)

	messages := mock.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Alarm!", messages[0].Title)
	assert.Equal(t, "Time for: gym", messages[0].Body)
}

func TestNotificationDispatcher_DeniedNeverSends(t *testing.T) {
	requested := false
	dispatcher := NewNotificationDispatcher(PermissionDenied, PermissionFunc(func(context.Context) (Permission, error) {
		requested = true
		return PermissionGranted, nil
	}))
	mock := NewMockNotifier()
	dispatcher.Register(ChannelLog, mock)

	require.NoError(t, dispatcher.Notify(context.Background(), "Alarm!", "body"))
	assert.Equal(t, 0, mock.GetSentCount())
	assert.False(t, requested)
}

func TestNotificationDispatcher_UnknownRequestsOnce(t *testing.T) {
	requests := 0
	dispatcher := NewNotificationDispatcher(PermissionUnknown, PermissionFunc(func(context.Context) (Permission, error) {
		requests++
		return PermissionGranted, nil
	}))
	mock := NewMockNotifier()
	dispatcher.Register(ChannelLog, mock)

	ctx := context.Background()
	require.NoError(t, dispatcher.Notify(ctx, "Alarm!", "one"))
	require.NoError(t, dispatcher.Notify(ctx, "Alarm!", "two"))

	assert.Equal(t, 1, requests)
	assert.Equal(t, PermissionGranted, dispatcher.Permission())
	assert.Equal(t, 2, mock.GetSentCount())
}

func TestNotificationDispatcher_UnknownThenDenied(t *testing.T) {
	dispatcher := NewNotificationDispatcher("", PermissionFunc(func(context.Context) (Permission, error) {
		return PermissionDenied, nil
	}))
	mock := NewMockNotifier()
	dispatcher.Register(ChannelLog, mock)

	require.NoError(t, dispatcher.Notify(context.Background(), "Alarm!", "body"))
	assert.Equal(t, PermissionDenied, dispatcher.Permission())
	assert.Equal(t, 0, mock.GetSentCount())
}

func TestNotificationDispatcher_UnknownWithoutRequester(t *testing.T) {
	dispatcher := NewNotificationDispatcher(PermissionUnknown, nil)
	mock := NewMockNotifier()
	dispatcher.Register(ChannelLog, mock)

	require.NoError(t, dispatcher.Notify(context.Background(), "Alarm!", "body"))
	assert.Equal(t, 0, mock.GetSentCount())
}

func TestNotificationDispatcher_ReportsChannelError(t *testing.T) {
	dispatcher := NewNotificationDispatcher(PermissionGranted, nil)
	mock := NewMockNotifier()
	mock.ShouldFail = true
	dispatcher.Register(ChannelLog, mock)

	assert.Error(t, dispatcher.Notify(context.Background(), "Alarm!", "body"))
}

func TestLogSender(t *testing.T) {
	sender := NewLogSender()
	assert.Equal(t, "log", sender.Name())
	assert.NoError(t, sender.Send(context.Background(), "Alarm!", "body", nil))
}

func TestCommandSender_MissingCommandIsDenied(t *testing.T) {
	sender := NewCommandSender("alarmbot-no-such-notifier")
	permission, err := sender.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, permission)
	assert.Error(t, sender.Send(context.Background(), "Alarm!", "body", nil))
}

func TestWebhookSender(t *testing.T) {
	var received WebhookPayload
	var receivedSecret string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedSecret = r.Header.Get("X-Webhook-Secret")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(WebhookConfig{
		URL:     server.URL,
		Secret:  "test-secret",
		Timeout: 5 * time.Second,
	})
	assert.Equal(t, "webhook", sender.Name())

	err := sender.Send(context.Background(), "Alarm!", "Time for: gym", map[string]any{"alarm_id": 1})
	require.NoError(t, err)

	assert.Equal(t, "test-secret", receivedSecret)
	assert.Equal(t, "alarm.ringing", received.Event)
	assert.Equal(t, "Alarm!", received.Title)
	assert.Equal(t, "Time for: gym", received.Body)
}

func TestWebhookSender_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal error"))
	}))
	defer server.Close()

	sender := NewWebhookSender(WebhookConfig{URL: server.URL})

	err := sender.Send(context.Background(), "Alarm!", "body", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
