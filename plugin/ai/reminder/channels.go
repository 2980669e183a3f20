package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/plugin/ai/timeout"
)

// Permission is the user's decision on alarm notifications.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a config value to a Permission. Unrecognized values are unknown.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied:
		return Permission(s)
	default:
		return PermissionUnknown
	}
}

// Notifier defines the notification interface.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// PermissionRequester asks for notification permission.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (Permission, error)
}

// PermissionFunc adapts a function to PermissionRequester.
type PermissionFunc func(ctx context.Context) (Permission, error)

// RequestPermission calls f.
func (f PermissionFunc) RequestPermission(ctx context.Context) (Permission, error) {
	return f(ctx)
}

// Channel defines notification channel types.
type Channel string

const (
	ChannelLog     Channel = "log"
	ChannelDesktop Channel = "desktop"
	ChannelWebhook Channel = "webhook"
)

// ChannelSender defines the interface for sending notifications.
type ChannelSender interface {
	Send(ctx context.Context, title, body string, metadata map[string]any) error
	Name() string
}

// NotificationDispatcher routes notifications to the registered channels.
// Nothing is sent unless permission is granted; an unknown permission is
// requested once, on the first notification.
type NotificationDispatcher struct {
	channels   map[Channel]ChannelSender
	permission Permission
	requester  PermissionRequester
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewNotificationDispatcher creates a new notification dispatcher.
// requester may be nil, in which case an unknown permission stays unknown.
func NewNotificationDispatcher(permission Permission, requester PermissionRequester) *NotificationDispatcher {
	if permission == "" {
		permission = PermissionUnknown
	}
	return &NotificationDispatcher{
		channels:   make(map[Channel]ChannelSender),
		permission: permission,
		requester:  requester,
		logger:     slog.Default(),
	}
}

// Register registers a channel sender.
func (d *NotificationDispatcher) Register(channel Channel, sender ChannelSender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[channel] = sender
	d.logger.Info("registered notification channel", "channel", channel, "sender", sender.Name())
}

// Permission returns the current permission state.
func (d *NotificationDispatcher) Permission() Permission {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.permission
}

// Notify sends a notification through every registered channel.
// It returns the last channel error, if any.
func (d *NotificationDispatcher) Notify(ctx context.Context, title, body string) error {
	if d.resolvePermission(ctx) != PermissionGranted {
		d.logger.Debug("notification suppressed", "permission", d.Permission())
		return nil
	}

	d.mu.RLock()
	senders := make([]ChannelSender, 0, len(d.channels))
	for _, sender := range d.channels {
		senders = append(senders, sender)
	}
	d.mu.RUnlock()

	var lastErr error
	for _, sender := range senders {
		if err := sender.Send(ctx, title, body, nil); err != nil {
			d.logger.Warn("failed to send via channel", "sender", sender.Name(), "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// resolvePermission requests permission when it is still unknown.
func (d *NotificationDispatcher) resolvePermission(ctx context.Context) Permission {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.permission != PermissionUnknown || d.requester == nil {
		return d.permission
	}

	permission, err := d.requester.RequestPermission(ctx)
	if err != nil {
		d.logger.Warn("notification permission request failed", "error", err)
		return d.permission
	}
	d.permission = permission
	d.logger.Info("notification permission resolved", "permission", permission)
	return permission
}

// LogSender writes notifications to the structured log.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a new log sender.
func NewLogSender() *LogSender {
	return &LogSender{logger: slog.Default()}
}

// Send logs the notification.
func (s *LogSender) Send(_ context.Context, title, body string, _ map[string]any) error {
	s.logger.Info("alarm notification", "title", title, "body", body)
	return nil
}

// Name returns the sender name.
func (s *LogSender) Name() string {
	return "log"
}

// CommandSender shows desktop notifications through an external command
// such as notify-send. The title and body are appended as arguments.
type CommandSender struct {
	name   string
	args   []string
	logger *slog.Logger
}

// NewCommandSender creates a new command sender.
func NewCommandSender(name string, args ...string) *CommandSender {
	return &CommandSender{name: name, args: args, logger: slog.Default()}
}

// Send runs the notification command.
func (s *CommandSender) Send(ctx context.Context, title, body string, _ map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout.NotifyCommandTimeout)
	defer cancel()

	args := append(append([]string{}, s.args...), title, body)
	if out, err := exec.CommandContext(ctx, s.name, args...).CombinedOutput(); err != nil {
		return errors.Wrapf(err, "notification command %s failed: %s", s.name, bytes.TrimSpace(out))
	}
	s.logger.Debug("desktop notification sent", "command", s.name)
	return nil
}

// Name returns the sender name.
func (s *CommandSender) Name() string {
	return "desktop"
}

// RequestPermission grants permission when the notification command exists.
func (s *CommandSender) RequestPermission(_ context.Context) (Permission, error) {
	if _, err := exec.LookPath(s.name); err != nil {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

// WebhookConfig holds webhook configuration.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Headers map[string]string
}

// WebhookSender sends webhook notifications.
type WebhookSender struct {
	config     WebhookConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// WebhookPayload represents the webhook request body.
type WebhookPayload struct {
	Event     string         `json:"event"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewWebhookSender creates a new webhook sender.
func NewWebhookSender(config WebhookConfig) *WebhookSender {
	if config.Timeout <= 0 {
		config.Timeout = timeout.WebhookTimeout
	}

	return &WebhookSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: slog.Default(),
	}
}

// Send sends a webhook notification.
func (s *WebhookSender) Send(ctx context.Context, title, body string, metadata map[string]any) error {
	payload := WebhookPayload{
		Event:     "alarm.ringing",
		Title:     title,
		Body:      body,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to create webhook request")
	}

	req.Header.Set("Content-Type", "application/json")
	if s.config.Secret != "" {
		req.Header.Set("X-Webhook-Secret", s.config.Secret)
	}
	for k, v := range s.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("webhook request failed", "url", s.config.URL, "error", err)
		return errors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		s.logger.Error("webhook returned error",
			"url", s.config.URL,
			"status", resp.StatusCode,
			"response", string(respBody),
		)
		return errors.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.logger.Debug("webhook notification sent",
		"url", s.config.URL,
		"status", resp.StatusCode,
	)

	return nil
}

// Name returns the sender name.
func (s *WebhookSender) Name() string {
	return "webhook"
}
