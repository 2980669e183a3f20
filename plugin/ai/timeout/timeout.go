// Package timeout defines the timeouts alarmbot applies to blocking operations.
// Voice capture has none; it runs until a transcript arrives or it is canceled.
package timeout

import "time"

const (
	// SubmitTimeout bounds how long an HTTP request waits for the agent to
	// handle one command.
	SubmitTimeout = 10 * time.Second

	// WebhookTimeout is the default timeout of one webhook notification.
	WebhookTimeout = 10 * time.Second

	// NotifyCommandTimeout bounds one run of the desktop notification command.
	NotifyCommandTimeout = 5 * time.Second

	// ShutdownTimeout bounds how long in-flight requests may finish on shutdown.
	ShutdownTimeout = 5 * time.Second
)
