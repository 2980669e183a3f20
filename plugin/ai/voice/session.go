// Package voice captures spoken alarm commands.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrCapabilityUnavailable is returned when no speech recognizer can run here.
	ErrCapabilityUnavailable = errors.New("voice recognition is not supported")
	// ErrBusy is returned when a capture is already in progress.
	ErrBusy = errors.New("voice capture already in progress")
	// ErrCanceled is returned when a capture is cancelled before a transcript arrives.
	ErrCanceled = errors.New("voice capture cancelled")
	// ErrNoSpeech is returned when the recognizer heard nothing.
	ErrNoSpeech = errors.New("no speech detected")
)

// Chat messages shown around a voice capture.
const (
	ListeningMessage   = "Listening for your command..."
	UnsupportedMessage = "Sorry, voice recognition is not supported in your environment. Please type your commands instead."
)

// EchoMessage repeats the recognized transcript back to the user.
func EchoMessage(transcript string) string {
	return "You said: " + transcript
}

// ErrorMessage reports a failed capture.
func ErrorMessage(err error) string {
	return fmt.Sprintf("Sorry, there was an error with voice recognition: %v. Please try again or type your command.", err)
}

// Recognizer turns one utterance into text.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// Prober is implemented by recognizers that can tell up front whether they work.
type Prober interface {
	Available() bool
}

// Session runs at most one capture at a time.
type Session struct {
	recognizer Recognizer
	busy       bool
	cancel     context.CancelFunc
	mu         sync.Mutex
	logger     *slog.Logger
}

// NewSession creates a capture session. A nil recognizer makes the session unavailable.
func NewSession(recognizer Recognizer) *Session {
	return &Session{
		recognizer: recognizer,
		logger:     slog.Default(),
	}
}

// Available reports whether Listen can capture speech.
func (s *Session) Available() bool {
	if s.recognizer == nil {
		return false
	}
	if p, ok := s.recognizer.(Prober); ok {
		return p.Available()
	}
	return true
}

// Busy reports whether a capture is in progress.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Listen blocks until the recognizer returns a transcript or fails.
func (s *Session) Listen(ctx context.Context) (string, error) {
	return s.ListenNotify(ctx, nil)
}

// ListenNotify is Listen with a hook that runs once the capture is claimed
// and before recognition starts. An error from started aborts the capture.
func (s *Session) ListenNotify(ctx context.Context, started func() error) (string, error) {
	if !s.Available() {
		return "", ErrCapabilityUnavailable
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	if started != nil {
		if err := started(); err != nil {
			return "", err
		}
	}

	s.logger.Debug("voice capture started")
	text, err := s.recognizer.Recognize(ctx)
	if ctx.Err() != nil {
		return "", ErrCanceled
	}
	if err != nil {
		return "", errors.Wrap(err, "recognize speech")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	s.logger.Debug("voice capture finished", "length", len(text))
	return text, nil
}

// Cancel aborts the capture in progress. It is a no-op when idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// CommandRecognizer runs an external speech-to-text command and reads the
// transcript from its standard output.
type CommandRecognizer struct {
	name string
	args []string
}

// NewCommandRecognizer creates a recognizer for the given command line.
func NewCommandRecognizer(name string, args ...string) *CommandRecognizer {
	return &CommandRecognizer{name: name, args: args}
}

// Available reports whether the command exists on PATH.
func (r *CommandRecognizer) Available() bool {
	if r.name == "" {
		return false
	}
	_, err := exec.LookPath(r.name)
	return err == nil
}

// Recognize runs the command once.
func (r *CommandRecognizer) Recognize(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.name, r.args...).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrCapabilityUnavailable
		}
		return "", errors.Wrapf(err, "speech command %s failed", r.name)
	}
	return string(out), nil
}
