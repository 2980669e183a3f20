package reminder

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// RingDevice plays the alarm sound.
type RingDevice interface {
	// Play starts the sound, repeating until Stop when loop is true.
	Play(loop bool) error
	// Stop silences the sound.
	Stop() error
	// Reset silences the sound and rewinds it to the start.
	Reset() error
}

// loopPlayer runs a play function in the background until stopped.
type loopPlayer struct {
	playOnce func(ctx context.Context) error
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
	logger   *slog.Logger
}

func (p *loopPlayer) Play(loop bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		for {
			if err := p.playOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("alarm sound failed", "error", err)
				return
			}
			if !loop || ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}

func (p *loopPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// Reset stops playback; the next Play starts from the beginning.
func (p *loopPlayer) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// Caller holds p.mu.
func (p *loopPlayer) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

// BellDevice rings the terminal bell once per interval.
type BellDevice struct {
	loopPlayer
}

// NewBellDevice creates a bell that writes BEL to w every interval.
func NewBellDevice(w io.Writer, interval time.Duration) *BellDevice {
	if interval <= 0 {
		interval = time.Second
	}
	d := &BellDevice{}
	d.logger = slog.Default()
	d.playOnce = func(ctx context.Context) error {
		if _, err := io.WriteString(w, "\a"); err != nil {
			return errors.Wrap(err, "failed to ring bell")
		}
		select {
		case <-ctx.Done():
		case <-time.After(interval):
		}
		return nil
	}
	return d
}

// CommandDevice plays a sound file through an external player command.
type CommandDevice struct {
	loopPlayer
}

// NewCommandDevice creates a device that runs name with args once per play.
func NewCommandDevice(name string, args ...string) *CommandDevice {
	d := &CommandDevice{}
	d.logger = slog.Default()
	d.playOnce = func(ctx context.Context) error {
		if err := exec.CommandContext(ctx, name, args...).Run(); err != nil {
			return errors.Wrapf(err, "ring command %s failed", name)
		}
		return nil
	}
	return d
}

// NopDevice is a silent RingDevice.
type NopDevice struct{}

func (NopDevice) Play(bool) error { return nil }
func (NopDevice) Stop() error     { return nil }
func (NopDevice) Reset() error    { return nil }
