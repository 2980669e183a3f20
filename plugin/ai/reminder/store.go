package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryStore is an in-memory implementation of BlobStore for testing.
type MemoryStore struct {
	blobs      map[string][]byte
	ShouldFail bool
	mu         sync.RWMutex
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Get returns a copy of the blob stored under key, or nil.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ShouldFail {
		return nil, errors.New("mock store failure")
	}
	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), blob...), nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ShouldFail {
		return errors.New("mock store failure")
	}
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

// SetFailing toggles failure mode.
func (s *MemoryStore) SetFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ShouldFail = fail
}

// MockNotifier is a mock implementation of Notifier for testing.
type MockNotifier struct {
	SentMessages []SentMessage
	ShouldFail   bool
	mu           sync.Mutex
}

// SentMessage represents a notification that was sent.
type SentMessage struct {
	Title  string
	Body   string
	SentAt time.Time
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		SentMessages: make([]SentMessage, 0),
	}
}

// Notify records a sent notification.
func (n *MockNotifier) Notify(_ context.Context, title, body string) error {
	if n.ShouldFail {
		return errors.New("mock notifier failure")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.SentMessages = append(n.SentMessages, SentMessage{
		Title:  title,
		Body:   body,
		SentAt: time.Now(),
	})
	return nil
}

// Send lets MockNotifier act as a ChannelSender.
func (n *MockNotifier) Send(ctx context.Context, title, body string, _ map[string]any) error {
	return n.Notify(ctx, title, body)
}

// Name returns the sender name.
func (n *MockNotifier) Name() string {
	return "mock"
}

// GetSentCount returns the number of notifications sent.
func (n *MockNotifier) GetSentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.SentMessages)
}

// Messages returns a copy of the sent notifications.
func (n *MockNotifier) Messages() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentMessage(nil), n.SentMessages...)
}

// MockRingDevice records RingDevice calls for testing.
type MockRingDevice struct {
	Plays   int
	Stops   int
	Resets  int
	Looping bool
	mu      sync.Mutex
}

// NewMockRingDevice creates a new mock ring device.
func NewMockRingDevice() *MockRingDevice {
	return &MockRingDevice{}
}

func (d *MockRingDevice) Play(loop bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Plays++
	d.Looping = loop
	return nil
}

func (d *MockRingDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Stops++
	d.Looping = false
	return nil
}

func (d *MockRingDevice) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Resets++
	d.Looping = false
	return nil
}

// Counts returns the recorded play, stop and reset counts.
func (d *MockRingDevice) Counts() (plays, stops, resets int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Plays, d.Stops, d.Resets
}

var (
	_ BlobStore     = (*MemoryStore)(nil)
	_ Notifier      = (*MockNotifier)(nil)
	_ ChannelSender = (*MockNotifier)(nil)
	_ RingDevice    = (*MockRingDevice)(nil)
	_ RingDevice    = NopDevice{}
	_ RingDevice    = (*BellDevice)(nil)
	_ RingDevice    = (*CommandDevice)(nil)
	_ Notifier      = (*NotificationDispatcher)(nil)
)
