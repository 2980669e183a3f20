package voice

import (
	"context"
	"sync"
)

// MockRecognizer returns scripted transcripts for testing.
// With Block set, Recognize waits for context cancellation.
type MockRecognizer struct {
	Transcripts []string
	Err         error
	Block       bool
	Started     chan struct{}
	mu          sync.Mutex
}

// NewMockRecognizer creates a recognizer that replays transcripts in order.
func NewMockRecognizer(transcripts ...string) *MockRecognizer {
	return &MockRecognizer{
		Transcripts: transcripts,
		Started:     make(chan struct{}, 16),
	}
}

// Recognize returns the next scripted transcript.
func (m *MockRecognizer) Recognize(ctx context.Context) (string, error) {
	select {
	case m.Started <- struct{}{}:
	default:
	}

	if m.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Transcripts) == 0 {
		return "", nil
	}
	text := m.Transcripts[0]
	m.Transcripts = m.Transcripts[1:]
	return text, nil
}
