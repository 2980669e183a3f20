package router

import (
	"context"
	"sync"
	"time"
)

// MockRouterService is a mock implementation of RouterService for testing.
type MockRouterService struct {
	mu sync.Mutex
	// IntentOverrides allows tests to script the intent returned for an input.
	IntentOverrides map[string]*Intent
	// Inputs records every input passed to Parse.
	Inputs []string
}

// NewMockRouterService creates a new MockRouterService.
func NewMockRouterService() *MockRouterService {
	return &MockRouterService{
		IntentOverrides: make(map[string]*Intent),
	}
}

// Parse returns the scripted intent, or a chitchat fallback.
func (m *MockRouterService) Parse(_ context.Context, input string, _ time.Time) *Intent {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Inputs = append(m.Inputs, input)
	if intent, ok := m.IntentOverrides[input]; ok {
		clone := *intent
		clone.Raw = input
		return &clone
	}
	return &Intent{Kind: IntentChitchat, Raw: input, Topic: TopicOther, Reply: FallbackReply}
}

var _ RouterService = (*MockRouterService)(nil)
