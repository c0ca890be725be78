package mock

import (
	"context"
	"sync"
)

// DefaultAnswer is returned by a MockCompleter with no CompleteFunc.
const DefaultAnswer = "I don't know from the provided documents."

// MockCompleter is a test double for ai.Completer.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	mu         sync.Mutex
	callCount  int
	lastSystem string
	lastUser   string
}

// NewMockCompleter creates a mock completer that answers DefaultAnswer.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the prompt and returns the injected or default answer.
func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastSystem = system
	m.lastUser = user
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return DefaultAnswer, nil
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the system and user messages of the most recent call.
func (m *MockCompleter) LastPrompt() (system, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem, m.lastUser
}
