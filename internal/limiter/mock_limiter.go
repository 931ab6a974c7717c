package limiter

import (
	"context"
	"sync"
	"time"
)

// MockLimiter is a test double for the Limiter interface
type MockLimiter struct {
	mu sync.Mutex

	// AllowResult is returned from every Allow call
	AllowResult bool

	// WindowResult is returned from Window
	WindowResult time.Duration

	// Track method calls for verification in tests
	AllowCalls  []string
	CloseCalled bool

	CloseError error
}

// NewMockLimiter creates a mock limiter that always answers allowResult
func NewMockLimiter(allowResult bool) *MockLimiter {
	return &MockLimiter{
		AllowResult:  allowResult,
		WindowResult: time.Second,
		AllowCalls:   []string{},
	}
}

// Allow implements the Limiter interface
func (m *MockLimiter) Allow(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AllowCalls = append(m.AllowCalls, key)
	return m.AllowResult
}

// Window implements the Limiter interface
func (m *MockLimiter) Window() time.Duration {
	return m.WindowResult
}

// Calls returns a copy of the keys Allow was called with
func (m *MockLimiter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.AllowCalls))
	copy(out, m.AllowCalls)
	return out
}

// Close implements the Limiter interface
func (m *MockLimiter) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
