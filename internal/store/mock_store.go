package store

import (
	"context"
	"sync"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// MockAuditLog is a test double for the AuditLog interface
// It keeps records in memory and tracks calls for verification
type MockAuditLog struct {
	mu sync.Mutex

	Records []models.LookupRecord

	// Track method calls for verification in tests
	RecordCalls int
	RecentCalls []int
	CloseCalled bool

	// Control behavior for error scenarios
	RecordError error
	RecentError error
	CloseError  error
}

// NewMockAuditLog creates an empty mock audit log
func NewMockAuditLog() *MockAuditLog {
	return &MockAuditLog{
		Records:     []models.LookupRecord{},
		RecentCalls: []int{},
	}
}

// Record implements the AuditLog interface
func (m *MockAuditLog) Record(_ context.Context, rec models.LookupRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordCalls++
	if m.RecordError != nil {
		return m.RecordError
	}
	m.Records = append(m.Records, rec)
	return nil
}

// Recent implements the AuditLog interface
func (m *MockAuditLog) Recent(_ context.Context, limit int) ([]models.LookupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecentCalls = append(m.RecentCalls, limit)
	if m.RecentError != nil {
		return nil, m.RecentError
	}
	return newestFirst(m.Records, limit), nil
}

// Close implements the AuditLog interface
func (m *MockAuditLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloseCalled = true
	return m.CloseError
}

// Snapshot returns a copy of the recorded entries
func (m *MockAuditLog) Snapshot() []models.LookupRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.LookupRecord, len(m.Records))
	copy(out, m.Records)
	return out
}
