package lookup

import (
	"context"
	"errors"
	"sync"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

var errNotFound = errors.New("address not found")

// MockLookuper is a test double for the Lookuper interface
// It returns canned results per address and records every call
type MockLookuper struct {
	mu sync.Mutex

	// Results maps "street|city|zip" to the rate returned for it
	Results map[string]*models.TaxInfo

	// Errors are returned in order, one per call, before Results is consulted
	Errors []error

	// Calls records every query received
	Calls []models.AddressQuery
}

// NewMockLookuper creates a mock that knows the Space Needle's address
func NewMockLookuper() *MockLookuper {
	return &MockLookuper{
		Results: map[string]*models.TaxInfo{
			MockKey(models.AddressQuery{Street: "400 Broad St", City: "Seattle", ZIP: "98109"}): {
				Rate:         0.101,
				LocalRate:    0.036,
				LocationCode: "1726",
				ResultCode:   models.CodeAddressFound,
				Jurisdiction: &models.Jurisdiction{Name: "SEATTLE", Code: "1726", LocalRate: 0.036, StateRate: 0.065},
			},
		},
	}
}

// MockKey builds the Results key for q
func MockKey(q models.AddressQuery) string {
	return q.Street + "|" + q.City + "|" + q.ZIP
}

// Lookup implements the Lookuper interface
// Unknown addresses are rejected with DOR code 6, like the real service
func (m *MockLookuper) Lookup(ctx context.Context, q models.AddressQuery) (*models.TaxInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, q)

	if len(m.Errors) > 0 {
		err := m.Errors[0]
		m.Errors = m.Errors[1:]
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &LookupError{Kind: KindNetwork, Err: err}
	}

	info, ok := m.Results[MockKey(q)]
	if !ok {
		return nil, &LookupError{Kind: KindRemoteRejected, Code: models.CodeNoAddressNoZip, Err: errNotFound}
	}
	clone := *info
	return &clone, nil
}

// CallCount returns how many lookups were issued
func (m *MockLookuper) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
