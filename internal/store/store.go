package store

import (
	"context"
	"errors"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// ErrUnknownAuditLog is returned by NewAuditLog for an unsupported type
var ErrUnknownAuditLog = errors.New("unknown audit log type")

// AuditLog records every tax rate lookup the service performs
// It is a history, not a cache: nothing reads it to answer a lookup
type AuditLog interface {
	// Record appends one lookup to the log
	Record(ctx context.Context, rec models.LookupRecord) error

	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]models.LookupRecord, error)

	// Close cleans up resources (database connections, file handles, etc.)
	Close() error
}

// newestFirst returns the last limit records of an append-ordered slice, reversed
func newestFirst(records []models.LookupRecord, limit int) []models.LookupRecord {
	if limit <= 0 || len(records) == 0 {
		return []models.LookupRecord{}
	}
	if limit > len(records) {
		limit = len(records)
	}

	out := make([]models.LookupRecord, 0, limit)
	for i := len(records) - 1; i >= len(records)-limit; i-- {
		out = append(out, records[i])
	}
	return out
}
