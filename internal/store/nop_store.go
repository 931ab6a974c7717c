package store

import (
	"context"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// NopAuditLog discards every record
// Used when AUDIT_LOG_TYPE=none
type NopAuditLog struct{}

func (NopAuditLog) Record(context.Context, models.LookupRecord) error { return nil }

func (NopAuditLog) Recent(context.Context, int) ([]models.LookupRecord, error) {
	return []models.LookupRecord{}, nil
}

func (NopAuditLog) Close() error { return nil }
