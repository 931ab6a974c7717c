package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

func sampleRecord(street string, at time.Time) models.LookupRecord {
	return models.LookupRecord{
		Street:     street,
		City:       "Seattle",
		ZIP:        "98109",
		Outcome:    models.OutcomeSuccess,
		Rate:       0.101,
		ResultCode: models.CodeAddressFound,
		Attempts:   1,
		LookedUpAt: at,
	}
}

// TestCSVAuditLog_RecordAndRecent tests the append then read back cycle
func TestCSVAuditLog_RecordAndRecent(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "lookups.csv")
	ctx := context.Background()

	auditLog, err := NewCSVAuditLog(csvPath)
	if err != nil {
		t.Fatalf("failed to create CSV audit log: %v", err)
	}
	defer auditLog.Close()

	base := time.Date(2024, 5, 1, 17, 3, 11, 0, time.UTC)
	for i, street := range []string{"400 Broad St", "6500 Linderson Way SW", "1 Main St, Apt #2"} {
		if err := auditLog.Record(ctx, sampleRecord(street, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("record %d failed: %v", i, err)
		}
	}

	records, err := auditLog.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Street != "1 Main St, Apt #2" {
		t.Errorf("expected newest record first, got '%s'", records[0].Street)
	}
	if records[1].Street != "6500 Linderson Way SW" {
		t.Errorf("expected second newest record, got '%s'", records[1].Street)
	}
	if records[0].Rate != 0.101 {
		t.Errorf("expected rate 0.101, got %v", records[0].Rate)
	}
	if !records[0].LookedUpAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("unexpected timestamp %v", records[0].LookedUpAt)
	}
}

// TestCSVAuditLog_HeaderWrittenOnce tests that reopening does not repeat the header
func TestCSVAuditLog_HeaderWrittenOnce(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "nested", "lookups.csv")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		auditLog, err := NewCSVAuditLog(csvPath)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		if err := auditLog.Record(ctx, sampleRecord("400 Broad St", time.Now())); err != nil {
			t.Fatalf("record failed: %v", err)
		}
		auditLog.Close()
	}

	content, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if got := strings.Count(string(content), "looked_up_at,street"); got != 1 {
		t.Errorf("expected header once, found %d times", got)
	}
	if got := strings.Count(string(content), "\n"); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
}

// TestCSVAuditLog_SkipsInvalidRows tests that corrupt rows do not break reads
func TestCSVAuditLog_SkipsInvalidRows(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "lookups.csv")
	content := strings.Join(csvHeader, ",") + "\n" +
		"not-a-time,400 Broad St,Seattle,98109,success,0.101,0,0,1\n" +
		"2024-05-01T17:03:11Z,too,few\n" +
		"2024-05-01T17:03:11Z,400 Broad St,Seattle,98109,success,0.101,0,0,1\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	auditLog, err := NewCSVAuditLog(csvPath)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer auditLog.Close()

	records, err := auditLog.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 valid record, got %d", len(records))
	}
}

// TestCSVAuditLog_Closed tests writes after Close
func TestCSVAuditLog_Closed(t *testing.T) {
	auditLog, err := NewCSVAuditLog(filepath.Join(t.TempDir(), "lookups.csv"))
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}

	if err := auditLog.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := auditLog.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if err := auditLog.Record(context.Background(), sampleRecord("x", time.Now())); err == nil {
		t.Error("expected error recording to a closed log")
	}
}

// TestCSVAuditLog_InvalidPath tests an unwritable location
func TestCSVAuditLog_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := NewCSVAuditLog(filepath.Join(blocker, "lookups.csv")); err == nil {
		t.Error("expected error when the parent is a regular file")
	}
}
