package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// csvHeader is written once when the file is created
var csvHeader = []string{
	"looked_up_at", "street", "city", "zip", "outcome",
	"rate", "result_code", "status_code", "attempts",
}

// CSVAuditLog implements AuditLog as an append-only CSV file
//
// CSV Format: looked_up_at,street,city,zip,outcome,rate,result_code,status_code,attempts
// Example: 2024-05-01T17:03:11Z,400 Broad St,Seattle,98109,success,0.101,0,0,1
type CSVAuditLog struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewCSVAuditLog opens (or creates) the CSV file at filePath for appending
func NewCSVAuditLog(filePath string) (*CSVAuditLog, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV audit log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat CSV audit log: %w", err)
	}

	// A fresh file gets the header row
	if info.Size() == 0 {
		w := csv.NewWriter(file)
		if err := w.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	return &CSVAuditLog{path: filePath, file: file}, nil
}

// Record appends one row and flushes it to disk
func (s *CSVAuditLog) Record(ctx context.Context, rec models.LookupRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("CSV audit log is closed")
	}

	w := csv.NewWriter(s.file)
	if err := w.Write(toCSVRow(rec)); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}
	return nil
}

// Recent reads the file back and returns the newest records
// Rows that fail to parse are skipped
func (s *CSVAuditLog) Recent(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV audit log: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV audit log: %w", err)
	}

	records := make([]models.LookupRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rec, err := fromCSVRow(row)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	return newestFirst(records, limit), nil
}

// Close closes the underlying file
func (s *CSVAuditLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func toCSVRow(rec models.LookupRecord) []string {
	return []string{
		rec.LookedUpAt.UTC().Format(time.RFC3339Nano),
		rec.Street,
		rec.City,
		rec.ZIP,
		rec.Outcome,
		strconv.FormatFloat(rec.Rate, 'f', -1, 64),
		strconv.Itoa(int(rec.ResultCode)),
		strconv.Itoa(rec.StatusCode),
		strconv.Itoa(rec.Attempts),
	}
}

func fromCSVRow(row []string) (models.LookupRecord, error) {
	if len(row) != len(csvHeader) {
		return models.LookupRecord{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	lookedUpAt, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return models.LookupRecord{}, err
	}
	rate, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return models.LookupRecord{}, err
	}
	code, err := strconv.Atoi(row[6])
	if err != nil {
		return models.LookupRecord{}, err
	}
	status, err := strconv.Atoi(row[7])
	if err != nil {
		return models.LookupRecord{}, err
	}
	attempts, err := strconv.Atoi(row[8])
	if err != nil {
		return models.LookupRecord{}, err
	}

	return models.LookupRecord{
		Street:     row[1],
		City:       row[2],
		ZIP:        row[3],
		Outcome:    row[4],
		Rate:       rate,
		ResultCode: models.ResultCode(code),
		StatusCode: status,
		Attempts:   attempts,
		LookedUpAt: lookedUpAt,
	}, nil
}
