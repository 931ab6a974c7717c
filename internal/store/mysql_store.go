package store

import (
	"context"
	"fmt"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaxLookupModel is the GORM model for the tax_lookups table
type TaxLookupModel struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Street     string    `gorm:"column:street;size:256"`
	City       string    `gorm:"column:city;size:128"`
	ZIP        string    `gorm:"column:zip;size:10"`
	Outcome    string    `gorm:"column:outcome;size:16;index"`
	Rate       float64   `gorm:"column:rate"`
	ResultCode int       `gorm:"column:result_code"`
	StatusCode int       `gorm:"column:status_code"`
	Attempts   int       `gorm:"column:attempts"`
	LookedUpAt time.Time `gorm:"column:looked_up_at;index"`
}

// TableName overrides GORM's pluralized default
func (TaxLookupModel) TableName() string {
	return "tax_lookups"
}

// MySQLAuditLog implements AuditLog using MySQL with GORM
type MySQLAuditLog struct {
	db *gorm.DB
}

// NewMySQLAuditLog connects to MySQL and makes sure the table exists
//
// DSN format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLAuditLog(dsn string) (*MySQLAuditLog, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	if err := db.AutoMigrate(&TaxLookupModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tax_lookups table: %w", err)
	}

	return &MySQLAuditLog{db: db}, nil
}

// Record inserts one row
func (s *MySQLAuditLog) Record(ctx context.Context, rec models.LookupRecord) error {
	row := TaxLookupModel{
		Street:     rec.Street,
		City:       rec.City,
		ZIP:        rec.ZIP,
		Outcome:    rec.Outcome,
		Rate:       rec.Rate,
		ResultCode: int(rec.ResultCode),
		StatusCode: rec.StatusCode,
		Attempts:   rec.Attempts,
		LookedUpAt: rec.LookedUpAt,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert tax lookup: %w", err)
	}
	return nil
}

// Recent returns the newest rows by insertion order
func (s *MySQLAuditLog) Recent(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	if limit <= 0 {
		return []models.LookupRecord{}, nil
	}

	var rows []TaxLookupModel
	// SELECT * FROM tax_lookups ORDER BY id DESC LIMIT ?
	result := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	records := make([]models.LookupRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.LookupRecord{
			Street:     row.Street,
			City:       row.City,
			ZIP:        row.ZIP,
			Outcome:    row.Outcome,
			Rate:       row.Rate,
			ResultCode: models.ResultCode(row.ResultCode),
			StatusCode: row.StatusCode,
			Attempts:   row.Attempts,
			LookedUpAt: row.LookedUpAt,
		})
	}
	return records, nil
}

// Close closes the database connection
func (s *MySQLAuditLog) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
