package store

import (
	"context"
	"fmt"
	"strings"
)

// AuditLogConfig holds configuration for creating an audit log
type AuditLogConfig struct {
	Type    string // "none", "csv", "mysql", or "redis"
	CSVPath string

	MySQLDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewAuditLog creates an audit log based on the configuration (factory pattern)
func NewAuditLog(ctx context.Context, cfg AuditLogConfig) (AuditLog, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "none", "":
		return NopAuditLog{}, nil

	case "csv":
		auditLog, err := NewCSVAuditLog(cfg.CSVPath)
		if err != nil {
			return nil, err
		}
		return auditLog, nil

	case "mysql":
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("MYSQL_DSN is required for the mysql audit log")
		}
		auditLog, err := NewMySQLAuditLog(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return auditLog, nil

	case "redis":
		auditLog, err := NewRedisAuditLog(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return auditLog, nil

	default:
		return nil, fmt.Errorf("%w: %s (supported: 'none', 'csv', 'mysql', 'redis')", ErrUnknownAuditLog, cfg.Type)
	}
}
