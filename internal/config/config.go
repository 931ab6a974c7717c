package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging
	LogLevel  string
	LogPretty bool

	// DOR lookup service
	DORBaseURL string        // address rates endpoint
	DORTimeout time.Duration // overall HTTP client timeout, 0 disables it

	// Retry policy applied by the service layer
	LookupMaxAttempts    int
	LookupAttemptTimeout time.Duration
	LookupRetryBackoff   time.Duration

	// Rate limiting
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // number of requests allowed
	RateLimitWindow int    // time window in seconds (default: 1)

	// Audit log configuration
	AuditLogType string // "none", "csv", "mysql", or "redis"
	AuditLogPath string // path to CSV file

	// MySQL configuration
	MySQLDSN string // Data Source Name

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return FromEnv()
}

// LoadDotEnv loads .env from the working directory when one exists
// Variables already set in the environment win over the file
func LoadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv builds a Config from the current environment only
func FromEnv() *Config {
	return &Config{
		Port: getEnv("PORT", "3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		DORBaseURL: getEnv("DOR_BASE_URL", "https://webgis.dor.wa.gov/webapi/AddressRates.aspx"),
		DORTimeout: getEnvAsMillis("DOR_TIMEOUT_MS", 10*time.Second),

		// Three attempts of 2.5s each, matching the DOR client guidance
		LookupMaxAttempts:    getEnvAsInt("LOOKUP_MAX_ATTEMPTS", 3),
		LookupAttemptTimeout: getEnvAsMillis("LOOKUP_ATTEMPT_TIMEOUT_MS", 2500*time.Millisecond),
		LookupRetryBackoff:   getEnvAsMillis("LOOKUP_RETRY_BACKOFF_MS", 250*time.Millisecond),

		// Rate limiting (default: memory, 10 requests per 1 second)
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		AuditLogType: getEnv("AUDIT_LOG_TYPE", "none"),
		AuditLogPath: getEnv("AUDIT_LOG_PATH", "./data/tax_lookups.csv"),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
// Accepts anything strconv.ParseBool does
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsMillis reads an environment variable holding milliseconds
// Negative values fall back to the default
func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	ms := getEnvAsInt(key, -1)
	if ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
