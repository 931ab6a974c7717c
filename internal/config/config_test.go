package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFromEnv_Defaults tests the values used when nothing is set
func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_PRETTY", "DOR_BASE_URL", "DOR_TIMEOUT_MS",
		"LOOKUP_MAX_ATTEMPTS", "LOOKUP_ATTEMPT_TIMEOUT_MS", "LOOKUP_RETRY_BACKOFF_MS",
		"RATE_LIMITER_TYPE", "RATE_LIMIT", "RATE_LIMIT_WINDOW",
		"AUDIT_LOG_TYPE", "AUDIT_LOG_PATH", "MYSQL_DSN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.DORBaseURL != "https://webgis.dor.wa.gov/webapi/AddressRates.aspx" {
		t.Errorf("unexpected DOR base URL %s", cfg.DORBaseURL)
	}
	if cfg.LookupMaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.LookupMaxAttempts)
	}
	if cfg.LookupAttemptTimeout != 2500*time.Millisecond {
		t.Errorf("expected 2.5s attempt timeout, got %v", cfg.LookupAttemptTimeout)
	}
	if cfg.AuditLogType != "none" {
		t.Errorf("expected audit log type none, got %s", cfg.AuditLogType)
	}
	if !cfg.LogPretty {
		t.Error("expected pretty logging by default")
	}
}

// TestFromEnv_Overrides tests parsing of set variables
func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("DOR_TIMEOUT_MS", "0")
	t.Setenv("LOOKUP_MAX_ATTEMPTS", "5")
	t.Setenv("LOOKUP_RETRY_BACKOFF_MS", "10")
	t.Setenv("AUDIT_LOG_TYPE", "mysql")
	t.Setenv("REDIS_DB", "2")

	cfg := FromEnv()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.LogPretty {
		t.Error("expected LOG_PRETTY=false to disable pretty logging")
	}
	if cfg.DORTimeout != 0 {
		t.Errorf("expected DOR timeout disabled, got %v", cfg.DORTimeout)
	}
	if cfg.LookupMaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.LookupMaxAttempts)
	}
	if cfg.LookupRetryBackoff != 10*time.Millisecond {
		t.Errorf("expected 10ms backoff, got %v", cfg.LookupRetryBackoff)
	}
	if cfg.AuditLogType != "mysql" {
		t.Errorf("expected mysql audit log, got %s", cfg.AuditLogType)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("expected redis db 2, got %d", cfg.RedisDB)
	}
}

// TestGetEnvHelpers_InvalidValues tests fallback on unparsable values
func TestGetEnvHelpers_InvalidValues(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_MS", "-5")

	if got := getEnvAsInt("TEST_INT", 7); got != 7 {
		t.Errorf("expected default 7, got %d", got)
	}
	if got := getEnvAsBool("TEST_BOOL", true); !got {
		t.Error("expected default true")
	}
	if got := getEnvAsMillis("TEST_MS", time.Second); got != time.Second {
		t.Errorf("expected default 1s, got %v", got)
	}
}

// TestLoadDotEnv tests that .env fills unset variables without overriding set ones
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := "DOR_TIMEOUT_MS=750\nAUDIT_LOG_TYPE=csv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	chdir(t, dir)

	// Registered so the cleanup unsets whatever .env adds
	t.Setenv("DOR_TIMEOUT_MS", "")
	os.Unsetenv("DOR_TIMEOUT_MS")
	t.Setenv("AUDIT_LOG_TYPE", "mysql")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	cfg := FromEnv()
	if cfg.DORTimeout != 750*time.Millisecond {
		t.Errorf("expected DORTimeout 750ms from .env, got %v", cfg.DORTimeout)
	}
	if cfg.AuditLogType != "mysql" {
		t.Errorf("expected environment to win over .env, got %s", cfg.AuditLogType)
	}
}

// TestLoadDotEnv_MissingFile tests that no .env is not an error
func TestLoadDotEnv_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	if err := LoadDotEnv(); err != nil {
		t.Errorf("expected no error without .env, got %v", err)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
