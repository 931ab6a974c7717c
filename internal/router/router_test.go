package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evyataryagoni/wataxrate/internal/handler"
	"github.com/evyataryagoni/wataxrate/internal/limiter"
	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/lookup"
	"github.com/evyataryagoni/wataxrate/internal/metrics"
	"github.com/evyataryagoni/wataxrate/internal/models"
	"github.com/evyataryagoni/wataxrate/internal/service"
	"github.com/evyataryagoni/wataxrate/internal/store"
)

func newTestServer(t *testing.T, lim limiter.Limiter) *httptest.Server {
	t.Helper()

	svc := service.NewTaxService(
		lookup.NewMockLookuper(),
		store.NewMockAuditLog(),
		service.RetryPolicy{MaxAttempts: 1, AttemptTimeout: time.Second},
		nil,
		logger.Nop(),
	)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	r := SetupRouter(handler.NewTaxHandler(svc, logger.Nop()), lim, m, logger.Nop())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// TestRouter_Routes tests that every route is mounted
func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(t, limiter.NewMockLimiter(true))

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/v1/tax-rate?addr=400+Broad+St&city=Seattle&zip=98109", http.StatusOK},
		{"/v1/tax-rate?addr=1+Nowhere+Rd&city=Nowhere&zip=00000", http.StatusNotFound},
		{"/v1/tax-rate", http.StatusBadRequest},
		{"/v1/lookups", http.StatusOK},
		{"/swagger/doc.json", http.StatusOK},
		{"/v1/find-country", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, body)
			}
		})
	}
}

// TestRouter_TaxRateBody tests a full lookup round trip
func TestRouter_TaxRateBody(t *testing.T) {
	srv := newTestServer(t, limiter.NewMockLimiter(true))

	resp, body := get(t, srv.URL+"/v1/tax-rate?addr=400+Broad+St&city=Seattle&zip=98109")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON, got %s", ct)
	}

	var info models.TaxInfo
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if info.Rate != 0.101 || info.LocationCode != "1726" {
		t.Errorf("unexpected body %+v", info)
	}
}

// TestRouter_SwaggerDocDescribesTaxRate tests the registered API docs
func TestRouter_SwaggerDocDescribesTaxRate(t *testing.T) {
	srv := newTestServer(t, limiter.NewMockLimiter(true))

	_, body := get(t, srv.URL+"/swagger/doc.json")
	if !strings.Contains(body, "/v1/tax-rate") {
		t.Errorf("expected swagger doc to describe /v1/tax-rate, got %.200s", body)
	}
}

// TestRouter_RateLimited tests that the limiter guards the API
func TestRouter_RateLimited(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(false)
	srv := newTestServer(t, mockLimiter)

	resp, _ := get(t, srv.URL+"/v1/tax-rate?addr=400+Broad+St&city=Seattle&zip=98109")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", resp.StatusCode)
	}
	if calls := mockLimiter.Calls(); len(calls) != 1 || calls[0] != "127.0.0.1" {
		t.Errorf("expected limiter keyed by client IP, got %v", calls)
	}
}
