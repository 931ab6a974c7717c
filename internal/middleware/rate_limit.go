package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/limiter"
	"github.com/evyataryagoni/wataxrate/internal/metrics"
	"github.com/evyataryagoni/wataxrate/internal/models"
)

// RateLimitMessage is the error body sent with 429 responses
const RateLimitMessage = "Rate limit exceeded. Please try again later."

// RateLimitMiddleware enforces rate limiting per client IP (returns 429 when exceeded)
// m may be nil
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	retryAfter := retryAfterSeconds(lim.Window())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(r.Context(), ClientIP(r)) {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfter)
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: RateLimitMessage})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds renders window as whole seconds, rounded up, at least 1
func retryAfterSeconds(window time.Duration) string {
	secs := int(math.Ceil(window.Seconds()))
	return strconv.Itoa(max(secs, 1))
}

// ClientIP picks the key a request is limited by
// Priority: X-Real-IP > first X-Forwarded-For entry > RemoteAddr without port
func ClientIP(r *http.Request) string {
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
