package router

import (
	"net/http"

	_ "github.com/evyataryagoni/wataxrate/docs" // Swagger docs
	"github.com/evyataryagoni/wataxrate/internal/handler"
	"github.com/evyataryagoni/wataxrate/internal/limiter"
	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/metrics"
	custommiddleware "github.com/evyataryagoni/wataxrate/internal/middleware"
	v1 "github.com/evyataryagoni/wataxrate/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SetupRouter creates the chi router with all middleware and routes
//
// Parameters:
//   - taxHandler: the tax rate handler
//   - rateLimiter: the rate limiter (memory or Redis)
//   - m: metrics collector (optional, can be nil)
//   - log: structured logger
func SetupRouter(taxHandler *handler.TaxHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters: RequestID first so every later layer can log it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.RateLimitMiddleware(rateLimiter, m))
	r.Use(custommiddleware.MetricsMiddleware(m))

	r.Mount("/v1", v1.SetupRoutes(taxHandler))

	// Unversioned operational routes
	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Access at: http://localhost:3000/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// healthCheckHandler reports that the process is serving
// It does not probe DOR; an upstream outage is reported per request as 503
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
