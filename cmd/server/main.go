package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/config"
	"github.com/evyataryagoni/wataxrate/internal/handler"
	"github.com/evyataryagoni/wataxrate/internal/limiter"
	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/lookup"
	"github.com/evyataryagoni/wataxrate/internal/metrics"
	"github.com/evyataryagoni/wataxrate/internal/router"
	"github.com/evyataryagoni/wataxrate/internal/service"
	"github.com/evyataryagoni/wataxrate/internal/store"
)

const shutdownTimeout = 10 * time.Second

// @title           WA Sales Tax Rate API
// @version         1.0
// @description     Looks up Washington State sales tax rates by street address via the Department of Revenue.

// @host      localhost:3000
// @BasePath  /
func main() {
	appConfig := config.Load()
	appLogger := setupLogger(appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLog := setupAuditLog(ctx, appConfig, appLogger)
	rateLimiter := setupRateLimiter(ctx, appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := metrics.New()
	dorClient := setupLookupClient(appConfig, appLogger)

	taxService := service.NewTaxService(dorClient, auditLog, service.RetryPolicy{
		MaxAttempts:    appConfig.LookupMaxAttempts,
		AttemptTimeout: appConfig.LookupAttemptTimeout,
		Backoff:        appConfig.LookupRetryBackoff,
	}, metricsCollector, appLogger)
	defer taxService.Close()

	taxHandler := handler.NewTaxHandler(taxService, appLogger)
	appRouter := router.SetupRouter(taxHandler, rateLimiter, metricsCollector, appLogger)

	if err := runServer(ctx, appConfig, appRouter, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting WA tax rate server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("dor_base_url", appConfig.DORBaseURL).
		Int("lookup_max_attempts", appConfig.LookupMaxAttempts).
		Dur("lookup_attempt_timeout", appConfig.LookupAttemptTimeout).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Str("audit_log_type", appConfig.AuditLogType).
		Msg("Configuration loaded")

	return appLogger
}

// setupAuditLog opens the configured lookup history backend
func setupAuditLog(ctx context.Context, appConfig *config.Config, log *logger.Logger) store.AuditLog {
	auditLog, err := store.NewAuditLog(ctx, store.AuditLogConfig{
		Type:          appConfig.AuditLogType,
		CSVPath:       appConfig.AuditLogPath,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.AuditLogType).Msg("Failed to initialize audit log")
	}

	log.Info().Str("type", appConfig.AuditLogType).Msg("Audit log initialized")
	return auditLog
}

// setupRateLimiter initializes the rate limiter
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(ctx context.Context, appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	window := time.Duration(appConfig.RateLimitWindow) * time.Second

	rateLimiter, err := limiter.NewLimiter(ctx, limiter.LimiterConfig{
		Type:          appConfig.RateLimitType,
		Requests:      appConfig.RateLimit,
		Window:        window,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("limit", appConfig.RateLimit).
		Dur("window", window).
		Msg("Rate limiter initialized")
	return rateLimiter
}

// setupLookupClient builds the DOR client
func setupLookupClient(appConfig *config.Config, log *logger.Logger) *lookup.Client {
	client, err := lookup.New(
		lookup.WithBaseURL(appConfig.DORBaseURL),
		lookup.WithHTTPClient(&http.Client{
			Transport: lookup.DefaultTransport(),
			Timeout:   appConfig.DORTimeout,
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize DOR client")
	}
	return client
}

// runServer serves until ctx is canceled, then drains in-flight requests
func runServer(ctx context.Context, appConfig *config.Config, appRouter http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("api_endpoint", "http://localhost:"+appConfig.Port+"/v1/tax-rate?addr=<street>&city=<city>&zip=<zip>").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Str("swagger", "http://localhost:"+appConfig.Port+"/swagger/index.html").
			Msg("Server is running")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}
