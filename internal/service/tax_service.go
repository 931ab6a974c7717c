package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/lookup"
	"github.com/evyataryagoni/wataxrate/internal/metrics"
	"github.com/evyataryagoni/wataxrate/internal/models"
	"github.com/evyataryagoni/wataxrate/internal/store"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidAddress is returned when the query fails validation
	// No request is sent to DOR in that case
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNoMoreRetries is returned once every attempt failed with a retryable error
	// The last attempt's error is wrapped alongside it
	ErrNoMoreRetries = errors.New("no more retries")
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100

	auditWriteTimeout = 2 * time.Second
)

// TaxService handles business logic for tax rate lookups
// This is the service layer - it sits between handlers and the DOR client
//
// Responsibilities:
//   - Validate the address
//   - Call DOR, retrying transient failures
//   - Record metrics, logs, and the audit trail
type TaxService struct {
	lookuper  lookup.Lookuper
	auditLog  store.AuditLog
	policy    RetryPolicy
	validator *validator.Validate
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

// NewTaxService creates a new tax service
//
// Parameters:
//   - lookuper: the DOR client (or a mock)
//   - auditLog: where lookups are recorded (optional, nil discards)
//   - policy: retry policy; MaxAttempts < 1 means 3, a zero AttemptTimeout or Backoff means none
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewTaxService(lookuper lookup.Lookuper, auditLog store.AuditLog, policy RetryPolicy, m *metrics.Metrics, log *logger.Logger) *TaxService {
	if log == nil {
		log = logger.NewDefault()
	}
	if auditLog == nil {
		auditLog = store.NopAuditLog{}
	}
	return &TaxService{
		lookuper:  lookuper,
		auditLog:  auditLog,
		policy:    policy.normalized(),
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("TaxService"),
		now:       time.Now,
	}
}

// LookupRate returns the combined sales tax rate for an address
//
// Flow:
//  1. Validate the address
//  2. Query DOR, retrying network failures, 5xx/429 and result code 9
//  3. Record the outcome in the audit log
func (s *TaxService) LookupRate(ctx context.Context, q models.AddressQuery) (*models.TaxInfo, error) {
	q = models.AddressQuery{
		Street: strings.TrimSpace(q.Street),
		City:   strings.TrimSpace(q.City),
		ZIP:    strings.TrimSpace(q.ZIP),
	}
	log := s.logger.WithAddress(q.Street, q.City, q.ZIP)

	if err := s.validator.Struct(q); err != nil {
		log.Warn().Err(err).Msg("Invalid address")
		s.countError("validation", models.OutcomeInvalid)
		s.record(ctx, q, models.OutcomeInvalid, nil, nil, 0)
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, describeValidation(err))
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if s.metrics != nil {
				s.metrics.TaxLookupRetries.Inc()
			}
			if err := sleepCtx(ctx, s.policy.Backoff); err != nil {
				break
			}
		}

		attempts = attempt
		info, err := s.attempt(ctx, q)
		if err == nil {
			log.Info().
				Float64("rate", info.Rate).
				Str("location_code", info.LocationCode).
				Int("result_code", int(info.ResultCode)).
				Int("attempts", attempts).
				Msg("Tax rate lookup successful")
			if s.metrics != nil {
				s.metrics.TaxLookupsTotal.WithLabelValues(models.OutcomeSuccess).Inc()
			}
			s.record(ctx, q, models.OutcomeSuccess, info, nil, attempts)
			return info, nil
		}

		lastErr = err
		if !lookup.IsRetryable(err) || ctx.Err() != nil {
			return nil, s.fail(ctx, log, q, err, attempts)
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("Retryable DOR failure")
	}

	// The parent context ended while waiting to retry
	if attempts < s.policy.MaxAttempts && lastErr != nil {
		return nil, s.fail(ctx, log, q, lastErr, attempts)
	}

	log.Error().Err(lastErr).Int("attempts", attempts).Msg("Tax rate lookup gave up")
	s.countError("exhausted", "exhausted")
	s.record(ctx, q, outcomeOf(lastErr), nil, lastErr, attempts)
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrNoMoreRetries, attempts, lastErr)
}

// attempt runs one bounded request and observes its latency
func (s *TaxService) attempt(ctx context.Context, q models.AddressQuery) (*models.TaxInfo, error) {
	if s.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.AttemptTimeout)
		defer cancel()
	}

	start := s.now()
	info, err := s.lookuper.Lookup(ctx, q)
	if s.metrics != nil {
		outcome := outcomeOf(err)
		s.metrics.DORRequestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.DORRequestDuration.WithLabelValues(outcome).Observe(s.now().Sub(start).Seconds())
	}
	return info, err
}

// fail logs, counts, and records a lookup that will not be retried
func (s *TaxService) fail(ctx context.Context, log *logger.Logger, q models.AddressQuery, err error, attempts int) error {
	outcome := outcomeOf(err)

	switch outcome {
	case models.OutcomeRejected:
		log.Warn().Err(err).Int("attempts", attempts).Msg("DOR rejected the lookup")
	default:
		log.Error().Err(err).Int("attempts", attempts).Msg("Tax rate lookup failed")
	}

	s.countError(outcome, outcome)
	s.record(ctx, q, outcome, nil, err, attempts)
	return err
}

func (s *TaxService) countError(errorType, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.TaxLookupErrors.WithLabelValues(errorType).Inc()
	s.metrics.TaxLookupsTotal.WithLabelValues(result).Inc()
}

// record appends to the audit log; failures are logged, never returned
func (s *TaxService) record(ctx context.Context, q models.AddressQuery, outcome string, info *models.TaxInfo, err error, attempts int) {
	rec := models.LookupRecord{
		Street:     q.Street,
		City:       q.City,
		ZIP:        q.ZIP,
		Outcome:    outcome,
		Attempts:   attempts,
		LookedUpAt: s.now().UTC(),
	}
	if info != nil {
		rec.Rate = info.Rate
		rec.ResultCode = info.ResultCode
	}
	if le, ok := lookup.AsLookupError(err); ok {
		rec.ResultCode = le.Code
		rec.StatusCode = le.StatusCode
	}

	// Still record lookups whose request was canceled
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if werr := s.auditLog.Record(wctx, rec); werr != nil {
		s.logger.Error().Err(werr).Str("outcome", outcome).Msg("Failed to write audit log")
		if s.metrics != nil {
			s.metrics.AuditLogWritesTotal.WithLabelValues("error").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.AuditLogWritesTotal.WithLabelValues("ok").Inc()
	}
}

// RecentLookups returns the newest audit records
// limit <= 0 means DefaultRecentLimit; values above MaxRecentLimit are capped
func (s *TaxService) RecentLookups(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	records, err := s.auditLog.Recent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read audit log")
		return nil, fmt.Errorf("failed to read recent lookups: %w", err)
	}
	return records, nil
}

// Close cleans up resources
// This will close the underlying audit log (database connections, etc.)
func (s *TaxService) Close() error {
	return s.auditLog.Close()
}

// outcomeOf maps a lookup error to its audit/metrics label
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return models.OutcomeSuccess
	case lookup.IsRemoteRejected(err):
		return models.OutcomeRejected
	case lookup.IsDecode(err):
		return models.OutcomeDecode
	default:
		return models.OutcomeNetwork
	}
}

// describeValidation turns validator errors into "field: rule" pairs
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
