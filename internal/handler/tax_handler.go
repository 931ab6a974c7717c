package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/lookup"
	"github.com/evyataryagoni/wataxrate/internal/models"
	"github.com/evyataryagoni/wataxrate/internal/service"
)

// TaxHandler handles HTTP requests for tax rate lookups
// It deals with HTTP concerns only; retries and validation live in the service
type TaxHandler struct {
	service *service.TaxService
	logger  *logger.Logger
}

// NewTaxHandler creates a new tax handler with the given service
// log may be nil
func NewTaxHandler(service *service.TaxService, log *logger.Logger) *TaxHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &TaxHandler{
		service: service,
		logger:  log.WithComponent("TaxHandler"),
	}
}

// GetRate handles GET /v1/tax-rate?addr=<street>&city=<city>&zip=<zip>
// @Summary      Sales tax rate for a Washington address
// @Description  Looks up the combined state and local sales tax rate from the WA Department of Revenue
// @Tags         Tax Rate
// @Produce      json
// @Param        addr  query     string  true  "Street address"  example(400 Broad St)
// @Param        city  query     string  true  "City"            example(Seattle)
// @Param        zip   query     string  true  "ZIP code"        example(98109)
// @Success      200   {object}  models.TaxInfo
// @Failure      400   {object}  models.ErrorResponse  "Missing or invalid address"
// @Failure      404   {object}  models.ErrorResponse  "DOR could not resolve the address"
// @Failure      429   {object}  models.ErrorResponse  "Rate limit exceeded"
// @Failure      502   {object}  models.ErrorResponse  "DOR rejected the request or answered with garbage"
// @Failure      503   {object}  models.ErrorResponse  "DOR unreachable or retries exhausted"
// @Router       /v1/tax-rate [get]
func (h *TaxHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := models.AddressQuery{
		Street: query.Get("addr"),
		City:   query.Get("city"),
		ZIP:    query.Get("zip"),
	}

	if missing := missingParams(q); len(missing) > 0 {
		h.respondError(w, http.StatusBadRequest, "Missing query parameter(s): "+strings.Join(missing, ", "))
		return
	}

	info, err := h.service.LookupRate(r.Context(), q)
	if err != nil {
		status, message := statusForError(err)
		h.respondError(w, status, message)
		return
	}

	h.respondJSON(w, http.StatusOK, info)
}

// RecentLookups handles GET /v1/lookups?limit=<n>
// @Summary      Recent tax rate lookups
// @Description  Returns the newest entries of the lookup audit log
// @Tags         Tax Rate
// @Produce      json
// @Param        limit  query     int  false  "Number of records (default 20, max 100)"
// @Success      200    {object}  models.RecentLookupsResponse
// @Failure      400    {object}  models.ErrorResponse  "Invalid limit"
// @Failure      500    {object}  models.ErrorResponse  "Audit log unavailable"
// @Router       /v1/lookups [get]
func (h *TaxHandler) RecentLookups(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(w, http.StatusBadRequest, "'limit' must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.service.RecentLookups(r.Context(), limit)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, models.RecentLookupsResponse{
		Count:   len(records),
		Lookups: records,
	})
}

func missingParams(q models.AddressQuery) []string {
	var missing []string
	if strings.TrimSpace(q.Street) == "" {
		missing = append(missing, "addr")
	}
	if strings.TrimSpace(q.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(q.ZIP) == "" {
		missing = append(missing, "zip")
	}
	return missing
}

// statusForError maps service and lookup errors to an HTTP status and client message
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidAddress):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, service.ErrNoMoreRetries):
		return http.StatusServiceUnavailable, "DOR tax rate service unavailable, retries exhausted"

	case lookup.IsNetwork(err):
		return http.StatusServiceUnavailable, "DOR tax rate service unreachable"

	case lookup.IsRemoteRejected(err):
		le, _ := lookup.AsLookupError(err)
		if le.StatusCode == 0 && (le.Code == models.CodeNoAddressNoZip || le.Code == models.CodeInvalidLatLong) {
			return http.StatusNotFound, "Address not found: " + le.Code.String()
		}
		return http.StatusBadGateway, "DOR tax rate service rejected the request"

	case lookup.IsDecode(err):
		return http.StatusBadGateway, "DOR tax rate service returned a malformed response"

	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondJSON writes a JSON response with the given status code
// The body is encoded before the status is sent, so an encoding failure becomes a 500
func (h *TaxHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Error().Err(err).Int("status", statusCode).Msg("Failed to encode response")
		buf.Reset()
		statusCode = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(models.ErrorResponse{Error: "Internal server error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write response")
	}
}

// respondError writes an error response with consistent formatting
func (h *TaxHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
