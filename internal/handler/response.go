// Package handler implements the driving HTTP surface of the scheduling
// core: a chi router wrapping every response in the {success, data | error}
// envelope and translating core results (never an error for infeasibility)
// into the closed set of wire error codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error codes are a closed set.
const (
	CodeMissingDates         = "MISSING_DATES"
	CodeInvalidDateRange     = "INVALID_DATE_RANGE"
	CodeCareReceiverNotFound = "CARE_RECEIVER_NOT_FOUND"
	CodeCareGiverNotFound    = "CARE_GIVER_NOT_FOUND"
	CodeMissingFields        = "MISSING_FIELDS"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeDuplicateError       = "DUPLICATE_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// respondData writes {success: true, data: ...} with the given status.
func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data}); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

// respondError writes {success: false, error: {message, code}} with the
// given status. Persistence failures should surface as a generic 500
// message; callers should pass a generic message for those rather than the
// raw error.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: errorBody{Message: message, Code: code}}); err != nil {
		log.Error().Err(err).Msg("failed to encode error response body")
	}
}

// respondInternal logs the underlying error and writes a generic 500, never
// leaking internals to the client.
func respondInternal(w http.ResponseWriter, context string, err error) {
	log.Error().Err(err).Str("context", context).Msg("persistence or internal failure")
	respondError(w, http.StatusInternalServerError, CodeInternal, "an internal error occurred")
}
