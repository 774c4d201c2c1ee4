package api

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"
)

// Request-failure codes used by the dispatch endpoints. Negative so they
// can never collide with the platform's device result codes.
const (
	failCodeMissingApplication = -1
	failCodeInvalidPayload     = -2
	failCodeValidation         = -3
	failCodeNoEntries          = -4
	failCodeInternal           = -5
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeFailure writes the request-failure shape the dispatch endpoints
// use: a timestamped body with a negative code, always HTTP 400. Device
// hardware bridges parse this shape, so it stays stable.
func writeFailure(w http.ResponseWriter, ts int64, code int, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"timestamp": ts,
		"code":      code,
		"message":   message,
	})
}
