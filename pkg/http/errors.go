package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a standard API error response. ErrorType
// names the offending input field when a credential or validation
// failure can be attributed to one, so clients can highlight the exact
// form field instead of showing a generic banner.
type ErrorResponse struct {
	Error     string `json:"error"`                // Machine-readable error code
	Message   string `json:"message"`              // Human-readable message
	ErrorType string `json:"error_type,omitempty"` // Offending field, when attributable
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteFieldError(w, statusCode, errorCode, message, "")
}

// WriteFieldError writes a JSON error response attributed to a field
func WriteFieldError(w http.ResponseWriter, statusCode int, errorCode, message, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:     errorCode,
		Message:   message,
		ErrorType: field,
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}
