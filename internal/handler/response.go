package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError so the API speaks
// one error shape:
//
//	{"error": "not_found", "message": "note not found with id abc123"}
//
// The execute endpoints are the exception: their error bodies are fixed by
// the client contract and are written by ExecuteHandler itself.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/codesense/internal/apperror"
)

// ErrorResponse is the standard error format returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Set for validation errors
}

// MessageResponse acknowledges an action that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS: headers, then status, then body. Anything set on
// the header map after the first Write is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// decodeJSON reads a single JSON value from the request body into v.
// The body size is capped by middleware.BodyLimit.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// statusByCode maps apperror codes to HTTP statuses.
var statusByCode = map[string]int{
	apperror.CodeValidation:   http.StatusBadRequest,
	apperror.CodeUnauthorized: http.StatusUnauthorized,
	apperror.CodeForbidden:    http.StatusForbidden,
	apperror.CodeNotFound:     http.StatusNotFound,
	apperror.CodeConflict:     http.StatusConflict,
}

// writeError maps a domain error to an HTTP status and sends it.
//
// ERROR MAPPING:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	anything else   → 500, with no internal detail exposed
func writeError(w http.ResponseWriter, err error) {
	code := apperror.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		// NEVER expose internal error details: they may carry SQL or file paths.
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   apperror.CodeInternal,
			Message: "An internal error occurred",
		})
		return
	}

	var appErr *apperror.AppError
	errors.As(err, &appErr)
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// badRequest answers a body that could not be decoded.
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}
