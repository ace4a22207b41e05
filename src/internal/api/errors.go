package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
)

// ErrorCode represents standard API error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates malformed or invalid request data.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeForbidden indicates the client address is not allowed.
	ErrCodeForbidden ErrorCode = "forbidden"

	// ErrCodeInternalError indicates an internal server error.
	ErrCodeInternalError ErrorCode = "internal_error"

	// ErrCodeServiceUnavailable indicates the ZeroTier service is disabled or unreachable.
	ErrCodeServiceUnavailable ErrorCode = "service_unavailable"
)

// APIError represents a structured API error response.
type APIError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code ErrorCode, message string) APIError {
	return APIError{Code: code, Message: message}
}

// WithDetails adds details to an APIError.
func (e APIError) WithDetails(details map[string]any) APIError {
	e.Details = details
	return e
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err}); encErr != nil {
		log.Warnf("Failed to encode error response: %v", encErr)
	}
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, NewAPIError(ErrCodeInvalidRequest, message))
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, resource+" not found"))
}

// WriteForbidden writes a 403 Forbidden error.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// WriteServiceUnavailable writes a 503 Service Unavailable error.
func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

// WriteDomainError maps an ifconf error onto an HTTP status.
func WriteDomainError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		WriteInternalError(w, err.Error())
		return
	}

	apiErr := NewAPIError(ErrCodeInternalError, domainErr.Message).WithDetails(map[string]any{"code": domainErr.Code})
	switch domainErr.Code {
	case apperrors.ErrCodeNoVariant:
		WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, domainErr.Message))
	case apperrors.ErrCodeZeroTier:
		apiErr.Code = ErrCodeServiceUnavailable
		WriteError(w, http.StatusServiceUnavailable, apiErr)
	default:
		WriteError(w, http.StatusInternalServerError, apiErr)
	}
}
