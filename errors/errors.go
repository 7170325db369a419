// Package errors provides unified error handling for interviewd.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection so callers can distinguish a failed interview from
// a completed one and a usage error from a provider outage.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// AdapterFailure creates an AppError for a failed call to an external service.
func AdapterFailure(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeAdapterFailure, Message: fmt.Sprintf("The %s service is unavailable. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// ContentEmpty creates an AppError for a well-formed but unusable provider
// response. Not retryable automatically; the caller decides whether to ask again.
func ContentEmpty(service string) *AppError {
	return &AppError{
		Code: ErrCodeContentEmpty, Message: fmt.Sprintf("The %s service returned no usable content.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"service": service},
	}
}

// TranscriptionFailed creates an AppError for a transcription job that ended
// in a terminal error state.
func TranscriptionFailed(reason string) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: "The answer could not be transcribed.",
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"reason": reason},
	}
}

// Timeout creates an AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// AlreadyRecording creates an AppError for a second concurrent capture attempt.
func AlreadyRecording() *AppError {
	return &AppError{
		Code: ErrCodeAlreadyRecording, Message: "A recording is already in progress.",
		HTTPStatus: http.StatusConflict, Retryable: false,
	}
}

// NotRecording creates an AppError for stopping a capture when none is active.
func NotRecording() *AppError {
	return &AppError{
		Code: ErrCodeNotRecording, Message: "No recording is in progress.",
		HTTPStatus: http.StatusConflict, Retryable: false,
	}
}

// SessionNotFound creates an AppError for an unknown session ID.
func SessionNotFound(id string) *AppError {
	return &AppError{
		Code: ErrCodeSessionNotFound, Message: "The requested interview session was not found.",
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"session_id": id},
	}
}

// InvalidState creates an AppError for an operation not allowed in the
// session's current state.
func InvalidState(state, operation string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidState, Message: fmt.Sprintf("Operation %s is not allowed while the session is %s.", operation, state),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"state": state, "operation": operation},
	}
}

// SessionFailed creates an AppError for a session in the terminal Failed state.
func SessionFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeSessionFailed, Message: "The interview session failed and cannot be scored.",
		HTTPStatus: http.StatusBadGateway, Retryable: false, Cause: cause,
	}
}

// InvalidInput creates an AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// MissingField creates an AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates an AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
