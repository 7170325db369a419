package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Adapter errors (external services).
const (
	// ErrCodeAdapterFailure indicates a network or provider failure that may
	// succeed on retry. Escalated only after the retry budget is exhausted.
	ErrCodeAdapterFailure ErrorCode = "ADAPTER_FAILURE"
	// ErrCodeContentEmpty indicates the provider answered but the response
	// was semantically unusable (e.g. a completion with no choices).
	ErrCodeContentEmpty ErrorCode = "CONTENT_EMPTY"
	// ErrCodeTranscriptionFailed indicates a transcription job ended in a
	// terminal error state or polling was exhausted.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeTimeout indicates an external call timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Recording state errors (usage errors, never retried).
const (
	// ErrCodeAlreadyRecording indicates a capture is already active.
	ErrCodeAlreadyRecording ErrorCode = "ALREADY_RECORDING"
	// ErrCodeNotRecording indicates no capture is active.
	ErrCodeNotRecording ErrorCode = "NOT_RECORDING"
)

// Session errors.
const (
	// ErrCodeSessionNotFound indicates the session ID is unknown.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// ErrCodeInvalidState indicates the operation is not allowed in the
	// session's current state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	// ErrCodeSessionFailed indicates the session reached the terminal Failed
	// state after an unrecoverable adapter error.
	ErrCodeSessionFailed ErrorCode = "SESSION_FAILED"
)

// Validation errors.
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors.
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeAdapterFailure: true,
	ErrCodeTimeout:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
