package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAdapterFailureIsRetryable(t *testing.T) {
	err := AdapterFailure("completion", stderrors.New("connection refused"))

	if !err.Retryable {
		t.Error("adapter failures must be retryable")
	}
	if err.Code != ErrCodeAdapterFailure {
		t.Errorf("expected ADAPTER_FAILURE, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
	if err.Details["service"] != "completion" {
		t.Errorf("expected service detail, got %v", err.Details)
	}
}

func TestContentEmptyNotRetryable(t *testing.T) {
	err := ContentEmpty("completion")
	if err.Retryable {
		t.Error("empty content must not be auto-retried")
	}
	if err.Code != ErrCodeContentEmpty {
		t.Errorf("expected CONTENT_EMPTY, got %s", err.Code)
	}
}

func TestRecordingStateErrorsFailFast(t *testing.T) {
	for _, err := range []*AppError{AlreadyRecording(), NotRecording()} {
		if err.Retryable {
			t.Errorf("%s must never be retryable", err.Code)
		}
		if err.HTTPStatus != http.StatusConflict {
			t.Errorf("%s: expected 409, got %d", err.Code, err.HTTPStatus)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: i/o timeout")
	err := AdapterFailure("transcription", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)
	want := fmt.Sprintf("%s: %s (cause: %v)", err.Code, err.Message, cause)
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("submit answer: %w", TranscriptionFailed("job errored"))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed through wrapping")
	}
	if appErr.Code != ErrCodeTranscriptionFailed {
		t.Errorf("expected TRANSCRIPTION_FAILED, got %s", appErr.Code)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain errors must not convert")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", SessionNotFound("abc"))
	if !HasCode(err, ErrCodeSessionNotFound) {
		t.Error("expected HasCode to match through wrapping")
	}
	if HasCode(err, ErrCodeInternal) {
		t.Error("HasCode must not match a different code")
	}
}

func TestToResponse(t *testing.T) {
	err := InvalidState("Completed", "submitAnswer")
	resp := err.ToResponse()

	if resp.Error.Code != ErrCodeInvalidState {
		t.Errorf("expected INVALID_STATE, got %s", resp.Error.Code)
	}
	if resp.Error.Details["state"] != "Completed" {
		t.Errorf("expected state detail, got %v", resp.Error.Details)
	}
}

func TestWithDetail(t *testing.T) {
	err := Timeout("poll").WithDetail("attempts", 120)
	if err.Details["attempts"] != 120 {
		t.Errorf("expected attempts detail, got %v", err.Details)
	}
}
