// internal/utils/errors_test.go
package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStructuredErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransientError(ErrCodeNetworkUnreachable, "download failed", cause)

	if !errors.Is(err, cause) {
		t.Error("structured error must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error string must include the cause: %s", err.Error())
	}

	wrapped := fmt.Errorf("asset img_001: %w", err)
	if !IsRetryable(wrapped) {
		t.Error("retryability must survive wrapping")
	}
	if CodeOf(wrapped) != ErrCodeNetworkUnreachable {
		t.Errorf("code must survive wrapping, got %v", CodeOf(wrapped))
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(NewPermanentError(ErrCodeInvalidURL, "bad url", nil)) {
		t.Error("permanent errors must not be retryable")
	}
	if !IsRetryable(NewTransientError(ErrCodeNetworkTimeout, "timed out", nil)) {
		t.Error("transient errors must be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors must not be retryable")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewPermanentError(ErrCodePageUnavailable, "HTTP 404", nil)
	target := NewError(ErrCodePageUnavailable, "")

	if !errors.Is(err, target) {
		t.Error("structured errors with the same code must match")
	}
	if errors.Is(err, NewError(ErrCodeInvalidURL, "")) {
		t.Error("different codes must not match")
	}
}

func TestWithContext(t *testing.T) {
	err := NewError(ErrCodeDownloadFailed, "failed").
		WithContext("url", "https://example.com/a.jpg").
		WithContext("attempt", 2)

	if err.Context["url"] != "https://example.com/a.jpg" || err.Context["attempt"] != 2 {
		t.Errorf("context not recorded: %+v", err.Context)
	}
}
