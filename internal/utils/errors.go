// Package utils provides logging, error handling, and naming utilities
// shared across the media extraction pipeline.
package utils

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode categorizes failures for logging and retry classification
type ErrorCode string

const (
	// Network related errors
	ErrCodeNetworkTimeout     ErrorCode = "NETWORK_TIMEOUT"
	ErrCodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"
	ErrCodeHTTPStatus         ErrorCode = "HTTP_STATUS"

	// Extraction related errors
	ErrCodeParsingError    ErrorCode = "PARSING_ERROR"
	ErrCodeInvalidURL      ErrorCode = "INVALID_URL"
	ErrCodePageUnavailable ErrorCode = "PAGE_UNAVAILABLE"

	// Download related errors
	ErrCodeDownloadFailed    ErrorCode = "DOWNLOAD_FAILED"
	ErrCodeUnsupportedScheme ErrorCode = "UNSUPPORTED_SCHEME"
	ErrCodeEmptyBody         ErrorCode = "EMPTY_BODY"

	// Configuration and output errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeOutputFailed  ErrorCode = "OUTPUT_FAILED"
)

// StructuredError carries an error code and a retryability flag alongside
// the wrapped cause. The downloader's transient/permanent split is expressed
// through Retryable.
type StructuredError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is matches structured errors by code
func (e *StructuredError) Is(target error) bool {
	if se, ok := target.(*StructuredError); ok {
		return e.Code == se.Code
	}
	return false
}

// WithContext adds contextual information to the error
func (e *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a non-retryable structured error
func NewError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewTransientError creates a retryable structured error wrapping cause
func NewTransientError(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Retryable: true,
	}
}

// NewPermanentError creates a non-retryable structured error wrapping cause
func NewPermanentError(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// IsRetryable reports whether err, or any error it wraps, is a retryable
// structured error.
func IsRetryable(err error) bool {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf returns the error code of err, or ErrCodeDownloadFailed when err is
// not structured.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeDownloadFailed
}
