package stt

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors for STT services.
var (
	// ErrEmptyAudio is returned when audio data is empty.
	ErrEmptyAudio = errors.New("audio data is empty")

	// ErrRateLimited is returned when the provider rate limits requests.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrInvalidFormat is returned when the audio format is not supported.
	ErrInvalidFormat = errors.New("unsupported audio format")

	// ErrServiceUnavailable is returned when the backend model or service
	// cannot be reached or loaded.
	ErrServiceUnavailable = errors.New("STT service unavailable")

	// ErrStreamingNotSupported is returned by TranscribeStream on adapters
	// without a streaming implementation.
	ErrStreamingNotSupported = errors.New("streaming transcription not supported")
)

// TranscriptionError represents a failure reported by a reachable backend.
type TranscriptionError struct {
	// Provider is the STT provider name.
	Provider string

	// Code is the provider-specific error code.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates whether the request can be retried.
	Retryable bool
}

// NewTranscriptionError creates a new TranscriptionError.
func NewTranscriptionError(provider, code, message string, cause error, retryable bool) *TranscriptionError {
	return &TranscriptionError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// Error implements the error interface.
func (e *TranscriptionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s transcription error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s transcription error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is.
func (e *TranscriptionError) Is(target error) bool {
	if e.Cause != nil && errors.Is(e.Cause, target) {
		return true
	}
	t, ok := target.(*TranscriptionError)
	if !ok {
		return false
	}
	return e.Provider == t.Provider && e.Code == t.Code
}

// UnknownProviderError is returned when an STT provider name is not registered.
type UnknownProviderError struct {
	// Name is the provider name that was requested.
	Name string

	// Known lists the registered provider names.
	Known []string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown STT provider %q", e.Name)
	}
	return fmt.Sprintf("unknown STT provider %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}

// InitError is returned when a registered provider fails to construct, e.g.
// a missing dependency, invalid credentials, or an absent model file.
type InitError struct {
	// Provider is the provider name whose construction failed.
	Provider string

	// Cause is the construction failure.
	Cause error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize STT provider %q: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Cause
}
