package tts

import (
	"errors"
	"fmt"
	"strings"
)

// Common TTS errors.
var (
	// ErrEmptyText is returned when attempting to synthesize empty text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidVoice is returned when the requested voice is not available.
	ErrInvalidVoice = errors.New("invalid or unsupported voice")

	// ErrInvalidFormat is returned when the requested format is not supported.
	ErrInvalidFormat = errors.New("invalid or unsupported audio format")

	// ErrRateLimited is returned when API rate limits are exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrQuotaExceeded is returned when account quota is exceeded.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrServiceUnavailable is returned when the TTS backend cannot be reached.
	ErrServiceUnavailable = errors.New("TTS service unavailable")

	// ErrStreamingNotSupported is returned by SynthesizeStream on adapters
	// without a streaming implementation.
	ErrStreamingNotSupported = errors.New("streaming synthesis not supported")
)

// SynthesisError represents a failure reported by a reachable backend.
type SynthesisError struct {
	// Provider is the TTS provider that returned the error.
	Provider string

	// Code is the provider-specific error code.
	Code string

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error

	// Retryable indicates if the error is transient and retry may succeed.
	Retryable bool
}

// NewSynthesisError creates a new SynthesisError.
func NewSynthesisError(provider, code, message string, cause error, retryable bool) *SynthesisError {
	return &SynthesisError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return e.Provider + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Provider + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is.
func (e *SynthesisError) Is(target error) bool {
	if e.Cause != nil && errors.Is(e.Cause, target) {
		return true
	}
	t, ok := target.(*SynthesisError)
	if !ok {
		return false
	}
	return e.Provider == t.Provider && e.Code == t.Code
}

// UnknownProviderError is returned when a TTS provider name is not registered.
type UnknownProviderError struct {
	// Name is the provider name that was requested.
	Name string

	// Known lists the registered provider names.
	Known []string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown TTS provider %q", e.Name)
	}
	return fmt.Sprintf("unknown TTS provider %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}

// InitError is returned when a registered provider fails to construct.
type InitError struct {
	// Provider is the provider name whose construction failed.
	Provider string

	// Cause is the construction failure.
	Cause error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize TTS provider %q: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Cause
}
