package tutorsy

import (
	"errors"
	"fmt"
)

// Sentinel errors for tutorsy. Use errors.Is to check.
var (
	ErrNoAdapter        = errors.New("no adapter registered for tool")
	ErrStoreUnavailable = errors.New("profile store unavailable")
	ErrToolTimeout      = errors.New("tool invocation timeout")
	ErrValidation       = errors.New("validation failed")
	ErrShutdown         = errors.New("adapter registry is shutting down")
)

// ClientError is a recoverable, per-tool error whose message is safe to show
// to the caller (e.g. a payload that fails the tool's schema at the invoke
// boundary). It is recorded under the tool's tool_responses entry and does
// not abort the remaining tools. Err optionally wraps a sentinel (e.g.
// ErrValidation) for errors.Is/errors.As.
type ClientError struct {
	Reason string
	Err    error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("invalid tool input: %s", e.Reason)
}

// Unwrap supports errors.Is/errors.As on wrapped chains.
func (e *ClientError) Unwrap() error { return e.Err }

// SystemError represents an internal failure (store down, adapter panic).
// The underlying error stays out of caller-visible messages.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return "internal error during orchestration"
}

func (e *SystemError) Unwrap() error { return e.Err }

// IsClientError returns true if err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsSystemError returns true if err is or wraps a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}
