// Package errors provides the unified error type and factory functions for
// the Sentinel risk platform.  Every layer (domain, application,
// infrastructure, interfaces) uses AppError as the single carrier for
// structured error information, enabling consistent HTTP responses, logging,
// and degradation decisions.
package errors

import (
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical platform error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the platform.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.Validation("country code XX not in monitored roster")
//	return errors.Wrap(dbErr, errors.ErrCodeDatabaseError, "failed to log prediction")
//	return errors.NotReady("no snapshot published yet").
//	           WithDetail("first refresh cycle still running")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure
	// category.
	Code ErrorCode

	// Message is the primary human-readable description of the error,
	// suitable for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (country codes, cache keys, etc.)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap constructs an AppError that wraps an existing error.  If err is nil,
// Wrap returns nil so it can be used inline around fallible calls.
//
// When err is already an *AppError and code is CodeUnknown the original code
// is preserved, preventing loss of the original classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Validation constructs an ErrCodeValidation AppError.  This is the only
// failure the HTTP surface returns as a hard client error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotReady constructs an ErrCodeNotReady AppError, surfaced to callers as a
// retryable unavailability signal while the first refresh cycle is running.
func NotReady(message string) *AppError {
	return &AppError{Code: ErrCodeNotReady, Message: message}
}

// CollaboratorUnavailable constructs an ErrCodeCollaboratorUnavailable
// AppError.  Components catching this substitute safe defaults rather than
// failing the cycle or the request.
func CollaboratorUnavailable(message string) *AppError {
	return &AppError{Code: ErrCodeCollaboratorUnavailable, Message: message}
}

// UpstreamIO constructs an ErrCodeUpstreamIO AppError for best-effort
// network or filesystem fetches.  Callers collapse it to an empty result.
func UpstreamIO(message string) *AppError {
	return &AppError{Code: ErrCodeUpstreamIO, Message: message}
}

// Internal constructs an ErrCodeInternal AppError.  Use this for unexpected
// server-side failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether err's chain contains a validation failure.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeValidation) || IsCode(err, ErrCodeMalformedSequence)
}

// IsNotReady reports whether err's chain signals that no snapshot has been
// published yet.
func IsNotReady(err error) bool {
	return IsCode(err, ErrCodeNotReady)
}

// IsCollaboratorUnavailable reports whether err's chain signals a missing or
// erroring ML collaborator.
func IsCollaboratorUnavailable(err error) bool {
	return IsCode(err, ErrCodeCollaboratorUnavailable)
}

// IsUpstreamIO reports whether err's chain signals a best-effort fetch
// failure.
func IsUpstreamIO(err error) bool {
	return IsCode(err, ErrCodeUpstreamIO)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain.  Returns CodeOK for nil and CodeUnknown when no *AppError is
// present.  Useful in middleware that needs a single code to emit as a
// metric label.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}
