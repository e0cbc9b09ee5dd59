// Package hoosherr defines the module-wide error taxonomy used to
// distinguish tool-level errors (which are reported back to the model as
// ordinary tool results) from infrastructure errors (which surface on the
// event bus and affect loop state).
package hoosherr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the taxonomy's categories. The
// turn loop and tool executor in pkg/agent do not use these kinds.
type Kind string

const (
	KindUserRejected      Kind = "user_rejected"
	KindPermissionDenied  Kind = "permission_denied"
	KindSecurityViolation Kind = "security_violation"
	KindInvalidArguments  Kind = "invalid_arguments"
	KindExecutionFailed   Kind = "execution_failed"
	KindBackendRetryable  Kind = "backend_retryable"
	KindBackendFatal      Kind = "backend_fatal"
	KindCancelled         Kind = "cancelled"
	KindIO                Kind = "io"
)

// Error wraps an underlying cause with a Kind so callers can switch on
// category without string-matching messages.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind around an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, otherwise returns "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsToolLevel reports whether an error should be reported back to the
// model as an ordinary tool result, rather than surfaced on the event bus
// as an infrastructure failure.
func IsToolLevel(err error) bool {
	switch KindOf(err) {
	case KindUserRejected, KindPermissionDenied, KindInvalidArguments, KindExecutionFailed:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err carries KindBackendRetryable. Backend
// retries in pkg/llm do not consult it.
func IsRetryable(err error) bool {
	return Is(err, KindBackendRetryable)
}
