package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error is the structured error type used throughout the engine. It carries a
// stable code, a human-readable message, an optional failing stage, and
// arbitrary context values, while wrapping the underlying cause so that
// errors.Is and errors.As continue to work.
type Error struct {
	// Code identifies the error condition. Always set.
	Code ErrorCode

	// Message is the human-readable description of what failed.
	Message string

	// Stage names the step of a multi-stage operation that failed, such as
	// "ensure-branch" or "commit". Empty for single-step operations.
	Stage string

	// Context holds additional key/value details for diagnostics.
	Context map[string]interface{}

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Stage != "" {
		b.WriteString(" [")
		b.WriteString(e.Stage)
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(pairs, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause for errors.Is/errors.As traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code. This lets
// callers match on a bare New(code, "") sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new structured error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new structured error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message while preserving the cause.
// It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WrapWithContext wraps an error with a code, message, and context values.
// It returns nil when err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Context: ctx, Err: err}
}

// WithStage returns a copy of the error annotated with the failing stage.
func (e *Error) WithStage(stage string) *Error {
	clone := *e
	clone.Stage = stage
	return &clone
}

// WithContext returns a copy of the error with an additional context value.
func (e *Error) WithContext(key string, value interface{}) *Error {
	clone := *e
	clone.Context = make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	clone.Context[key] = value
	return &clone
}

// GetCode extracts the error code from err. It returns CodeUnknown when err
// carries no structured error anywhere in its chain.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// GetStage extracts the failing stage from err, or "" when none is recorded.
func GetStage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// IsRetryable reports whether err represents a transient condition. Errors
// without a structured code are treated as permanent.
func IsRetryable(err error) bool {
	return IsRetryableCode(GetCode(err))
}
