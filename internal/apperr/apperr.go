package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on the category instead
// of inspecting the concrete error value.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidArgument   Kind = "invalid_argument"
	KindInvalidOperation  Kind = "invalid_operation"
	KindAttemptsExhausted Kind = "attempts_exhausted"
	KindUnauthorized      Kind = "unauthorized"
	KindUpstreamJudge     Kind = "upstream_judge"
	KindStorage           Kind = "storage"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// Unclassified errors report KindStorage.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, format, args...)
}

func InvalidOperation(format string, args ...interface{}) *Error {
	return New(KindInvalidOperation, format, args...)
}

func AttemptsExhausted(format string, args ...interface{}) *Error {
	return New(KindAttemptsExhausted, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(KindUnauthorized, format, args...)
}

func UpstreamJudge(format string, args ...interface{}) *Error {
	return New(KindUpstreamJudge, format, args...)
}

func Storage(err error) *Error {
	return Wrap(KindStorage, err)
}
