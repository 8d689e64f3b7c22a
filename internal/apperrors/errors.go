// Package apperrors defines the error taxonomy shared by the rate store, the
// symbol resolver and the converter.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a stable discriminant for an error category. Values are part of the
// public contract (HTTP error bodies, CLI output) and must not be renumbered.
type Kind int

// Error kinds.
const (
	KindUnknown         Kind = 0
	KindInvalidConfig   Kind = 1
	KindStorage         Kind = 2
	KindFetch           Kind = 3
	KindFormat          Kind = 4
	KindUnknownCurrency Kind = 5
	KindInvalidAmount   Kind = 6
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindInvalidConfig:   "invalid_config",
	KindStorage:         "storage_error",
	KindFetch:           "fetch_error",
	KindFormat:          "format_error",
	KindUnknownCurrency: "unknown_currency",
	KindInvalidAmount:   "invalid_amount",
}

// String returns the symbolic name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a categorized failure carrying a human-readable message and an
// optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrStorage)
// works for every storage failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidConfig   = &Error{Kind: KindInvalidConfig, Msg: "invalid configuration"}
	ErrStorage         = &Error{Kind: KindStorage, Msg: "storage error"}
	ErrFetch           = &Error{Kind: KindFetch, Msg: "fetch error"}
	ErrFormat          = &Error{Kind: KindFormat, Msg: "format error"}
	ErrUnknownCurrency = &Error{Kind: KindUnknownCurrency, Msg: "unknown currency"}
	ErrInvalidAmount   = &Error{Kind: KindInvalidAmount, Msg: "invalid amount"}
)

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
