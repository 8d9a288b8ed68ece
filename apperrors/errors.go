// Package apperrors defines the error taxonomy shared by every service and
// mapped to HTTP statuses at a single boundary in the handlers package.
package apperrors

import "errors"

type Kind int

const (
	BadRequest Kind = iota
	Unauthorized
	Forbidden
	NotFound
	Conflict
	// Informational is a recoverable business outcome reported to the caller
	// with a success status ("user already exists" on registration).
	Informational
	Internal
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Informational:
		return "informational"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies any error; non-tagged errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user-facing message of a tagged error. Internal
// errors get a generic message so diagnostics stay in the logs.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}
