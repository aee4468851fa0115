package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed archive error returned to store consumers.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so callers can use errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for the archive taxonomy.
var (
	ErrValidation       = New("VALIDATION_ERROR", "validation failed")
	ErrUniqueConstraint = New("UNIQUE_CONSTRAINT", "value already in use")
	ErrForeignKey       = New("FOREIGN_KEY", "referenced record does not exist")
	ErrNotFound         = New("NOT_FOUND", "resource not found")
	ErrArtifactWrite    = New("ARTIFACT_WRITE", "failed to write artifact")
	ErrTransaction      = New("TRANSACTION_ERROR", "transaction failed")
	ErrInternal         = New("INTERNAL_ERROR", "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithField returns a copy of err naming the offending field.
func WithField(err *Error, field string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Field = field
	return &clone
}

// Rewrap copies the code and message of kind onto a new error wrapping cause.
func Rewrap(kind *Error, cause error, message string) *Error {
	if kind == nil {
		return nil
	}
	if message == "" {
		message = kind.Message
	}
	return &Error{Code: kind.Code, Message: message, Err: cause}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}
