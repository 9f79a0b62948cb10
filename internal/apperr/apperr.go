// Package apperr provides error templates that can be formatted or wrapped
// while still matching the original template with errors.Is
package apperr

import "fmt"

// Error is an application error. Package-level values act as templates; use
// Fmt or Wrap to derive a concrete error from one.
type Error struct {
	Err     error
	base    *Error
	Message string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

// Fmt returns a copy of the template with its message formatted using args.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Err:     e.Err,
		base:    e.root(),
	}
}

// Wrap returns a copy of the error that wraps err.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Err:     err,
		base:    e.root(),
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the template this error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
