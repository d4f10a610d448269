package manager

import (
	"errors"
	"net/http"

	"routerd/internal/engine"
	"routerd/internal/router"
)

// validationError signals a well-formed request with unacceptable values
// so the HTTP layer can return 422.
type validationError struct{ msg string }

func (e validationError) Error() string   { return e.msg }
func (e validationError) StatusCode() int { return http.StatusUnprocessableEntity }

// ErrValidation constructs a validationError.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err indicates invalid request values (422).
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// IsUnknownMode reports whether err was caused by an unrecognized mode.
func IsUnknownMode(err error) bool {
	var u *router.UnknownModeError
	return errors.As(err, &u)
}

// IsDependencyUnavailable reports whether err indicates a missing or
// unreachable engine runtime (503).
func IsDependencyUnavailable(err error) bool {
	return engine.IsDependencyUnavailable(err)
}

// unknownModeError wraps router.UnknownModeError with a 422 status.
type unknownModeError struct{ err *router.UnknownModeError }

func (e unknownModeError) Error() string   { return e.err.Error() }
func (e unknownModeError) Unwrap() error   { return e.err }
func (e unknownModeError) StatusCode() int { return http.StatusUnprocessableEntity }
