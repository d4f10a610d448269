package engine

import (
	"errors"
	"net/http"
)

// dependencyUnavailableError signals a missing runtime (e.g. llama support
// not compiled in, server unreachable) so the HTTP layer can return 503.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string   { return e.msg }
func (e dependencyUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err (or anything it wraps)
// indicates a missing or unreachable runtime.
func IsDependencyUnavailable(err error) bool {
	var d dependencyUnavailableError
	return errors.As(err, &d)
}

// ServerError is returned when an engine server answers with a non-2xx status.
type ServerError struct {
	Engine string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	msg := e.Engine + " server http error: " + http.StatusText(e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}
