package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the service could not be reached at all
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return "backend unreachable"
}

func (e *TransportError) Unwrap() error { return e.Err }

// Detail includes the underlying network error, for logs
func (e *TransportError) Detail() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// StatusError is a non-2xx response. Message comes from the body's
// "error" or "message" field when present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the service
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsUnreachable reports whether err is a transport failure
func IsUnreachable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
