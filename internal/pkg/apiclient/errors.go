package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a business error: the backend answered, but with a non-2xx
// status or success:false. Message is the server-supplied text.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend error (status=%d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// NotFound reports a 404 from the backend.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// TransportError means the call itself broke: connection failure, timeout
// or a body that could not be read or parsed.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsBusiness reports whether err is (or wraps) an APIError.
func IsBusiness(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// IsNotFound reports a backend 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.NotFound()
}

// UserMessage returns copy that is safe to show: the server message for
// business errors, a generic retry hint otherwise.
func UserMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if IsTransport(err) {
		return "We could not reach our servers. Please try again in a moment."
	}
	return "Something went wrong. Please try again."
}
