package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals malformed caller input detected before any request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrService signals an explicit error payload returned by the search service.
	ErrService = errors.New("service error")
	// ErrMalformedResponse signals a response body that is neither a result nor an error envelope.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrMissingCredentials signals that the URL or token could not be resolved from the environment.
	ErrMissingCredentials = errors.New("missing credentials")
)

// ClientError describes caller input that was rejected locally. It is never retried.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func (e *ClientError) Unwrap() error { return ErrInvalidInput }

// NewClientError creates a ClientError with a formatted message.
func NewClientError(format string, args ...any) error {
	return &ClientError{Message: fmt.Sprintf(format, args...)}
}

// ServiceError carries the service-provided message verbatim.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return ErrService }

// StatusError is a non-2xx response whose body is not a JSON envelope,
// typically produced by a proxy in front of the service. It is retried like
// any other transport failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
