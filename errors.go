package upsearch

import "github.com/kailas-cloud/upsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput       = domain.ErrInvalidInput
	ErrService            = domain.ErrService
	ErrMalformedResponse  = domain.ErrMalformedResponse
	ErrMissingCredentials = domain.ErrMissingCredentials
)

// Typed errors re-exported from the domain layer. Use errors.As() to inspect.
type (
	// ClientError is caller input rejected before any network call.
	ClientError = domain.ClientError
	// ServiceError carries the message of an error payload returned by the service.
	ServiceError = domain.ServiceError
	// StatusError is a non-2xx response without a JSON envelope.
	StatusError = domain.StatusError
)
